package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/papercomputeco/streamgate/cmd/streamgate/config"
	"github.com/papercomputeco/streamgate/pkg/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has init, set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("init", "set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir  string
		origDir string
		out     bytes.Buffer
	)

	execute := func(args ...string) error {
		cmd := configcmder.NewConfigCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	BeforeEach(func() {
		out.Reset()

		var err error
		tmpDir, err = os.MkdirTemp("", "streamgate-config-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		// Create a local .streamgate dir so the manager picks it up
		err = os.MkdirAll(filepath.Join(tmpDir, ".streamgate"), 0o755)
		Expect(err).NotTo(HaveOccurred())

		err = os.Chdir(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		err := os.Chdir(origDir)
		Expect(err).NotTo(HaveOccurred())
		os.RemoveAll(tmpDir)
	})

	loadConfig := func() *config.Config {
		cfger, err := config.NewConfiger(filepath.Join(tmpDir, ".streamgate"))
		Expect(err).NotTo(HaveOccurred())
		cfg, err := cfger.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		return cfg
	}

	Describe("set subcommand", func() {
		It("sets a config value successfully", func() {
			Expect(execute("set", "upstream.provider", "ollama")).To(Succeed())

			_, err := os.Stat(filepath.Join(tmpDir, ".streamgate", "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(loadConfig().Upstream.Provider).To(Equal("ollama"))
		})

		It("masks secrets in its output", func() {
			Expect(execute("set", "upstream.api_key", "sk-abcdefghijklmnop")).To(Succeed())
			Expect(out.String()).NotTo(ContainSubstring("sk-abcdefghijklmnop"))
			Expect(loadConfig().Upstream.APIKey).To(Equal("sk-abcdefghijklmnop"))
		})

		It("rejects unknown keys", func() {
			Expect(execute("set", "invalid_key", "value")).To(HaveOccurred())
		})

		It("requires exactly two arguments", func() {
			Expect(execute("set", "upstream.provider")).To(HaveOccurred())
		})

		It("rejects invalid durations", func() {
			Expect(execute("set", "upstream.timeout", "forever")).To(HaveOccurred())
		})
	})

	Describe("get subcommand", func() {
		It("gets a previously set value", func() {
			Expect(execute("set", "upstream.model", "llama3.2")).To(Succeed())
			out.Reset()

			Expect(execute("get", "upstream.model")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("llama3.2"))
		})

		It("runs without error for unset key", func() {
			Expect(execute("get", "auth.jwks_url")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("<not set>"))
		})

		It("rejects unknown keys", func() {
			Expect(execute("get", "proxy.upstream")).To(HaveOccurred())
		})
	})

	Describe("list subcommand", func() {
		It("lists every key", func() {
			Expect(execute("list")).To(Succeed())
			for _, key := range config.ValidConfigKeys() {
				Expect(out.String()).To(ContainSubstring(key))
			}
		})

		It("rejects any arguments", func() {
			Expect(execute("list", "extra")).To(HaveOccurred())
		})
	})

	Describe("init subcommand", func() {
		It("writes the openai preset by default", func() {
			Expect(execute("init")).To(Succeed())

			cfg := loadConfig()
			Expect(cfg.Upstream.Provider).To(Equal("openai"))
			Expect(cfg.Upstream.Model).To(Equal("gpt-5-nano"))
		})

		It("writes the named preset", func() {
			Expect(execute("init", "--preset", "ollama")).To(Succeed())
			Expect(loadConfig().Upstream.BaseURL).To(Equal("http://localhost:11434"))
		})

		It("keeps an existing file unless forced", func() {
			Expect(execute("init")).To(Succeed())
			Expect(execute("init", "--preset", "ollama")).To(MatchError(ContainSubstring("already exists")))
			Expect(loadConfig().Upstream.Provider).To(Equal("openai"))

			Expect(execute("init", "--preset", "ollama", "--force")).To(Succeed())
			Expect(loadConfig().Upstream.Provider).To(Equal("ollama"))
		})

		It("rejects unknown presets", func() {
			Expect(execute("init", "--preset", "anthropic")).To(MatchError(ContainSubstring("unknown preset")))
		})
	})
})
