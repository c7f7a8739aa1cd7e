package provider_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/streamgate/pkg/llm/provider"
)

var _ = Describe("New", func() {
	It("creates an OpenAI client", func() {
		client, err := provider.New(provider.Config{Type: provider.OpenAI, BaseURL: "https://api.openai.com/v1"})
		Expect(err).NotTo(HaveOccurred())
		Expect(client.Name()).To(Equal("openai"))
	})

	It("creates an Ollama client", func() {
		client, err := provider.New(provider.Config{Type: provider.Ollama, BaseURL: "http://localhost:11434"})
		Expect(err).NotTo(HaveOccurred())
		Expect(client.Name()).To(Equal("ollama"))
	})

	It("rejects unknown provider types", func() {
		_, err := provider.New(provider.Config{Type: "anthropic", BaseURL: "http://localhost"})
		Expect(err).To(MatchError(ContainSubstring(`unknown provider type: "anthropic"`)))
	})

	It("rejects a missing base url", func() {
		_, err := provider.New(provider.Config{Type: provider.OpenAI})
		Expect(err).To(HaveOccurred())
	})

	It("lists the supported providers", func() {
		Expect(provider.SupportedProviders()).To(ConsistOf("openai", "ollama"))
	})
})
