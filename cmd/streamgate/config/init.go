package configcmder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/streamgate/pkg/cliui"
	"github.com/papercomputeco/streamgate/pkg/config"
	"github.com/papercomputeco/streamgate/pkg/dotdir"
)

const initLongDesc string = `Write a config.toml from a provider preset.

Creates a .streamgate/ directory in the current working directory (or at
--config-dir) holding a config.toml with the preset's values. An existing
file is kept unless --force is given.

Presets:
  openai   https://api.openai.com/v1, gpt-5-nano
  azure    an Azure OpenAI v1 endpoint; edit upstream.base_url afterwards
  ollama   http://localhost:11434, llama3.2

Examples:
  streamgate config init
  streamgate config init --preset ollama
  streamgate config init --preset azure --force`

const initShortDesc string = "Write a config.toml from a preset"

type initCommander struct {
	preset string
	force  bool
}

func newInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(cmd.OutOrStdout(), configDir)
		},
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "openai", "Provider preset (openai, azure, ollama)")
	cmd.Flags().BoolVar(&cmder.force, "force", false, "Overwrite an existing config.toml")

	return cmd
}

func (c *initCommander) run(w io.Writer, configDir string) error {
	cfg, err := config.PresetConfig(c.preset)
	if err != nil {
		return err
	}

	dir, err := dotdir.NewManager().Create(configDir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(path); err == nil && !c.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(w, "  %s Wrote %s preset to %s\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(c.preset),
		cliui.DimStyle.Render(path),
	)
	return nil
}
