package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jobpilot/jobpilot/internal/config"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize configuration, workspace and output directories",
	RunE:  runOnboard,
}

func runOnboard(_ *cobra.Command, _ []string) error {
	cfgPath := config.ConfigPath()

	var cfg *config.Config
	if _, err := os.Stat(cfgPath); err == nil {
		existing, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		cfg = existing
		fmt.Printf("✓ Config already exists at %s\n", cfgPath)
	} else {
		def := config.DefaultConfig()
		cfg = &def
		if err := config.Save(cfg, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Created config at %s\n", cfgPath)
	}

	for _, dir := range []struct{ label, path string }{
		{"Workspace", cfg.WorkspacePath()},
		{"Documents", cfg.OutputDir()},
	} {
		if err := os.MkdirAll(dir.path, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir.label, err)
		}
		fmt.Printf("✓ %-9s %s\n", dir.label, dir.path)
	}

	fmt.Printf("\n%s jobpilot is ready!\n\n", logo)
	fmt.Println("Next steps:")
	fmt.Printf("  1. Add an OpenAI, Azure OpenAI or Anthropic key to %s\n", cfgPath)
	fmt.Println("     or export OPENAI_API_KEY / ANTHROPIC_API_KEY (a .env file works too)")
	fmt.Println("  2. Chat: jobpilot chat --resume resume.docx")
	return nil
}
