package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"kiosk/internal/content"
	"kiosk/internal/display"
)

type dumpOutput struct {
	ContentRoot string           `yaml:"content_root"`
	ConfigFile  string           `yaml:"config_file"`
	Content     content.Snapshot `yaml:"content"`
	Display     display.Config   `yaml:"display"`
}

func newDumpCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Load content and display config once and print them as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			rt, err := startRuntime(cmd.Context(), runtimeOptions{settings: settings, logger: logger})
			if err != nil {
				return err
			}
			defer rt.Close()

			output := dumpOutput{
				ContentRoot: rt.content.Root(),
				ConfigFile:  rt.display.Path(),
				Content:     rt.content.Snapshot(),
				Display:     rt.display.Config(),
			}
			encoder := yaml.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent(2)
			if err := encoder.Encode(output); err != nil {
				return fmt.Errorf("encode dump: %w", err)
			}
			return encoder.Close()
		},
	}
}
