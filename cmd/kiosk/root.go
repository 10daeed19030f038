package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "kiosk",
		Short:         "Kiosk content and display config watcher",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipSettings(cmd) {
				return nil
			}
			_, err := ctx.ensureSettings()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&flags.settingsPath, "settings", "s", "", "Daemon settings file (TOML)")
	persistent.StringVar(&flags.envFile, "env-file", ".env", "Environment file loaded before KIOSK_* variables are read")
	persistent.StringVar(&flags.contentRoot, "content-root", "", "Content directory (overrides paths.content-root)")
	persistent.StringVar(&flags.configFile, "config-file", "", "Display config file (overrides paths.config-file)")
	persistent.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warning or error")
	persistent.StringArrayVar(&flags.set, "set", nil, "Override a setting as key=value (repeatable)")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newDumpCommand(ctx))
	rootCmd.AddCommand(newPathsCommand(ctx))
	rootCmd.AddCommand(newCheckConfigCommand(ctx))
	rootCmd.AddCommand(newPutCommand(ctx))
	rootCmd.AddCommand(newRemoveCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
