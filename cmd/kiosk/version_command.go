package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kiosk/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the kiosk version",
		Annotations: map[string]string{"skipSettingsLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetVersionInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "kiosk %s\n", info)
			if info.Built != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "built %s\n", info.Built)
			}
			return nil
		},
	}
}
