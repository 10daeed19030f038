package main

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"kiosk/internal/config"
	"kiosk/internal/content"
	"kiosk/internal/fsutil"
)

func newPutCommand(ctx *commandContext) *cobra.Command {
	var atomic bool
	cmd := &cobra.Command{
		Use:   "put <file> [text]",
		Short: "Write a content or display config file, from text or stdin",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			path, err := producerPath(settings, args[0])
			if err != nil {
				return err
			}
			var payload []byte
			if len(args) == 2 {
				payload = []byte(args[1])
			} else {
				payload, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
			}
			if atomic {
				err = fsutil.WriteFileAtomic(path, 0o644, bytes.NewReader(payload))
			} else {
				err = fsutil.WriteFile(path, payload)
			}
			if err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, len(payload))
			return nil
		},
	}
	cmd.Flags().BoolVar(&atomic, "atomic", false, "Replace the file through a temp file and rename")
	return cmd
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <file>...",
		Aliases: []string{"rm"},
		Short:   "Delete content or display config files",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			for _, name := range args {
				path, err := producerPath(settings, name)
				if err != nil {
					return err
				}
				removed, err := fsutil.Delete(path)
				if err != nil {
					return fmt.Errorf("remove %s: %w", path, err)
				}
				if removed {
					fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", path)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s not present\n", path)
				}
			}
			return nil
		},
	}
}

// producerPath maps a watched file name to its location. Only names the
// daemon reacts to are accepted.
func producerPath(settings config.Settings, name string) (string, error) {
	if name != filepath.Base(name) {
		return "", fmt.Errorf("%q: expected a bare file name", name)
	}
	if configFile := settings.ConfigFile(); configFile != "" && name == filepath.Base(configFile) {
		return configFile, nil
	}
	if !slices.Contains(content.WatchedFiles(), name) {
		return "", fmt.Errorf("%q is not a watched content file", name)
	}
	return filepath.Join(settings.ContentRoot(), name), nil
}
