package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newPathsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "List every watched path and whether it is registered",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			rt, err := startRuntime(cmd.Context(), runtimeOptions{settings: settings, logger: logger, watch: true})
			if err != nil {
				return err
			}
			defer rt.Close()

			watched := rt.watchedPaths()
			names := make([]string, 0, len(watched))
			for name := range watched {
				names = append(names, name)
			}
			sort.Strings(names)

			rows := [][]string{}
			for _, name := range names {
				for _, path := range watched[name] {
					rows = append(rows, []string{name, path.Path, yesNo(path.Registered), yesNo(path.Pending)})
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]tableColumn{
				{title: "Watcher"},
				{title: "Path"},
				{title: "Registered"},
				{title: "Pending"},
			}, rows))
			return nil
		},
	}
}
