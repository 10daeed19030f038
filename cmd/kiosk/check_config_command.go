package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"kiosk/internal/display"
	"kiosk/internal/fsutil"
)

func newCheckConfigCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check-config [file]",
		Short: "Parse a display config file and print the values it resolves to",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			path := settings.ConfigFile()
			if len(args) == 1 {
				path = args[0]
			}
			if strings.TrimSpace(path) == "" {
				return display.ErrNoConfigPath
			}
			data, err := fsutil.ReadBounded(path, settings.Watch.ReadLimitBytes)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("config file %s not found", path)
				}
				return err
			}
			parsed, err := display.Parse(data, settings.ContentRoot())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			defaults := display.Defaults(settings.ContentRoot())
			changed := display.ChangedSections(defaults, parsed)
			fmt.Fprintf(out, "Config: %s\n", path)
			if len(changed) == 0 {
				fmt.Fprintln(out, "All sections use defaults")
			} else {
				fmt.Fprintf(out, "Sections differing from defaults: %s\n", strings.Join(changed, ", "))
			}
			fmt.Fprintf(out, "Render window: %dx%d\n", parsed.Live.RenderWidth, parsed.Live.RenderHeight)
			fmt.Fprintf(out, "Theme: main=%s bg01=%s bg02=%s text=%s flip=%s\n",
				parsed.Theme.ColorMain, parsed.Theme.ColorBg01, parsed.Theme.ColorBg02, parsed.Theme.ColorText, yesNo(parsed.Theme.ColorFlip))
			fmt.Fprintf(out, "Timer: enabled=%s countdown=%s max=%d\n", yesNo(parsed.Timer.State), yesNo(parsed.Timer.Count), parsed.Timer.Max)
			fmt.Fprintf(out, "Image: fill=%s background=%s\n", parsed.Image.FillMode, parsed.Image.BgColor)

			if len(parsed.Hello.Platforms) == 0 {
				fmt.Fprintln(out, "No platforms configured")
				return nil
			}
			rows := make([][]string, 0, len(parsed.Hello.Platforms))
			for _, entry := range parsed.Hello.Platforms {
				rows = append(rows, []string{strconv.Itoa(entry.Index), entry.Category, entry.Icon, strconv.Itoa(entry.Total)})
			}
			fmt.Fprintln(out, renderTable([]tableColumn{
				{title: "Index", align: alignRight},
				{title: "Category"},
				{title: "Icon"},
				{title: "Total", align: alignRight},
			}, rows))
			return nil
		},
	}
}
