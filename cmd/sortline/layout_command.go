package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"sortline/internal/layout"
)

type binOffsetJSON struct {
	Kind   string  `json:"kind"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Target float64 `json:"target"`
}

type layoutJSON struct {
	TrackWidth float64         `json:"track_width"`
	Pickup     float64         `json:"pickup"`
	Bins       []binOffsetJSON `json:"bins"`
}

func newLayoutCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Show the pickup point and the claw offset for every bin",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			geometry := layout.FromConfig(cfg.Layout)
			track, err := geometry.Bounds(layout.TrackID)
			if err != nil {
				return fmt.Errorf("resolve track: %w", err)
			}

			result := layoutJSON{
				TrackWidth: track.Width,
				Pickup:     cfg.Layout.PickupPoint(),
			}
			var errs []error
			for _, kind := range geometry.BinKinds() {
				target, err := layout.BinTarget(geometry, kind, cfg.Layout.FigureHalfWidth)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				bin, _ := geometry.Bounds(layout.BinID(kind))
				result.Bins = append(result.Bins, binOffsetJSON{
					Kind:   kind.String(),
					Left:   bin.Left,
					Width:  bin.Width,
					Target: target,
				})
			}
			if err := errors.Join(errs...); err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderStatusLine("Track width", statusInfo, formatOffset(result.TrackWidth), colorize))
			fmt.Fprintln(out, renderStatusLine("Pickup offset", statusInfo, formatOffset(result.Pickup), colorize))
			if len(result.Bins) == 0 {
				fmt.Fprintln(out, renderStatusLine("Bins", statusWarn, "none configured", colorize))
				return nil
			}
			rows := make([][]string, 0, len(result.Bins))
			for _, bin := range result.Bins {
				rows = append(rows, []string{
					bin.Kind,
					formatOffset(bin.Left),
					formatOffset(bin.Width),
					formatOffset(bin.Target),
				})
			}
			fmt.Fprintln(out, renderTable(tableSpec{
				headers: []string{"Bin", "Left", "Width", "Claw offset"},
				rows:    rows,
				aligns:  []columnAlignment{alignLeft, alignRight, alignRight, alignRight},
			}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func formatOffset(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
