package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sortline/internal/linerun"
)

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var flags lineFlags
	var inputPath string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Drive the line from drag-and-drop events read line by line",
		Long: "Read pointer events from stdin (or --file) and feed them to the line.\n" +
			"Each line is one event:\n\n" +
			"  dragstart <kind>   pick a figure from the palette\n" +
			"  dragover           hover over the drop area\n" +
			"  drop <kind>        release over the drop area\n" +
			"  dragend <kind>     end the drag\n" +
			"  <kind>             shorthand for drop <kind>\n\n" +
			"Blank lines and lines starting with # are ignored. The run ends when\n" +
			"input is exhausted and the queue has drained or halted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var events io.Reader = cmd.InOrStdin()
			if path := strings.TrimSpace(inputPath); path != "" && path != "-" {
				file, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open events: %w", err)
				}
				defer file.Close()
				events = file
			}
			return runLine(cmd, ctx, &flags, linerun.Script{}, events)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&inputPath, "file", "f", "", "Read events from a file instead of stdin")
	return cmd
}
