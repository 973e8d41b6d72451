package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <doc.json>",
		Short: "List the layers of a document, topmost first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCanvas(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			a := c.OutputArea()
			fmt.Fprintf(out, "output area: %gx%g at (%g, %g)\n", a.Width, a.Height, a.X, a.Y)
			if shape, closed := c.Shape(); closed {
				fmt.Fprintf(out, "shape: %d points\n", len(shape))
			}
			fmt.Fprintln(out)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "Z\tNAME\tPOSITION\tSIZE\tROTATION\tBLEND\tOPACITY\tVISIBLE")
			for _, l := range c.Layers().DisplayOrder() {
				fmt.Fprintf(tw, "%d\t%s\t%g,%g\t%gx%g\t%g\t%s\t%.2f\t%t\n",
					l.ZIndex, l.Name, l.X, l.Y, l.Width, l.Height, l.Rotation, l.BlendMode, l.Opacity, l.Visible)
			}
			return tw.Flush()
		},
	}
}
