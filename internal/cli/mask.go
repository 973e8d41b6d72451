package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMaskCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "mask <doc.json>",
		Short: "Write only the export mask as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCanvas(args[0])
			if err != nil {
				return err
			}
			if emptyCanvas(cmd, c) {
				return nil
			}
			m, err := c.ExportMask()
			if err != nil {
				return err
			}
			if err := writeFile(output, pngOf(m)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mask: %s (%dx%d)\n", output, m.Rect.Dx(), m.Rect.Dy())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "mask.png", "output file")
	return cmd
}
