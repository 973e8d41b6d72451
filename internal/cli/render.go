package cli

import (
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/layerforge/composite"
)

func newRenderCmd() *cobra.Command {
	var (
		output  string
		maskOut string
		noMask  bool
		thumb   int
	)
	cmd := &cobra.Command{
		Use:   "render <doc.json>",
		Short: "Write the flattened image and export mask as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCanvas(args[0])
			if err != nil {
				return err
			}
			if emptyCanvas(cmd, c) {
				return nil
			}
			var img image.Image
			switch {
			case thumb > 0:
				img, err = c.Thumbnail(thumb, thumb)
			case noMask:
				img, err = c.Flatten()
			default:
				img, err = c.FlattenWithMask()
			}
			if err != nil {
				return err
			}
			if err := writeFile(output, pngOf(img)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "image: %s (%dx%d)\n", output, img.Bounds().Dx(), img.Bounds().Dy())

			if maskOut == "" {
				maskOut = strings.TrimSuffix(output, ".png") + "_mask.png"
			}
			m, err := c.ExportMask()
			if err != nil {
				return err
			}
			if err := writeFile(maskOut, pngOf(m)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mask:  %s\n", maskOut)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "canvas.png", "image output file")
	cmd.Flags().StringVar(&maskOut, "mask", "", "mask output file (default <output>_mask.png)")
	cmd.Flags().BoolVar(&noMask, "no-mask", false, "do not erase masked pixels from the image")
	cmd.Flags().IntVar(&thumb, "thumbnail", 0, "fit the image within a square of this size")
	return cmd
}

func pngOf(img image.Image) encoder {
	return func(w io.Writer) error { return composite.EncodePNG(w, img) }
}
