package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/layerforge/canvas"
	"github.com/gogpu/layerforge/host"
	"github.com/gogpu/layerforge/layer"
)

func newMatteCmd() *cobra.Command {
	var (
		endpoint   string
		name       string
		output     string
		threshold  float64
		refinement int
	)
	cmd := &cobra.Command{
		Use:   "matte <doc.json>",
		Short: "Remove the background of one layer through a matting endpoint",
		Long: `matte sends one layer's image to a background-removal endpoint and
stores the result in the document. The topmost layer is used unless
--layer names another.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCanvas(args[0])
			if err != nil {
				return err
			}
			if emptyCanvas(cmd, c) {
				return nil
			}
			l := findLayer(c, name)
			if l == nil {
				return fmt.Errorf("no layer named %q", name)
			}
			c.Selection().Replace(l)

			m := host.NewHTTPMatter(endpoint, host.WithThreshold(threshold), host.WithRefinement(refinement))
			if _, err := c.Matte(cmd.Context(), m); err != nil {
				return err
			}

			d, err := c.Document(host.DataURLCodec{})
			if err != nil {
				return err
			}
			if output == "" {
				output = args[0]
			}
			if err := writeFile(output, d.Write); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "matted %s: %s\n", l.Name, output)
			return nil
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "http://127.0.0.1:8188/matting", "matting endpoint URL")
	cmd.Flags().StringVar(&name, "layer", "", "layer name or id (default topmost)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "document output file (default overwrite the input)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.5, "foreground cut-off in [0,1]")
	cmd.Flags().IntVar(&refinement, "refinement", 1, "refinement passes")
	return cmd
}

// findLayer returns the layer with the given name or id, or the topmost
// layer when name is empty.
func findLayer(c *canvas.Canvas, name string) *layer.Layer {
	ls := c.Layers().DisplayOrder()
	if name == "" {
		return ls[0]
	}
	if l := c.Layers().Get(name); l != nil {
		return l
	}
	for _, l := range ls {
		if l.Name == name {
			return l
		}
	}
	return nil
}
