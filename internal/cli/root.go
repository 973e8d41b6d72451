// Package cli implements the layerforge command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/gogpu/layerforge"
	"github.com/gogpu/layerforge/canvas"
	"github.com/gogpu/layerforge/host"
)

var version = "0.1.0"

// Execute runs the command line with os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:   "layerforge",
		Short: "Render layered canvas documents",
		Long: `layerforge reads canvas documents written by the editor core and
renders the flattened image and its export mask to PNG files.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if verbose {
				layerforge.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
	root.SetVersionTemplate(fmt.Sprintf(
		"layerforge %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
	root.AddCommand(newRenderCmd(), newMaskCmd(), newInfoCmd(), newMatteCmd())
	return root
}

// loadCanvas reads a document with inline data URL images.
func loadCanvas(path string) (*canvas.Canvas, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()
	d, err := canvas.ReadDocument(f)
	if err != nil {
		return nil, err
	}
	c := canvas.New(canvas.WithOutputArea(d.OutputArea))
	if err := c.Load(d, host.DataURLCodec{}); err != nil {
		return nil, err
	}
	return c, nil
}

// emptyCanvas reports a canvas without layers so commands write nothing
// for it.
func emptyCanvas(cmd *cobra.Command, c *canvas.Canvas) bool {
	if c.Layers().Len() > 0 {
		return false
	}
	fmt.Fprintln(cmd.OutOrStdout(), "nothing to save")
	return true
}

type encoder func(io.Writer) error

func writeFile(path string, enc encoder) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := enc(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
