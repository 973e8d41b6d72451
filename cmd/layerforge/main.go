// Command layerforge renders canvas documents to PNG.
package main

import (
	"fmt"
	"os"

	"github.com/gogpu/layerforge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "layerforge:", err)
		os.Exit(1)
	}
}
