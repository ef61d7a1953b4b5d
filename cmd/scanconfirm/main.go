// Command scanconfirm serves the scan confirmation API.
// Usage: scanconfirm serve [--port 4000]
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/raysh454/scanconfirm/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "scanconfirm:", err)
		os.Exit(1)
	}
}
