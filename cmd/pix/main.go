package main

import (
	"fmt"
	"os"

	"github.com/pixvault/pixvault/internal/pix/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
