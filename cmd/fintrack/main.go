package main

import (
	"fmt"
	"os"

	bootstrap "fintrack/internal/cli"
)

func main() {
	// .env is optional; real environment variables win.
	bootstrap.LoadEnvFile()

	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
