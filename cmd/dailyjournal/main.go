package main

import (
	"fmt"
	"os"

	"daily-journal/internal/commands"
)

func main() {
	if err := commands.New().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
