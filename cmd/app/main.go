package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/task-board/internal/config"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:          "app",
	Short:        "Three-column task board backed by a single JSON document",
	SilenceUsage: true,
}

func init() {
	cfg = config.Load() // Окружение задает значения по умолчанию для флагов
	rootCmd.AddCommand(serveCmd(), boardCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
