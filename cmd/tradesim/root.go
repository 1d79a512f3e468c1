package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tradesim",
		Short: "Order execution and portfolio accounting engine",
		Long: `tradesim runs a single-venue trading simulator over HTTP.

Orders fill immediately at the instrument's current price. Each fill debits
or credits the account net of commission and tax, updates the position,
routes the commission to the account's broker and appends an entry to the
transaction ledger.

Configuration is read from the environment. See the README for the full
list of variables.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newHealthcheckCmd(),
		newSweepCmd(),
	)
	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default command)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

// defaultBaseURL points at the local server on PORT.
func defaultBaseURL() string {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return fmt.Sprintf("http://localhost:%s", port)
}

var httpClient = &http.Client{Timeout: 5 * time.Second}
