package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Ask a running server to expire every due pending order",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := sweep(baseURL)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "expired %d orders\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", defaultBaseURL(), "base URL of the server")
	return cmd
}

func sweep(baseURL string) (int, error) {
	resp, err := httpClient.Post(baseURL+"/orders/expire", "application/json", nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("expire returned %d", resp.StatusCode)
	}

	var body struct {
		Expired int `json:"expired"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	return body.Expired, nil
}
