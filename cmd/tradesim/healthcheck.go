package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func newHealthcheckCmd() *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Check that a running server answers /healthz",
		RunE: func(cmd *cobra.Command, args []string) error {
			return healthcheck(baseURL)
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", defaultBaseURL(), "base URL of the server")
	return cmd
}

func healthcheck(baseURL string) error {
	resp, err := httpClient.Get(baseURL + "/healthz")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthz returned %d", resp.StatusCode)
	}
	return nil
}
