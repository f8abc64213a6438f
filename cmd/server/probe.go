package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen11/health-aggregator/internal/adapters/http/dto"
)

func newProbeCmd(opts *rootOptions) *cobra.Command {
	var (
		url     string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Query a running instance's /health and exit non-zero unless it is serving",
		Long: `probe issues GET /health against a running instance and exits with a
non-zero status unless the response is 200 (healthy or degraded). It is meant
for container HEALTHCHECK instructions.

Without --url the address is derived from the loaded configuration, using
127.0.0.1 when the server binds all interfaces.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if url == "" {
				cfg, err := opts.loadConfig()
				if err != nil {
					return fmt.Errorf("loading config: %w", err)
				}
				url = localHealthURL(cfg.Server.Host, cfg.Server.Port)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			status, err := probe(ctx, http.DefaultClient, url)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), status)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "health endpoint to query (default derived from config)")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultProbeTimeout, "overall probe deadline")

	return cmd
}

// localHealthURL maps a bind address to a dialable /health URL.
func localHealthURL(host string, port int) string {
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port)) + "/health"
}

// probe fetches url and returns the reported overall status. Any response
// other than 200 is an error carrying the reported status when available.
func probe(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("building probe request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("probing %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var report dto.HealthResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&report)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && report.Status != "" {
			return report.Status, fmt.Errorf("service %s (HTTP %d)", report.Status, resp.StatusCode)
		}
		return "", fmt.Errorf("unexpected HTTP %d from %s", resp.StatusCode, url)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decoding health report: %w", decodeErr)
	}

	return report.Status, nil
}
