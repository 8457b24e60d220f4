package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aura-studio/edgeworker/http/client"
	"github.com/spf13/cobra"
)

// newProbeCmd creates the 'probe' subcommand, which sends one request to a
// running HTTP worker.
func newProbeCmd() *cobra.Command {
	var (
		baseURL string
		method  string
		data    string
		headers []string
		timeout time.Duration
		meta    bool
	)
	cmd := &cobra.Command{
		Use:   "probe [path]",
		Short: "Send a request to a running worker and print the response",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []client.Option{client.WithBaseURL(baseURL), client.WithDefaultTimeout(timeout)}
			for _, h := range headers {
				k, v, ok := strings.Cut(h, ":")
				if !ok {
					return fmt.Errorf("invalid header %q, want key:value", h)
				}
				opts = append(opts, client.WithHeader(strings.TrimSpace(k), strings.TrimSpace(v)))
			}
			c := client.NewClient(opts...)
			out := cmd.OutOrStdout()

			if meta {
				res, err := c.Meta(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, res.Raw)
				return nil
			}

			path := c.HealthCheckPath
			if len(args) == 1 {
				path = args[0]
			}
			var body []byte
			if data != "" {
				body = []byte(data)
			}
			resp, err := c.Do(cmd.Context(), strings.ToUpper(method), path, body, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d %s\n", resp.StatusCode, http.StatusText(resp.StatusCode))
			for k, vs := range resp.Headers {
				for _, v := range vs {
					fmt.Fprintf(out, "%s: %s\n", k, v)
				}
			}
			fmt.Fprintf(out, "\n%s\n", resp.Body)
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", "http://127.0.0.1:8080", "worker base URL")
	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "request method")
	cmd.Flags().StringVarP(&data, "data", "d", "", "request body")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "extra header, key:value (repeatable)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
	cmd.Flags().BoolVar(&meta, "meta", false, "print the worker's meta document instead")
	return cmd
}
