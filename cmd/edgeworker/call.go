package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aura-studio/edgeworker/lambda/sqsclient"
	"github.com/spf13/cobra"
)

// newCallCmd creates the 'call' subcommand, which sends one request to a
// Lambda worker through SQS.
func newCallCmd() *cobra.Command {
	var (
		requestQueue string
		replyQueue   string
		method       string
		data         string
		timeout      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "call <path>",
		Short: "Send a request through SQS and print the reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []sqsclient.Option{
				sqsclient.WithRequestQueue(requestQueue),
				sqsclient.WithDefaultTimeout(timeout),
			}
			if replyQueue != "" {
				opts = append(opts, sqsclient.WithReplyQueue(replyQueue))
			}
			c, err := sqsclient.NewClient(cmd.Context(), opts...)
			if err != nil {
				return err
			}
			defer c.Close()

			req, err := http.NewRequestWithContext(cmd.Context(), strings.ToUpper(method), "https://localhost"+args[0], bytes.NewBufferString(data))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if replyQueue == "" {
				if err := c.Send(cmd.Context(), req); err != nil {
					return err
				}
				fmt.Fprintln(out, "sent")
				return nil
			}

			resp, err := c.Call(cmd.Context(), req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\n\n%s\n", resp.Status, body)
			return nil
		},
	}
	cmd.Flags().StringVar(&requestQueue, "queue", "", "request queue URL")
	cmd.Flags().StringVar(&replyQueue, "reply-queue", "", "reply queue URL; without it the request is fire-and-forget")
	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "request method")
	cmd.Flags().StringVarP(&data, "data", "d", "", "request body")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "reply timeout")
	_ = cmd.MarkFlagRequired("queue")
	return cmd
}
