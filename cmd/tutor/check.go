package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

type checkResult struct {
	Driver    string `json:"chatlog_driver"`
	Reachable bool   `json:"chatlog_reachable"`
	Latency   string `json:"chatlog_latency,omitempty"`
	Error     string `json:"chatlog_error,omitempty"`
	APIKeySet bool   `json:"openai_api_key_set"`
	Model     string `json:"completion_model"`
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify configuration and chat log connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			res := checkResult{
				Driver:    a.cfg.ChatlogDriver,
				APIKeySet: a.cfg.OpenAIAPIKey != "",
				Model:     a.cfg.CompletionModel,
			}

			b, err := a.openBackend(ctx)
			defer b.close()
			if err == nil {
				var rtt time.Duration
				if rtt, err = b.ping(ctx); err == nil {
					res.Reachable = true
					res.Latency = rtt.Round(time.Microsecond).String()
				}
			}
			if err != nil {
				res.Error = err.Error()
			}

			out := cmd.OutOrStdout()
			if a.asJSON {
				if werr := writeJSON(out, res); werr != nil {
					return werr
				}
			} else {
				fmt.Fprintf(out, "chat log (%s): ", res.Driver)
				if res.Reachable {
					fmt.Fprintf(out, "ok in %s\n", res.Latency)
				} else {
					fmt.Fprintf(out, "failed: %s\n", res.Error)
				}
				fmt.Fprintf(out, "OPENAI_API_KEY set: %t\n", res.APIKeySet)
				fmt.Fprintf(out, "completion model: %s\n", res.Model)
			}

			if err != nil {
				return fmt.Errorf("chat log check failed: %w", err)
			}
			return nil
		},
	}
}
