package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/helixir/figshare-connector/internal/config"
	httpserver "github.com/helixir/figshare-connector/internal/server/http"
)

func newAPITokenCmd(a *app) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "api-token",
		Short: "Sign a bearer token for the connector's HTTP API",
		Long: `api-token signs a bearer token with ` + config.EnvPrefix + `_SERVER_AUTH_SECRET.
Send it as "Authorization: Bearer <token>" to the /api/v1 routes of the server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ta, err := httpserver.NewTokenAuth(a.cfg.Server.AuthSecret)
			if err != nil {
				return fmt.Errorf("%s_SERVER_AUTH_SECRET: %w", config.EnvPrefix, err)
			}
			token, err := httpserver.IssueToken(ta, subject, ttl)
			if err != nil {
				return fmt.Errorf("signing token: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "operator", "Subject claim identifying the caller")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime; 0 means no expiry")
	return cmd
}
