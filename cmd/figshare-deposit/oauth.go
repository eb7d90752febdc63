package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/helixir/figshare-connector/internal/figshare"
)

func (a *app) oauthConfig() (*oauth2.Config, error) {
	o := a.cfg.Figshare.OAuth
	if o.ClientID == "" {
		return nil, errors.New("figshare.oauth.client_id is not configured")
	}
	return figshare.OAuth2Config(o.ClientID, o.ClientSecret, o.RedirectURL), nil
}

func newAuthorizeURLCmd(a *app) *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "authorize-url",
		Short: "Print the URL where a user grants this application access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := a.oauthConfig()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), conf.AuthCodeURL(state))
			return err
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "Opaque value echoed back to the redirect URL")
	return cmd
}

func newExchangeCodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exchange-code <code>",
		Short: "Exchange an authorization code for an access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := a.oauthConfig()
			if err != nil {
				return err
			}
			tok, err := conf.Exchange(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("exchanging authorization code: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok.AccessToken)
			return err
		},
	}
}
