package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/helixir/figshare-connector/internal/bootstrap"
	"github.com/helixir/figshare-connector/internal/config"
	"github.com/helixir/figshare-connector/internal/deposit"
	"github.com/helixir/figshare-connector/internal/domain"
)

// app carries state shared by every subcommand.
type app struct {
	token   string
	baseURL string

	cfg    *config.Config
	logger zerolog.Logger
	repo   *deposit.FigshareRepository
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "figshare-deposit",
		Short: "Deposit exports into a Figshare account",
		Long: `figshare-deposit creates Figshare articles from exported documents.

Configuration is read from config.yaml and FIGSHARE_CONNECTOR_* environment
variables. The access token is taken from --token or
FIGSHARE_CONNECTOR_FIGSHARE_TOKEN.

Examples:
  figshare-deposit test-connection
  figshare-deposit subjects
  figshare-deposit deposit export.zip --title "Lab notes" --author ann --subject Algebra --publish
  figshare-deposit authorize-url --state xyz
  figshare-deposit api-token --subject ops --ttl 1h`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	rootCmd.PersistentFlags().StringVar(&a.token, "token", "", "Figshare access token (overrides FIGSHARE_CONNECTOR_FIGSHARE_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "Figshare API base URL")

	rootCmd.AddCommand(newDepositCmd(a))
	rootCmd.AddCommand(newTestConnectionCmd(a))
	rootCmd.AddCommand(newSubjectsCmd(a))
	rootCmd.AddCommand(newLicensesCmd(a))
	rootCmd.AddCommand(newAuthorizeURLCmd(a))
	rootCmd.AddCommand(newExchangeCodeCmd(a))
	rootCmd.AddCommand(newAPITokenCmd(a))

	return rootCmd
}

// setup loads configuration and builds the repository. Logs go to stderr so
// that stdout carries only command output.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.token != "" {
		cfg.Figshare.Token = a.token
	}
	if a.baseURL != "" {
		cfg.Figshare.BaseURL = a.baseURL
	}

	a.logger = bootstrap.NewLogger(cfg.Logging, cmd.ErrOrStderr()).With().Str("component", "cli").Logger()
	a.cfg = cfg

	repo, err := bootstrap.NewRepository(cfg, nil, a.logger)
	if err != nil {
		return err
	}
	a.repo = repo
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// reportResult prints result and turns a failed result into an error so the
// process exits non-zero.
func reportResult(cmd *cobra.Command, result domain.OperationResult) error {
	if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
		return err
	}
	if !result.Succeeded {
		return fmt.Errorf("%s", result.Message)
	}
	return nil
}
