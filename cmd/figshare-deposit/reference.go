package main

import (
	"github.com/spf13/cobra"
)

func newTestConnectionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "test-connection",
		Short: "Check that the access token is accepted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return reportResult(cmd, a.repo.TestConnection(cmd.Context()))
		},
	}
}

func newSubjectsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "subjects",
		Short: "List the subjects a deposit can be classified under",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			subjects, err := a.repo.Subjects(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), subjects)
		},
	}
}

func newLicensesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "licenses",
		Short: "List the licenses a deposit can carry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := a.repo.LicenseConfigInfo(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), info)
		},
	}
}
