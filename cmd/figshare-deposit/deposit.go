package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helixir/figshare-connector/internal/domain"
)

type depositFlags struct {
	title       string
	description string
	authors     []string
	subjects    []string
	license     string
	depositor   string
	email       string
	publish     bool
}

func newDepositCmd(a *app) *cobra.Command {
	f := &depositFlags{}

	cmd := &cobra.Command{
		Use:   "deposit <file>",
		Short: "Deposit a file as a new Figshare article",
		Long: `Create a private Figshare article and upload file to it.

A .zip export is uploaded as is and its entries are uploaded alongside it,
except entries under a resources/ folder. With --publish the article is
published once the upload succeeds.

Examples:
  figshare-deposit deposit notes.html --title "Notes" --author ann
  figshare-deposit deposit export.zip --title "Run 12" --author ann --author bob \
      --subject "Algebra and Number Theory" \
      --license https://creativecommons.org/licenses/by/4.0/ --publish`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDeposit(cmd, args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.title, "title", "t", "", "Article title (required)")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "Article description")
	cmd.Flags().StringArrayVarP(&f.authors, "author", "a", nil, "Author name, repeatable")
	cmd.Flags().StringArrayVarP(&f.subjects, "subject", "s", nil, "Subject, repeatable; the first one selects the category")
	cmd.Flags().StringVarP(&f.license, "license", "l", "", "License URL (default: the account default license)")
	cmd.Flags().StringVar(&f.depositor, "depositor", "", "Depositor name (default: first author)")
	cmd.Flags().StringVar(&f.email, "email", "", "Depositor email")
	cmd.Flags().BoolVarP(&f.publish, "publish", "p", false, "Publish the article after upload")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func (a *app) runDeposit(cmd *cobra.Command, file string, f *depositFlags) error {
	info, err := os.Stat(file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", file, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", file)
	}

	metadata := f.metadata()
	depositor := domain.Depositor{UniqueName: f.depositor, Email: f.email}
	if depositor.UniqueName == "" {
		if len(metadata.Authors) == 0 {
			return errors.New("either --depositor or at least one --author is required")
		}
		depositor.UniqueName = metadata.Authors[0].UniqueName
	}

	result := a.repo.SubmitDeposit(cmd.Context(), depositor, file, metadata, domain.RepositoryConfig{})
	return reportResult(cmd, result)
}

func (f *depositFlags) metadata() domain.SubmissionMetadata {
	authors := make([]domain.Depositor, 0, len(f.authors))
	for _, name := range f.authors {
		authors = append(authors, domain.Depositor{UniqueName: name})
	}
	return domain.SubmissionMetadata{
		Title:       f.title,
		Description: f.description,
		Authors:     authors,
		Subjects:    f.subjects,
		License:     f.license,
		Publish:     f.publish,
	}
}
