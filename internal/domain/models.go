// Package domain provides the host-facing models of the Figshare deposit connector.
package domain

import (
	"strings"
)

// IdentifierScheme names the scheme of an external identifier attached to a person.
type IdentifierScheme string

const (
	IdentifierSchemeORCID IdentifierScheme = "orcid"
	IdentifierSchemeEmail IdentifierScheme = "email"
)

// ExternalID is an identifier for a depositor in an external registry.
type ExternalID struct {
	Scheme IdentifierScheme `json:"scheme"`
	Value  string           `json:"value"`
}

// Depositor is a person depositing or authoring an export.
// Only UniqueName is ever sent to the remote service.
type Depositor struct {
	Email       string       `json:"email,omitempty"`
	UniqueName  string       `json:"unique_name" validate:"required"`
	ExternalIDs []ExternalID `json:"external_ids,omitempty"`
}

// SubmissionMetadata describes a deposit as entered by the user.
// It is supplied by the caller and must not be modified while a deposit runs.
type SubmissionMetadata struct {
	Title       string      `json:"title" validate:"required"`
	Description string      `json:"description"`
	Authors     []Depositor `json:"authors" validate:"dive"`
	Contacts    []Depositor `json:"contacts,omitempty" validate:"dive"`
	// Subjects is ordered; only the first entry drives category matching.
	Subjects []string `json:"subjects,omitempty"`
	// License is the URL of the chosen license, empty when none was chosen.
	License string `json:"license,omitempty" validate:"omitempty,url"`
	Publish bool   `json:"publish"`
}

// PrimarySubject returns the first subject, if any.
func (m *SubmissionMetadata) PrimarySubject() (string, bool) {
	if len(m.Subjects) == 0 {
		return "", false
	}
	return m.Subjects[0], true
}

// HasLicense reports whether a license URL was chosen.
func (m *SubmissionMetadata) HasLicense() bool {
	return strings.TrimSpace(m.License) != ""
}

// OperationResult is the outcome of a repository operation reported to the host.
type OperationResult struct {
	Succeeded bool   `json:"succeeded"`
	Message   string `json:"message"`
	// URL is the link to the deposited record; empty means no link is available.
	URL string `json:"url,omitempty"`
}

// NewSuccessResult creates a successful OperationResult.
func NewSuccessResult(message, url string) OperationResult {
	return OperationResult{Succeeded: true, Message: message, URL: url}
}

// NewFailureResult creates a failed OperationResult without a URL.
func NewFailureResult(message string) OperationResult {
	return OperationResult{Succeeded: false, Message: message}
}

// Subject is a classification choice offered to the user.
type Subject struct {
	Name string `json:"name"`
}

// LicenseDef identifies a license by URL and display name.
type LicenseDef struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// License is a license choice offered to the user.
type License struct {
	Definition     LicenseDef `json:"license_definition"`
	DefaultLicense bool       `json:"default_license"`
}

// LicenseConfigInfo describes how the host should present license choices.
type LicenseConfigInfo struct {
	LicenseRequired       bool      `json:"license_required"`
	OtherLicensePermitted bool      `json:"other_license_permitted"`
	Licenses              []License `json:"licenses"`
}

// RepositoryConfig carries the per-account configuration supplied by the host.
type RepositoryConfig struct {
	// Identifier is the account access token.
	Identifier string `json:"-"`
	// ServerURL optionally overrides the remote API base URL.
	ServerURL string `json:"server_url,omitempty"`
}
