package figshare

import (
	"path"
	"strconv"
	"strings"
)

// ProvenanceTag is attached to every article created by the connector.
// Figshare refuses to publish articles without at least one tag.
const ProvenanceTag = "RSpace"

// FallbackCategoryID is the id of the built-in "Software Testing" category used
// when no subject matches a known category.
const FallbackCategoryID int64 = 4

// DefaultLicenseURL is the reference URL of the fallback default license.
const DefaultLicenseURL = "https://creativecommons.org/licenses/by/4.0/"

// DefaultLicenseValue is the remote value of the fallback default license.
const DefaultLicenseValue = 1

// Category is a node of the Figshare category taxonomy.
type Category struct {
	ID       int64  `json:"id"`
	ParentID int64  `json:"parent_id"`
	Title    string `json:"title"`
}

// FallbackCategory is used when a deposit's subject matches no remote category.
var FallbackCategory = Category{
	ID:    FallbackCategoryID,
	Title: "Software Testing, Verification and Validation",
}

// License is a license reference offered by Figshare.
type License struct {
	Value   int    `json:"value"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Default bool   `json:"default_license,omitempty"`
}

// FallbackLicense is the default license used when no fetched license is
// flagged as default.
var FallbackLicense = License{
	Value:   DefaultLicenseValue,
	Name:    "CC BY",
	URL:     DefaultLicenseURL,
	Default: true,
}

// Author is an author entry of an article. Only the name is sent for new authors.
type Author struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

// ArticlePost is the request body for creating an article.
type ArticlePost struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Authors     []Author `json:"authors,omitempty"`
	Categories  []int64  `json:"categories,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	License     int      `json:"license,omitempty"`
}

// Location is the handle Figshare returns for a newly created entity.
type Location struct {
	Location string   `json:"location"`
	Warnings []string `json:"warnings,omitempty"`
	EntityID int64    `json:"entity_id,omitempty"`
}

// ID returns the entity identifier, falling back to the last path segment of
// the location URL for responses that omit entity_id.
func (l *Location) ID() string {
	if l.EntityID != 0 {
		return strconv.FormatInt(l.EntityID, 10)
	}
	return path.Base(strings.TrimRight(l.Location, "/"))
}

// ArticlePresenter is the account view of an article.
type ArticlePresenter struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	DOI            string `json:"doi,omitempty"`
	URL            string `json:"url,omitempty"`
	URLPrivateHTML string `json:"url_private_html,omitempty"`
	URLPublicHTML  string `json:"url_public_html,omitempty"`
	Status         string `json:"status,omitempty"`
}

// PrivateURL returns the private view link, empty when absent.
func (a *ArticlePresenter) PrivateURL() string {
	return a.URLPrivateHTML
}

// PublicURL returns the public view link, empty when absent.
func (a *ArticlePresenter) PublicURL() string {
	return a.URLPublicHTML
}

// PrivateLink is a shareable link to an unpublished article.
type PrivateLink struct {
	Location     string `json:"location"`
	HTMLLocation string `json:"html_location"`
	Token        string `json:"token,omitempty"`
}

// WebLink returns the browser link of the private link.
func (p *PrivateLink) WebLink() string {
	return p.HTMLLocation
}

// Account is the subset of the account resource used to validate credentials.
type Account struct {
	ID        int64  `json:"id"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// APIError is the error body returned by Figshare.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
}

// Response wraps the result of an operation whose failures are reported in-band.
type Response[T any] struct {
	Data  *T
	Error *APIError
}

// HasError reports whether the operation failed.
func (r Response[T]) HasError() bool {
	return r.Error != nil
}

// uploadInit is the request body to register a file on an article.
type uploadInit struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	MD5  string `json:"md5"`
}

// fileInfo is the account view of a file being uploaded.
type fileInfo struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	UploadURL string `json:"upload_url"`
	Status    string `json:"status,omitempty"`
}

// uploadPart is a byte range the upload service expects as one PUT.
type uploadPart struct {
	PartNo      int    `json:"partNo"`
	StartOffset int64  `json:"startOffset"`
	EndOffset   int64  `json:"endOffset"`
	Status      string `json:"status,omitempty"`
}

// uploadInfo lists the parts of a pending upload.
type uploadInfo struct {
	Token  string       `json:"token"`
	Status string       `json:"status"`
	Size   int64        `json:"size"`
	Parts  []uploadPart `json:"parts"`
}
