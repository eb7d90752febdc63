package deposit

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/helixir/figshare-connector/internal/domain"
	"github.com/helixir/figshare-connector/internal/figshare"
	"github.com/helixir/figshare-connector/internal/refdata"
)

// Mapper translates submission metadata into a Figshare article request.
type Mapper struct {
	cache  *refdata.Cache
	logger zerolog.Logger
}

// NewMapper creates a Mapper resolving categories and licenses through cache.
func NewMapper(cache *refdata.Cache, logger zerolog.Logger) *Mapper {
	return &Mapper{cache: cache, logger: logger}
}

// Map builds the article to create for metadata.
//
// Title and description are copied as given. Each author contributes only its
// unique name. The first subject selects the category by exact title; the
// license URL selects the license by exact URL. Unmatched or missing values
// fall back to figshare.FallbackCategoryID and the default license.
func (m *Mapper) Map(ctx context.Context, metadata *domain.SubmissionMetadata) *figshare.ArticlePost {
	authors := make([]figshare.Author, 0, len(metadata.Authors))
	for _, a := range metadata.Authors {
		authors = append(authors, figshare.Author{Name: a.UniqueName})
	}

	return &figshare.ArticlePost{
		Title:       metadata.Title,
		Description: metadata.Description,
		Authors:     authors,
		Categories:  []int64{m.CategoryID(ctx, metadata)},
		Tags:        []string{figshare.ProvenanceTag},
		License:     m.LicenseValue(ctx, metadata),
	}
}

// CategoryID resolves the category for the first subject of metadata.
func (m *Mapper) CategoryID(ctx context.Context, metadata *domain.SubmissionMetadata) int64 {
	subject, ok := metadata.PrimarySubject()
	if !ok {
		return figshare.FallbackCategoryID
	}

	cat, found, err := m.cache.FindCategory(ctx, subject)
	if err != nil {
		m.logger.Warn().Err(err).Str("subject", subject).Msg("categories unavailable, using fallback category")
		return figshare.FallbackCategoryID
	}
	if !found {
		m.logger.Info().Str("subject", subject).Msg("no category matches subject, using fallback category")
		return figshare.FallbackCategoryID
	}
	return cat.ID
}

// LicenseValue resolves the license for the license URL of metadata.
func (m *Mapper) LicenseValue(ctx context.Context, metadata *domain.SubmissionMetadata) int {
	if metadata.HasLicense() {
		l, found, err := m.cache.FindLicense(ctx, metadata.License)
		if err != nil {
			m.logger.Warn().Err(err).Msg("licenses unavailable, using fallback license")
			return figshare.FallbackLicense.Value
		}
		if found {
			return l.Value
		}
		m.logger.Info().Str("license", metadata.License).Msg("no license matches, using default license")
	}

	licenses, err := m.cache.Licenses(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("licenses unavailable, using fallback license")
		return figshare.FallbackLicense.Value
	}
	return refdata.DefaultLicense(licenses).Value
}
