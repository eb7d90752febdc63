// Package refdata caches the Figshare category taxonomy and license list.
//
// Lists are fetched from the remote service on first use and kept for the
// lifetime of the Cache. They can also be replaced outright, for example from
// static JSON snapshots when the service is unreachable.
package refdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/helixir/figshare-connector/internal/domain"
	"github.com/helixir/figshare-connector/internal/figshare"
)

// Cache holds categories and licenses plus the subject and license choices
// derived from them. All returned slices are sorted copies.
type Cache struct {
	mu     sync.Mutex
	source figshare.ReferenceSource
	logger zerolog.Logger

	categories []figshare.Category
	licenses   []figshare.License
	subjects   []domain.Subject
	choices    []domain.License
}

// New creates a Cache backed by source. source may be nil when the cache is
// seeded statically.
func New(source figshare.ReferenceSource, logger zerolog.Logger) *Cache {
	return &Cache{
		source: source,
		logger: logger.With().Str("component", "refdata").Logger(),
	}
}

// SetSource replaces the remote source used to populate empty lists.
func (c *Cache) SetSource(source figshare.ReferenceSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = source
}

// Categories returns the categories sorted by title, fetching them if the
// cache is empty.
func (c *Cache) Categories(ctx context.Context) ([]figshare.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadCategories(ctx); err != nil {
		return nil, err
	}
	return append([]figshare.Category(nil), c.categories...), nil
}

// Licenses returns the licenses sorted by name, fetching them if the cache is empty.
func (c *Cache) Licenses(ctx context.Context) ([]figshare.License, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadLicenses(ctx); err != nil {
		return nil, err
	}
	return append([]figshare.License(nil), c.licenses...), nil
}

// Subjects returns one subject per category title, sorted by name.
func (c *Cache) Subjects(ctx context.Context) ([]domain.Subject, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.subjects) == 0 {
		if err := c.loadCategories(ctx); err != nil {
			return nil, err
		}
		subjects := make([]domain.Subject, 0, len(c.categories))
		for _, cat := range c.categories {
			subjects = append(subjects, domain.Subject{Name: cat.Title})
		}
		c.subjects = subjects
	}
	sortSubjects(c.subjects)
	return append([]domain.Subject(nil), c.subjects...), nil
}

// LicenseConfigInfo returns the license choices sorted by name. A license is
// always required and only listed licenses may be chosen.
func (c *Cache) LicenseConfigInfo(ctx context.Context) (domain.LicenseConfigInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.choices) == 0 {
		if err := c.loadLicenses(ctx); err != nil {
			return domain.LicenseConfigInfo{}, err
		}
		choices := make([]domain.License, 0, len(c.licenses))
		for _, l := range c.licenses {
			choices = append(choices, domain.License{
				Definition:     domain.LicenseDef{URL: l.URL, Name: l.Name},
				DefaultLicense: l.Default,
			})
		}
		c.choices = choices
	}

	return domain.LicenseConfigInfo{
		LicenseRequired:       true,
		OtherLicensePermitted: false,
		Licenses:              append([]domain.License(nil), c.choices...),
	}, nil
}

// FindCategory returns the category whose title equals title exactly.
func (c *Cache) FindCategory(ctx context.Context, title string) (figshare.Category, bool, error) {
	categories, err := c.Categories(ctx)
	if err != nil {
		return figshare.Category{}, false, err
	}
	for _, cat := range categories {
		if cat.Title == title {
			return cat, true, nil
		}
	}
	return figshare.Category{}, false, nil
}

// FindLicense returns the license whose URL equals url exactly.
func (c *Cache) FindLicense(ctx context.Context, url string) (figshare.License, bool, error) {
	licenses, err := c.Licenses(ctx)
	if err != nil {
		return figshare.License{}, false, err
	}
	for _, l := range licenses {
		if l.URL == url {
			return l, true, nil
		}
	}
	return figshare.License{}, false, nil
}

// DefaultLicense returns the first license flagged as default, or
// figshare.FallbackLicense when none is flagged.
func DefaultLicense(licenses []figshare.License) figshare.License {
	for _, l := range licenses {
		if l.Default {
			return l
		}
	}
	return figshare.FallbackLicense
}

// SetCategories replaces the cached categories and the subjects derived from them.
func (c *Cache) SetCategories(categories []figshare.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setCategories(categories)
}

// SetLicenses replaces the cached licenses and the choices derived from them.
func (c *Cache) SetLicenses(licenses []figshare.License) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLicenses(licenses)
}

// SetSubjects replaces the cached subject list.
func (c *Cache) SetSubjects(subjects []domain.Subject) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subjects = append([]domain.Subject(nil), subjects...)
}

// LoadStatic replaces categories and licenses with the JSON lists given.
// Unknown fields are ignored. A nil document fails with
// domain.ErrInvalidArgument; a document that is not a JSON list of the
// expected shape fails with a *domain.ParseError. Nothing is replaced unless
// both documents parse.
func (c *Cache) LoadStatic(licensesJSON, categoriesJSON []byte) error {
	if licensesJSON == nil || categoriesJSON == nil {
		return fmt.Errorf("%w: licenses and categories documents are required", domain.ErrInvalidArgument)
	}

	categories, err := decodeList[figshare.Category]("categories", categoriesJSON)
	if err != nil {
		return err
	}
	licenses, err := decodeList[figshare.License]("licenses", licensesJSON)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.setCategories(categories)
	c.setLicenses(licenses)

	c.logger.Info().
		Int("categories", len(categories)).
		Int("licenses", len(licenses)).
		Msg("loaded static reference data")
	return nil
}

// decodeList parses a JSON array. A literal null is not a list.
func decodeList[T any](document string, data []byte) ([]T, error) {
	var list []T
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, domain.NewParseError(document, err)
	}
	if list == nil {
		return nil, domain.NewParseError(document, errors.New("expected a JSON array, got null"))
	}
	return list, nil
}

// LoadStaticFiles reads both documents from disk and calls LoadStatic.
func (c *Cache) LoadStaticFiles(licensesPath, categoriesPath string) error {
	licensesJSON, err := os.ReadFile(licensesPath)
	if err != nil {
		return fmt.Errorf("reading licenses file: %w", err)
	}
	categoriesJSON, err := os.ReadFile(categoriesPath)
	if err != nil {
		return fmt.Errorf("reading categories file: %w", err)
	}
	return c.LoadStatic(licensesJSON, categoriesJSON)
}

func (c *Cache) loadCategories(ctx context.Context) error {
	if len(c.categories) == 0 {
		if c.source == nil {
			return domain.ErrNotConfigured
		}
		categories, err := c.source.Categories(ctx, false)
		if err != nil {
			return fmt.Errorf("fetching categories: %w", err)
		}
		c.logger.Debug().Int("count", len(categories)).Msg("fetched categories")
		c.setCategories(categories)
	}
	return nil
}

func (c *Cache) loadLicenses(ctx context.Context) error {
	if len(c.licenses) == 0 {
		if c.source == nil {
			return domain.ErrNotConfigured
		}
		licenses, err := c.source.Licenses(ctx, false)
		if err != nil {
			return fmt.Errorf("fetching licenses: %w", err)
		}
		c.logger.Debug().Int("count", len(licenses)).Msg("fetched licenses")
		c.setLicenses(licenses)
	}
	return nil
}

func (c *Cache) setCategories(categories []figshare.Category) {
	c.categories = append([]figshare.Category(nil), categories...)
	sort.SliceStable(c.categories, func(i, j int) bool {
		return c.categories[i].Title < c.categories[j].Title
	})
	c.subjects = nil
}

func (c *Cache) setLicenses(licenses []figshare.License) {
	c.licenses = append([]figshare.License(nil), licenses...)
	sort.SliceStable(c.licenses, func(i, j int) bool {
		return c.licenses[i].Name < c.licenses[j].Name
	})
	c.choices = nil
}

func sortSubjects(subjects []domain.Subject) {
	sort.SliceStable(subjects, func(i, j int) bool {
		return subjects[i].Name < subjects[j].Name
	})
}
