package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionMetadata_PrimarySubject(t *testing.T) {
	t.Run("no subjects", func(t *testing.T) {
		md := SubmissionMetadata{}
		_, ok := md.PrimarySubject()
		assert.False(t, ok)
	})

	t.Run("first subject wins", func(t *testing.T) {
		md := SubmissionMetadata{Subjects: []string{"Algebra", "Geometry"}}
		subject, ok := md.PrimarySubject()
		require.True(t, ok)
		assert.Equal(t, "Algebra", subject)
	})
}

func TestSubmissionMetadata_HasLicense(t *testing.T) {
	assert.False(t, (&SubmissionMetadata{}).HasLicense())
	assert.False(t, (&SubmissionMetadata{License: "  "}).HasLicense())
	assert.True(t, (&SubmissionMetadata{License: "https://www.gnu.org/licenses/gpl-3.0.html"}).HasLicense())
}

func TestOperationResultConstructors(t *testing.T) {
	ok := NewSuccessResult("Deposit succeeded.", "https://figshare.com/s/abc")
	assert.True(t, ok.Succeeded)
	assert.Equal(t, "https://figshare.com/s/abc", ok.URL)

	failed := NewFailureResult("Submission failed - boom")
	assert.False(t, failed.Succeeded)
	assert.Empty(t, failed.URL)
}

func TestExternalAPIError_Unwrap(t *testing.T) {
	tests := []struct {
		status   int
		sentinel error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusBadGateway, ErrServiceUnavailable},
		{http.StatusUnprocessableEntity, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			err := NewExternalAPIError("Figshare", tt.status, "body", nil)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}

	t.Run("explicit cause takes precedence", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := NewExternalAPIError("Figshare", http.StatusForbidden, "", cause)
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, ErrForbidden)
	})
}

func TestIsAuthorizationError(t *testing.T) {
	assert.True(t, IsAuthorizationError(NewExternalAPIError("Figshare", http.StatusForbidden, "", nil)))
	assert.True(t, IsAuthorizationError(fmt.Errorf("creating link: %w", NewExternalAPIError("Figshare", http.StatusUnauthorized, "", nil))))
	assert.False(t, IsAuthorizationError(NewExternalAPIError("Figshare", http.StatusInternalServerError, "", nil)))
	assert.False(t, IsAuthorizationError(errors.New("plain")))
}

func TestErrorTypes(t *testing.T) {
	var parseErr *ParseError
	err := fmt.Errorf("loading: %w", NewParseError("categories", errors.New("unexpected end of JSON input")))
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "categories", parseErr.Document)
	assert.Contains(t, err.Error(), "unexpected end of JSON input")

	assert.ErrorIs(t, NewValidationError("title", "required"), ErrInvalidInput)
	assert.ErrorIs(t, NewNotFoundError("article", "42"), ErrNotFound)
	assert.Equal(t, "article not found: 42", NewNotFoundError("article", "42").Error())
}
