package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/helixir/figshare-connector/internal/domain"
	"github.com/helixir/figshare-connector/internal/observability"
)

// Request size constants.
const (
	maxRequestBodySize    = 1 << 20  // 1 MB limit for JSON request bodies
	multipartMemory       = 32 << 20 // parts above this spill to disk
	defaultMaxUploadBytes = 5 << 30
)

// Multipart field names of a deposit request.
const (
	formFieldFile      = "file"
	formFieldMetadata  = "metadata"
	formFieldDepositor = "depositor"
)

// listSubjects handles GET /subjects.
func (s *Server) listSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := s.repo.Subjects(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list subjects")
		writeDomainError(w, err)
		return
	}
	if subjects == nil {
		subjects = []domain.Subject{}
	}
	writeJSON(w, http.StatusOK, subjectsResponse{Subjects: subjects})
}

// getLicenseConfig handles GET /licenses.
func (s *Server) getLicenseConfig(w http.ResponseWriter, r *http.Request) {
	info, err := s.repo.LicenseConfigInfo(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list licenses")
		writeDomainError(w, err)
		return
	}
	if info.Licenses == nil {
		info.Licenses = []domain.License{}
	}
	writeJSON(w, http.StatusOK, info)
}

// configure handles PUT /configuration. It replaces the access token of the
// account the connector deposits into. Unknown fields are rejected.
func (s *Server) configure(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var req configureRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}
	if err := s.validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = s.repo.Configurer().Configure(domain.RepositoryConfig{Identifier: req.Token})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// testConnection handles POST /connection-test. The outcome is always
// reported in the body, so the status is 200 whenever the check ran.
func (s *Server) testConnection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result := s.repo.TestConnection(ctx)
	writeJSON(w, http.StatusOK, domainResultToResponse(result, observability.RequestIDFromContext(ctx)))
}

// submitDeposit handles POST /deposits. The export is read from a multipart
// body, staged on disk for the duration of the deposit and removed afterwards.
func (s *Server) submitDeposit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart request body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	metadata, depositor, msg := s.parseDepositForm(r)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	file, header, err := r.FormFile(formFieldFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		writeError(w, http.StatusBadRequest, "file name is required")
		return
	}

	dir, err := os.MkdirTemp(s.cfg.UploadDir, "figshare-upload-")
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create staging directory")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, name)
	if err := stageFile(path, file); err != nil {
		s.logger.Error().Err(err).Str("file", name).Msg("failed to stage upload")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// The server deposits into the account set by configuration or PUT
	// /configuration; callers never supply credentials per request.
	result := s.repo.SubmitDeposit(ctx, depositor, path, metadata, domain.RepositoryConfig{})

	status := http.StatusCreated
	if !result.Succeeded {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, domainResultToResponse(result, observability.RequestIDFromContext(ctx)))
}

// parseDepositForm decodes and validates the metadata and depositor fields.
// The depositor defaults to the first author. A non-empty message reports a
// client error.
func (s *Server) parseDepositForm(r *http.Request) (domain.SubmissionMetadata, domain.Depositor, string) {
	var (
		metadata  domain.SubmissionMetadata
		depositor domain.Depositor
	)

	raw := r.FormValue(formFieldMetadata)
	if strings.TrimSpace(raw) == "" {
		return metadata, depositor, "metadata is required"
	}
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		return metadata, depositor, "invalid metadata JSON"
	}
	if err := s.validateStruct(metadata); err != nil {
		return metadata, depositor, err.Error()
	}

	if raw := r.FormValue(formFieldDepositor); strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &depositor); err != nil {
			return metadata, depositor, "invalid depositor JSON"
		}
	} else if len(metadata.Authors) > 0 {
		depositor = metadata.Authors[0]
	} else {
		return metadata, depositor, "depositor is required"
	}
	if err := s.validateStruct(depositor); err != nil {
		return metadata, depositor, err.Error()
	}

	return metadata, depositor, ""
}

func stageFile(path string, src io.Reader) error {
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("create staged file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("write staged file: %w", err)
	}
	return dst.Close()
}

// validateStruct runs struct validation and turns the first failure into a
// client-facing message using JSON field names.
func (s *Server) validateStruct(v interface{}) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.New("invalid request")
	}
	fe := verrs[0]
	field := jsonPath(fe.Namespace())
	if fe.Tag() == "required" {
		return fmt.Errorf("%s is required", field)
	}
	return fmt.Errorf("%s is invalid", field)
}

// jsonPath drops the root type name from a validator namespace.
func jsonPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

// jsonFieldName reports struct fields under their JSON names.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// writeDomainError maps domain errors to appropriate HTTP status codes
// and writes a JSON error response. Internal error details are not leaked to clients.
func writeDomainError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
		} else {
			writeError(w, http.StatusBadRequest, "invalid input")
		}
	case errors.Is(err, domain.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "repository not configured")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusBadGateway, "repository rejected the credentials")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusBadGateway, "repository denied access")
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate limited")
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
