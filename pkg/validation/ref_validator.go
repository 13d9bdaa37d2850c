package validation

import (
	"net/url"
	"path/filepath"
	"slices"
	"strings"

	apperrors "github.com/anime-shed/image-descriptor-go/internal/errors"
)

// maxRefLength bounds every image reference regardless of backend.
const maxRefLength = 2048

// RefValidator checks an image reference before it reaches a fetcher.
type RefValidator interface {
	ValidateImageRef(ref string) error
}

// URLValidator accepts absolute http(s) URLs, optionally restricted to a host list
type URLValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// NewURLValidator creates a URL validator accepting any http or https host
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: []string{"http", "https"},
		allowedHosts:   []string{}, // empty means all hosts allowed
	}
}

// NewURLValidatorWithOptions creates a URL validator with custom options
func NewURLValidatorWithOptions(schemes []string, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

func (v *URLValidator) ValidateImageRef(imageURL string) error {
	if err := checkCommon(imageURL, "URL"); err != nil {
		return err
	}

	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}
	if !slices.Contains(v.allowedSchemes, parsedURL.Scheme) {
		return apperrors.NewValidationError("URL scheme not allowed", nil)
	}
	if parsedURL.Host == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}
	if !v.isHostAllowed(parsedURL.Hostname()) {
		return apperrors.NewValidationError("URL host not allowed", nil)
	}
	return nil
}

func (v *URLValidator) isHostAllowed(host string) bool {
	return len(v.allowedHosts) == 0 || slices.Contains(v.allowedHosts, host)
}

// BlobRefValidator accepts "container/blob" references and blob URLs
type BlobRefValidator struct{}

func (BlobRefValidator) ValidateImageRef(ref string) error {
	if err := checkCommon(ref, "blob reference"); err != nil {
		return err
	}
	path := ref
	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil || u.Scheme != "https" {
			return apperrors.NewValidationError("blob URL must use https", err)
		}
		path = u.Path
	}
	container, blob, ok := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if !ok || container == "" || blob == "" {
		return apperrors.NewValidationError("blob reference must be container/blob", nil)
	}
	return nil
}

// PathRefValidator accepts relative file paths that stay inside the image root
type PathRefValidator struct{}

func (PathRefValidator) ValidateImageRef(ref string) error {
	if err := checkCommon(ref, "path"); err != nil {
		return err
	}
	if strings.Contains(ref, "://") {
		return apperrors.NewValidationError("path must not carry a URL scheme", nil)
	}
	clean := filepath.Clean(filepath.FromSlash(ref))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return apperrors.NewValidationError("path must be relative to the image root", nil)
	}
	return nil
}

func checkCommon(ref, what string) error {
	if strings.TrimSpace(ref) == "" {
		return apperrors.NewValidationError(what+" cannot be empty", nil)
	}
	if len(ref) > maxRefLength {
		return apperrors.NewValidationError(what+" too long", nil)
	}
	if strings.ContainsRune(ref, 0) {
		return apperrors.NewValidationError(what+" contains a NUL byte", nil)
	}
	return nil
}
