package validation

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/anime-shed/image-descriptor-go/internal/errors"
)

// expectMessage asserts err is a validation AppError carrying msg.
func expectMessage(t *testing.T, ref string, err error, msg string) {
	t.Helper()
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Errorf("%q: expected AppError, got %T (%v)", ref, err, err)
		return
	}
	if appErr.Type != apperrors.ErrorTypeValidation {
		t.Errorf("%q: expected validation error, got %s", ref, appErr.Type)
	}
	if msg != "" && appErr.Message != msg {
		t.Errorf("%q: expected %q, got %q", ref, msg, appErr.Message)
	}
}

func TestURLValidator_ValidURLs(t *testing.T) {
	validator := NewURLValidator()

	validURLs := []string{
		"http://example.com/image.bmp",
		"https://example.com/image.png",
		"https://subdomain.example.com/path/to/image.jpg",
		"http://192.168.1.1/image.jpg",
		"http://example.com:8080/image.jpg",
	}
	for _, u := range validURLs {
		if err := validator.ValidateImageRef(u); err != nil {
			t.Errorf("Expected valid URL %s to pass validation, got error: %v", u, err)
		}
	}
}

func TestURLValidator_Rejections(t *testing.T) {
	validator := NewURLValidator()

	tests := []struct {
		url string
		msg string
	}{
		{"", "URL cannot be empty"},
		{"   ", "URL cannot be empty"},
		{"\t\n", "URL cannot be empty"},
		{"not-a-url", "URL scheme not allowed"},
		{"ftp://example.com/image.jpg", "URL scheme not allowed"},
		{"file://local/path/image.jpg", "URL scheme not allowed"},
		{"http://", "URL must have a valid host"},
		{"https://", "URL must have a valid host"},
		{"http:///path", "URL must have a valid host"},
		{"http://example.com/" + strings.Repeat("a", maxRefLength), "URL too long"},
		{"http://example.com/a\x00b", "URL contains a NUL byte"},
	}
	for _, tt := range tests {
		expectMessage(t, tt.url, validator.ValidateImageRef(tt.url), tt.msg)
	}
}

func TestURLValidator_RestrictedHosts(t *testing.T) {
	validator := NewURLValidatorWithOptions([]string{"https"}, []string{"example.com", "trusted.com"})

	for _, u := range []string{"https://example.com/a.png", "https://trusted.com:443/b.bmp"} {
		if err := validator.ValidateImageRef(u); err != nil {
			t.Errorf("Expected allowed host URL '%s' to pass validation, got error: %v", u, err)
		}
	}
	for _, u := range []string{"https://malicious.com/a.png", "https://untrusted.com/b.png"} {
		expectMessage(t, u, validator.ValidateImageRef(u), "URL host not allowed")
	}
	expectMessage(t, "http://example.com/a.png", validator.ValidateImageRef("http://example.com/a.png"), "URL scheme not allowed")
}

func TestBlobRefValidator(t *testing.T) {
	v := BlobRefValidator{}
	for _, ref := range []string{"images/cat.bmp", "/images/a/b.png", "https://acct.blob.core.windows.net/images/c.jpg"} {
		if err := v.ValidateImageRef(ref); err != nil {
			t.Errorf("Expected %q to pass, got %v", ref, err)
		}
	}
	tests := []struct {
		ref string
		msg string
	}{
		{"", "blob reference cannot be empty"},
		{"images", "blob reference must be container/blob"},
		{"images/", "blob reference must be container/blob"},
		{"http://acct.blob.core.windows.net/images/c.jpg", "blob URL must use https"},
	}
	for _, tt := range tests {
		expectMessage(t, tt.ref, v.ValidateImageRef(tt.ref), tt.msg)
	}
}

func TestPathRefValidator(t *testing.T) {
	v := PathRefValidator{}
	for _, ref := range []string{"a.bmp", "train/cat/001.bmp", "./x.png", "a/../b.png"} {
		if err := v.ValidateImageRef(ref); err != nil {
			t.Errorf("Expected %q to pass, got %v", ref, err)
		}
	}
	tests := []struct {
		ref string
		msg string
	}{
		{" ", "path cannot be empty"},
		{"../secret.bmp", "path must be relative to the image root"},
		{"a/../../secret.bmp", "path must be relative to the image root"},
		{"/etc/passwd", "path must be relative to the image root"},
		{"file:///etc/passwd", "path must not carry a URL scheme"},
	}
	for _, tt := range tests {
		expectMessage(t, tt.ref, v.ValidateImageRef(tt.ref), tt.msg)
	}
}
