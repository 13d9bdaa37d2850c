package container

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/image/bmp"

	"github.com/anime-shed/image-descriptor-go/internal/config"
	"github.com/anime-shed/image-descriptor-go/internal/descriptor"
	"github.com/anime-shed/image-descriptor-go/pkg/models"
)

func localConfig(root string) *config.Config {
	return &config.Config{
		Host:               "127.0.0.1",
		Port:               "8080",
		RequestTimeout:     5 * time.Second,
		ImageFetchTimeout:  time.Second,
		AnalysisTimeout:    5 * time.Second,
		MaxRequestBodySize: 1024,
		MaxImagePixels:     1 << 20,
		StorageBackend:     config.BackendLocal,
		LocalImageRoot:     root,
	}
}

func TestNewContainer_LocalEndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	root := t.TempDir()

	img := image.NewRGBA(image.Rect(0, 0, 10, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, color.RGBA{200, 50, 25, 255})
		}
	}
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "x.bmp"), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := NewContainer(localConfig(root))
	if err != nil {
		t.Fatalf("NewContainer failed: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/descriptor", strings.NewReader(`{"url":"x.bmp"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp models.DescriptorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Width != 10 || resp.Height != 6 || len(resp.Descriptor) != descriptor.Length {
		t.Errorf("Unexpected response: %dx%d len %d", resp.Width, resp.Height, len(resp.Descriptor))
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/descriptor", strings.NewReader(`{"url":"../x.bmp"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for escaping path, got %d", w.Code)
	}

	m := c.Metrics().GetMetrics()
	if m.TotalRequests != 1 || m.SuccessfulRequests != 1 || m.PixelsProcessed != 60 {
		t.Errorf("Unexpected metrics: %+v", m)
	}
}

func TestNewContainer_Errors(t *testing.T) {
	if _, err := NewContainer(nil); err == nil {
		t.Error("Expected error for nil config")
	}
	cfg := localConfig(t.TempDir())
	cfg.StorageBackend = "ftp"
	if _, err := NewContainer(cfg); err == nil {
		t.Error("Expected error for unsupported backend")
	}
}
