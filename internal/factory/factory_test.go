package factory

import (
	"testing"
	"time"

	"github.com/anime-shed/image-descriptor-go/internal/config"
	"github.com/anime-shed/image-descriptor-go/internal/storage"
	"github.com/anime-shed/image-descriptor-go/pkg/validation"
)

func TestCreateStorage(t *testing.T) {
	cfg := &config.Config{
		ImageFetchTimeout: 5 * time.Second,
		LocalImageRoot:    t.TempDir(),
		AzureAccountName:  "acct",
		AzureAccountKey:   "a2V5",
	}
	f := NewStorageFactory()

	if fetcher, err := f.CreateStorage(HTTPStorage, cfg); err != nil {
		t.Errorf("http: %v", err)
	} else if _, ok := fetcher.(*storage.HTTPImageFetcher); !ok {
		t.Errorf("http: expected *HTTPImageFetcher, got %T", fetcher)
	}

	if fetcher, err := f.CreateStorage(LocalStorage, cfg); err != nil {
		t.Errorf("local: %v", err)
	} else if local, ok := fetcher.(*storage.LocalImageFetcher); !ok || local.Root() != cfg.LocalImageRoot {
		t.Errorf("local: unexpected fetcher %T", fetcher)
	}

	if fetcher, err := f.CreateStorage(AzureStorage, cfg); err != nil {
		t.Errorf("azure: %v", err)
	} else if _, ok := fetcher.(*storage.AzureImageFetcher); !ok {
		t.Errorf("azure: expected *AzureImageFetcher, got %T", fetcher)
	}

	if _, err := f.CreateStorage("ftp", cfg); err == nil {
		t.Error("Expected error for unsupported storage type")
	}
	if _, err := f.CreateStorage(HTTPStorage, nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestCreateValidator(t *testing.T) {
	f := NewStorageFactory()
	tests := []struct {
		typ StorageType
		ok  string
		bad string
	}{
		{HTTPStorage, "https://example.com/a.bmp", "images/a.bmp"},
		{AzureStorage, "images/a.bmp", "images"},
		{LocalStorage, "images/a.bmp", "../a.bmp"},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			var v validation.RefValidator
			v, err := f.CreateValidator(tt.typ)
			if err != nil {
				t.Fatalf("CreateValidator failed: %v", err)
			}
			if err := v.ValidateImageRef(tt.ok); err != nil {
				t.Errorf("Expected %q to pass, got %v", tt.ok, err)
			}
			if err := v.ValidateImageRef(tt.bad); err == nil {
				t.Errorf("Expected %q to fail", tt.bad)
			}
		})
	}
	if _, err := f.CreateValidator("ftp"); err == nil {
		t.Error("Expected error for unsupported storage type")
	}
}
