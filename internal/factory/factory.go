package factory

import (
	"fmt"

	"github.com/anime-shed/image-descriptor-go/internal/config"
	"github.com/anime-shed/image-descriptor-go/internal/storage"
	"github.com/anime-shed/image-descriptor-go/pkg/validation"
)

// StorageType represents different types of storage backends
type StorageType string

const (
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage StorageType = config.BackendHTTP
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = config.BackendAzure
	// LocalStorage for local file system
	LocalStorage StorageType = config.BackendLocal
)

// StorageFactory creates image sources
type StorageFactory interface {
	CreateStorage(storageType StorageType, cfg *config.Config) (storage.ImageFetcher, error)
	// CreateValidator returns the reference validator matching a storage type
	CreateValidator(storageType StorageType) (validation.RefValidator, error)
}

type storageFactory struct{}

// NewStorageFactory creates a new storage factory
func NewStorageFactory() StorageFactory {
	return &storageFactory{}
}

// CreateStorage creates a fetcher for the given backend
func (f *storageFactory) CreateStorage(storageType StorageType, cfg *config.Config) (storage.ImageFetcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage %s: nil config", storageType)
	}
	switch storageType {
	case HTTPStorage:
		return storage.NewHTTPImageFetcher(cfg.ImageFetchTimeout), nil
	case AzureStorage:
		return storage.NewAzureImageFetcher(cfg.AzureAccountName, cfg.AzureAccountKey)
	case LocalStorage:
		return storage.NewLocalImageFetcher(cfg.LocalImageRoot)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

func (f *storageFactory) CreateValidator(storageType StorageType) (validation.RefValidator, error) {
	switch storageType {
	case HTTPStorage:
		return validation.NewURLValidator(), nil
	case AzureStorage:
		return validation.BlobRefValidator{}, nil
	case LocalStorage:
		return validation.PathRefValidator{}, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
