package container

import (
	"fmt"
	"net/http"

	"github.com/anime-shed/image-descriptor-go/internal/config"
	"github.com/anime-shed/image-descriptor-go/internal/factory"
	"github.com/anime-shed/image-descriptor-go/internal/logger"
	"github.com/anime-shed/image-descriptor-go/internal/observer"
	"github.com/anime-shed/image-descriptor-go/internal/repository"
	"github.com/anime-shed/image-descriptor-go/internal/service"
	"github.com/anime-shed/image-descriptor-go/internal/storage"
	"github.com/anime-shed/image-descriptor-go/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config            *config.Config
	imageFetcher      storage.ImageFetcher
	imageRepository   repository.ImageRepository
	events            *observer.EventPublisher
	metrics           *observer.MetricsObserver
	descriptorService service.DescriptorService
	handler           http.Handler
}

// NewContainer builds the dependency graph for cfg
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}

	storageType := factory.StorageType(cfg.StorageBackend)
	storageFactory := factory.NewStorageFactory()

	imageFetcher, err := storageFactory.CreateStorage(storageType, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create image source: %w", err)
	}
	refValidator, err := storageFactory.CreateValidator(storageType)
	if err != nil {
		return nil, err
	}
	imageRepository := repository.NewImageRepository(imageFetcher, refValidator)

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	descriptorService := service.NewDescriptorService(imageRepository, events, service.Options{
		FetchTimeout:    cfg.ImageFetchTimeout,
		AnalysisTimeout: cfg.AnalysisTimeout,
		MaxPixels:       cfg.MaxImagePixels,
	})
	handler := transport.NewHandler(descriptorService, metrics, cfg)

	return &Container{
		config:            cfg,
		imageFetcher:      imageFetcher,
		imageRepository:   imageRepository,
		events:            events,
		metrics:           metrics,
		descriptorService: descriptorService,
		handler:           handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the descriptor service
func (c *Container) Service() service.DescriptorService {
	return c.descriptorService
}

// Metrics returns the request counters fed by the event publisher
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}
