package container

import (
	"fmt"
	"net/http"

	"github.com/anime-shed/pokemon-palette-go/internal/catalog"
	"github.com/anime-shed/pokemon-palette-go/internal/config"
	"github.com/anime-shed/pokemon-palette-go/internal/factory"
	"github.com/anime-shed/pokemon-palette-go/internal/logger"
	"github.com/anime-shed/pokemon-palette-go/internal/observer"
	"github.com/anime-shed/pokemon-palette-go/internal/palette"
	"github.com/anime-shed/pokemon-palette-go/internal/repository"
	"github.com/anime-shed/pokemon-palette-go/internal/service"
	"github.com/anime-shed/pokemon-palette-go/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	averager        palette.Averager
	imageRepository repository.ImageRepository
	publisher       *observer.EventPublisher
	metrics         *observer.MetricsObserver
	catalog         *catalog.Catalog
	paletteService  service.PaletteService
	handler         http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	components := factory.NewComponentFactory(cfg)

	store, err := components.StorageFactory.CreateStorage(factory.StorageType(cfg.StorageType))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s storage: %w", cfg.StorageType, err)
	}

	// Build dependency graph
	averager := components.AveragerFactory.CreateAverager()
	imageRepository := repository.NewImageRepository(store)

	publisher := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	scanner := catalog.NewScanner(imageRepository, averager, publisher, cfg.AverageWorkers)
	cat := catalog.New(scanner, catalog.NewGate(cfg.MarkerPath), cfg.ReportPath)

	paletteService := service.NewPaletteService(imageRepository, averager, cat)
	handler := transport.NewHandler(paletteService, cfg)

	return &Container{
		config:          cfg,
		averager:        averager,
		imageRepository: imageRepository,
		publisher:       publisher,
		metrics:         metrics,
		catalog:         cat,
		paletteService:  paletteService,
		handler:         handler,
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

// Catalog returns the gated catalog
func (c *Container) Catalog() *catalog.Catalog {
	return c.catalog
}

// Averager returns the shared averager
func (c *Container) Averager() palette.Averager {
	return c.averager
}

// Repository returns the image repository
func (c *Container) Repository() repository.ImageRepository {
	return c.imageRepository
}

// Service returns the palette service
func (c *Container) Service() service.PaletteService {
	return c.paletteService
}

// Metrics returns the scan counters collected so far
func (c *Container) Metrics() map[string]interface{} {
	return c.metrics.GetMetrics()
}

// Close releases the averager's workers
func (c *Container) Close() error {
	return c.averager.Close()
}
