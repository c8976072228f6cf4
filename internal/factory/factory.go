package factory

import (
	"fmt"

	"github.com/anime-shed/pokemon-palette-go/internal/config"
	"github.com/anime-shed/pokemon-palette-go/internal/palette"
	"github.com/anime-shed/pokemon-palette-go/internal/storage"
	"github.com/anime-shed/pokemon-palette-go/pkg/validation"
)

// StorageType represents different types of storage backends
type StorageType string

const (
	// LocalStorage reads images from a directory
	LocalStorage StorageType = config.StorageLocal
	// HTTPStorage fetches images relative to a base URL
	HTTPStorage StorageType = config.StorageHTTP
	// AzureStorage reads images from a blob container
	AzureStorage StorageType = config.StorageAzure
)

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.ImageStore, error)
}

// AveragerFactory creates pixel averagers
type AveragerFactory interface {
	CreateAverager() palette.Averager
}

type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a storage factory bound to the configuration
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStorage creates a storage implementation based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.ImageStore, error) {
	switch storageType {
	case LocalStorage:
		return storage.NewLocalStore(f.cfg.ImageDir)
	case HTTPStorage:
		if err := validation.NewURLValidator().ValidateBaseURL(f.cfg.ImageBaseURL); err != nil {
			return nil, fmt.Errorf("IMAGE_BASE_URL: %w", err)
		}
		return storage.NewHTTPStore(f.cfg.ImageBaseURL, f.cfg.ImageFetchTimeout)
	case AzureStorage:
		return storage.NewAzureStore(f.cfg.AzureAccountName, f.cfg.AzureAccountKey, f.cfg.AzureContainer)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

type averagerFactory struct {
	opts palette.Options
}

// NewAveragerFactory derives averaging options from the configuration
func NewAveragerFactory(cfg *config.Config) AveragerFactory {
	return &averagerFactory{
		opts: palette.DefaultOptions().
			WithWorkers(cfg.AverageWorkers).
			WithParallelThreshold(cfg.ParallelThreshold),
	}
}

func (f *averagerFactory) CreateAverager() palette.Averager {
	return palette.NewAverager(f.opts)
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	StorageFactory  StorageFactory
	AveragerFactory AveragerFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		StorageFactory:  NewStorageFactory(cfg),
		AveragerFactory: NewAveragerFactory(cfg),
	}
}
