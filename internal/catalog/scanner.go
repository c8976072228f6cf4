// Package catalog walks the image store, averages every image and keeps
// the resulting report on disk.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/anime-shed/pokemon-palette-go/internal/logger"
	"github.com/anime-shed/pokemon-palette-go/internal/observer"
	"github.com/anime-shed/pokemon-palette-go/internal/palette"
	"github.com/anime-shed/pokemon-palette-go/internal/repository"
	"github.com/anime-shed/pokemon-palette-go/internal/storage"
	"github.com/anime-shed/pokemon-palette-go/pkg/models"
)

// Scanner builds a Report for every image in a repository.
type Scanner struct {
	repo      repository.ImageRepository
	averager  palette.Averager
	publisher observer.Subject
	workers   int
	now       func() time.Time
}

// NewScanner creates a scanner. publisher may be nil; workers <= 0 uses one
// goroutine per CPU.
func NewScanner(repo repository.ImageRepository, averager palette.Averager, publisher observer.Subject, workers int) *Scanner {
	return &Scanner{
		repo:      repo,
		averager:  averager,
		publisher: publisher,
		workers:   workers,
		now:       time.Now,
	}
}

// Scan processes all images concurrently. A file that cannot be decoded
// still gets a record with its name, path and size.
func (s *Scanner) Scan(ctx context.Context) (*models.Report, error) {
	start := s.now()
	s.publish(ctx, observer.ScanEvent{EventType: observer.ScanStarted, Success: true})

	images, err := s.repo.ListImages(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]models.ImageRecord, len(images))
	pool := palette.NewWorkerPool(s.workers)
	pool.Start()
	for i, obj := range images {
		i, obj := i, obj
		pool.Submit(func() {
			if ctx.Err() != nil {
				return
			}
			records[i] = s.processImage(ctx, obj)
		})
	}
	pool.Wait()
	pool.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &models.Report{
		Images:      records,
		TotalImages: len(records),
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
	}

	s.publish(ctx, observer.ScanEvent{
		EventType:      observer.ScanCompleted,
		ProcessingTime: s.now().Sub(start),
		Success:        true,
		Metadata:       map[string]interface{}{"total_images": report.TotalImages},
	})
	return report, nil
}

func (s *Scanner) processImage(ctx context.Context, obj storage.ObjectInfo) models.ImageRecord {
	start := s.now()
	record := models.ImageRecord{
		FileName: obj.Name,
		FilePath: obj.Path,
		FileSize: obj.Size,
	}
	log := logger.ForImage(obj.Name)

	loaded, err := s.repo.LoadImage(ctx, obj.Name)
	if err != nil {
		log.WithError(err).Warn("Skipping pixel data for image")
		s.publish(ctx, observer.ScanEvent{
			EventType:    observer.ImageFailed,
			FileName:     obj.Name,
			ErrorMessage: err.Error(),
			Metadata:     map[string]interface{}{"decode_failure": errors.Is(err, palette.ErrDecodeFailure)},
		})
		return record
	}

	b := loaded.Image.Bounds()
	width, height := b.Dx(), b.Dy()
	record.Width = &width
	record.Height = &height

	avg, err := s.averager.Average(loaded.Image)
	if err != nil {
		log.WithError(err).Info("No average color for image")
		s.publish(ctx, observer.ScanEvent{
			EventType:      observer.AverageUnavailable,
			FileName:       obj.Name,
			ProcessingTime: s.now().Sub(start),
			Success:        true,
		})
		return record
	}
	record.RGBAverage = avg.String()

	s.publish(ctx, observer.ScanEvent{
		EventType:      observer.ImageProcessed,
		FileName:       obj.Name,
		ProcessingTime: s.now().Sub(start),
		Success:        true,
		Metadata: map[string]interface{}{
			"format":      loaded.Format,
			"rgb_average": record.RGBAverage,
		},
	})
	return record
}

func (s *Scanner) publish(ctx context.Context, event observer.ScanEvent) {
	if s.publisher == nil {
		return
	}
	s.publisher.NotifyObserversSync(ctx, event)
}
