package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ScanEvent represents a catalog scan event
type ScanEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	FileName       string                 `json:"file_name,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of scan event
type EventType string

const (
	// ScanStarted when a catalog scan begins
	ScanStarted EventType = "scan_started"
	// ImageProcessed when an image was decoded and averaged
	ImageProcessed EventType = "image_processed"
	// AverageUnavailable when an image decoded but has no fully opaque pixel
	AverageUnavailable EventType = "average_unavailable"
	// ImageFailed when an image could not be read or decoded
	ImageFailed EventType = "image_failed"
	// ScanCompleted when the report has been assembled
	ScanCompleted EventType = "scan_completed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event ScanEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event ScanEvent)
	NotifyObserversSync(ctx context.Context, event ScanEvent)
}

// LoggingObserver logs scan events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles scan events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event ScanEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}
	if event.FileName != "" {
		fields["file_name"] = event.FileName
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case ScanStarted:
		entry.Info("Catalog scan started")
	case ImageProcessed:
		entry.Debug("Image processed")
	case AverageUnavailable:
		entry.Warn("Image has no fully opaque pixel")
	case ImageFailed:
		entry.Error("Image could not be processed")
	case ScanCompleted:
		entry.Info("Catalog scan completed")
	default:
		entry.Info("Scan event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from scan events
type MetricsObserver struct {
	mu                  sync.RWMutex
	scans               int64
	processedImages     int64
	failedImages        int64
	unavailableAverages int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles scan events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event ScanEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case ImageProcessed:
		o.processedImages++
		o.totalProcessingTime += event.ProcessingTime
	case AverageUnavailable:
		o.unavailableAverages++
		o.totalProcessingTime += event.ProcessingTime
	case ImageFailed:
		o.failedImages++
	case ScanCompleted:
		o.scans++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if decoded := o.processedImages + o.unavailableAverages; decoded > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(decoded)
	}

	return map[string]interface{}{
		"scans":                 o.scans,
		"processed_images":      o.processedImages,
		"failed_images":         o.failedImages,
		"unavailable_averages":  o.unavailableAverages,
		"total_processing_time": o.totalProcessingTime,
		"avg_processing_time":   avgProcessingTime,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

func (p *EventPublisher) snapshot() []Observer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	return observers
}

// NotifyObservers notifies all observers of an event concurrently
func (p *EventPublisher) NotifyObservers(ctx context.Context, event ScanEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	for _, observer := range p.snapshot() {
		go notify(ctx, observer, event)
	}
}

// NotifyObserversSync notifies all observers in subscription order before returning
func (p *EventPublisher) NotifyObserversSync(ctx context.Context, event ScanEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	for _, observer := range p.snapshot() {
		notify(ctx, observer, event)
	}
}

func notify(ctx context.Context, obs Observer, event ScanEvent) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("observer", obs.GetObserverName()).
				WithField("panic", r).
				Error("Observer panicked while handling event")
		}
	}()
	obs.OnEvent(ctx, event)
}
