package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DescriptorEvent is published at each stage of a descriptor request
type DescriptorEvent struct {
	EventType    EventType     `json:"event_type"`
	Timestamp    time.Time     `json:"timestamp"`
	RequestID    string        `json:"request_id"`
	ImageRef     string        `json:"image_ref"`
	Duration     time.Duration `json:"duration"`
	Width        int           `json:"width,omitempty"`
	Height       int           `json:"height,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// EventType represents the stage an event reports
type EventType string

const (
	DescriptorStarted   EventType = "descriptor_started"
	DescriptorCompleted EventType = "descriptor_completed"
	DescriptorFailed    EventType = "descriptor_failed"
	ImageFetched        EventType = "image_fetched"
	ImageFetchFailed    EventType = "image_fetch_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event DescriptorEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event DescriptorEvent)
}

// LoggingObserver writes every event to a logrus logger
type LoggingObserver struct {
	logger *logrus.Logger
}

func NewLoggingObserver(logger *logrus.Logger) *LoggingObserver {
	return &LoggingObserver{logger: logger}
}

func (o *LoggingObserver) OnEvent(ctx context.Context, event DescriptorEvent) {
	fields := logrus.Fields{
		"event_type": event.EventType,
		"request_id": event.RequestID,
		"image_ref":  event.ImageRef,
	}
	if event.Duration > 0 {
		fields["duration_ms"] = event.Duration.Milliseconds()
	}
	if event.Width > 0 {
		fields["width"] = event.Width
		fields["height"] = event.Height
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case DescriptorStarted:
		entry.Debug("Descriptor computation started")
	case DescriptorCompleted:
		entry.Info("Descriptor computation completed")
	case DescriptorFailed:
		entry.Error("Descriptor computation failed")
	case ImageFetched:
		entry.Debug("Image fetched successfully")
	case ImageFetchFailed:
		entry.Error("Image fetch failed")
	default:
		entry.Info("Descriptor event occurred")
	}
}

func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// Metrics is a snapshot of MetricsObserver counters
type Metrics struct {
	TotalRequests      int64         `json:"total_requests"`
	SuccessfulRequests int64         `json:"successful_requests"`
	FailedRequests     int64         `json:"failed_requests"`
	FetchFailures      int64         `json:"fetch_failures"`
	PixelsProcessed    int64         `json:"pixels_processed"`
	AvgProcessingTime  time.Duration `json:"avg_processing_time_ns"`
}

// MetricsObserver aggregates request counters from events
type MetricsObserver struct {
	mu                  sync.RWMutex
	metrics             Metrics
	totalProcessingTime time.Duration
}

func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

func (o *MetricsObserver) OnEvent(ctx context.Context, event DescriptorEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case DescriptorStarted:
		o.metrics.TotalRequests++
	case DescriptorCompleted:
		o.metrics.SuccessfulRequests++
		o.metrics.PixelsProcessed += int64(event.Width) * int64(event.Height)
		o.totalProcessingTime += event.Duration
	case DescriptorFailed:
		o.metrics.FailedRequests++
	case ImageFetchFailed:
		o.metrics.FetchFailures++
	}
}

func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns a copy of the current counters
func (o *MetricsObserver) GetMetrics() Metrics {
	o.mu.RLock()
	defer o.mu.RUnlock()

	m := o.metrics
	if m.SuccessfulRequests > 0 {
		m.AvgProcessingTime = o.totalProcessingTime / time.Duration(m.SuccessfulRequests)
	}
	return m
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

func NewEventPublisher() *EventPublisher {
	return &EventPublisher{}
}

func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes the first observer with the same name
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

// NotifyObservers delivers event to every observer in subscription order.
// Delivery is synchronous; a panicking observer is logged and skipped.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event DescriptorEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, obs := range observers {
		p.deliver(ctx, obs, event)
	}
}

func (p *EventPublisher) deliver(ctx context.Context, obs Observer, event DescriptorEvent) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("observer", obs.GetObserverName()).
				WithField("panic", r).
				Error("Observer panicked while handling event")
		}
	}()
	obs.OnEvent(ctx, event)
}
