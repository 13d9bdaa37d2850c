package observer

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type recordingObserver struct {
	name   string
	events []EventType
}

func (r *recordingObserver) OnEvent(ctx context.Context, e DescriptorEvent) {
	r.events = append(r.events, e.EventType)
}

func (r *recordingObserver) GetObserverName() string { return r.name }

type panickingObserver struct{}

func (panickingObserver) OnEvent(ctx context.Context, e DescriptorEvent) { panic("boom") }
func (panickingObserver) GetObserverName() string { return "panicker" }

func TestEventPublisher_DeliversInOrder(t *testing.T) {
	p := NewEventPublisher()
	first := &recordingObserver{name: "first"}
	second := &recordingObserver{name: "second"}
	p.Subscribe(first)
	p.Subscribe(panickingObserver{})
	p.Subscribe(second)

	ctx := context.Background()
	p.NotifyObservers(ctx, DescriptorEvent{EventType: DescriptorStarted})
	p.NotifyObservers(ctx, DescriptorEvent{EventType: DescriptorCompleted})

	want := []EventType{DescriptorStarted, DescriptorCompleted}
	if diff := cmp.Diff(want, first.events); diff != "" {
		t.Errorf("first observer events mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, second.events); diff != "" {
		t.Errorf("observer after a panicking one missed events (-want +got):\n%s", diff)
	}

	p.Unsubscribe(&recordingObserver{name: "first"})
	p.NotifyObservers(ctx, DescriptorEvent{EventType: DescriptorFailed})
	if len(first.events) != 2 {
		t.Errorf("Unsubscribed observer received %d events", len(first.events))
	}
	if len(second.events) != 3 {
		t.Errorf("Expected 3 events for remaining observer, got %d", len(second.events))
	}
}

func TestMetricsObserver(t *testing.T) {
	m := NewMetricsObserver()
	ctx := context.Background()

	events := []DescriptorEvent{
		{EventType: DescriptorStarted},
		{EventType: DescriptorCompleted, Duration: 10 * time.Millisecond, Width: 8, Height: 4},
		{EventType: DescriptorStarted},
		{EventType: DescriptorCompleted, Duration: 30 * time.Millisecond, Width: 2, Height: 2},
		{EventType: DescriptorStarted},
		{EventType: ImageFetchFailed},
		{EventType: DescriptorFailed},
	}
	for _, e := range events {
		m.OnEvent(ctx, e)
	}

	want := Metrics{
		TotalRequests:      3,
		SuccessfulRequests: 2,
		FailedRequests:     1,
		FetchFailures:      1,
		PixelsProcessed:    36,
		AvgProcessingTime:  20 * time.Millisecond,
	}
	if diff := cmp.Diff(want, m.GetMetrics()); diff != "" {
		t.Errorf("metrics mismatch (-want +got):\n%s", diff)
	}
}

func TestLoggingObserver_Levels(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	o := NewLoggingObserver(log)

	tests := []struct {
		event EventType
		level logrus.Level
	}{
		{DescriptorStarted, logrus.DebugLevel},
		{DescriptorCompleted, logrus.InfoLevel},
		{DescriptorFailed, logrus.ErrorLevel},
		{ImageFetched, logrus.DebugLevel},
		{ImageFetchFailed, logrus.ErrorLevel},
	}
	for _, tt := range tests {
		hook.Reset()
		o.OnEvent(context.Background(), DescriptorEvent{
			EventType:    tt.event,
			RequestID:    "req-1",
			ImageRef:     "a.bmp",
			Duration:     5 * time.Millisecond,
			ErrorMessage: "x",
		})
		entry := hook.LastEntry()
		if entry == nil {
			t.Fatalf("%s: no log entry", tt.event)
		}
		if entry.Level != tt.level {
			t.Errorf("%s: expected level %s, got %s", tt.event, tt.level, entry.Level)
		}
		if entry.Data["request_id"] != "req-1" || entry.Data["duration_ms"] != int64(5) {
			t.Errorf("%s: missing fields: %v", tt.event, entry.Data)
		}
	}
}
