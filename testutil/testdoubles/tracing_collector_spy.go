package testdoubles

import (
	"context"
	"maps"
	"sync"

	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// SpySpanContext records status and attributes set on a span.
type SpySpanContext struct {
	mu         sync.Mutex
	name       string
	status     string
	attributes map[string]string
}

func (c *SpySpanContext) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status = status
}

func (c *SpySpanContext) AddAttribute(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attributes == nil {
		c.attributes = make(map[string]string)
	}

	c.attributes[key] = value
}

// SpanRecord is a finished span.
type SpanRecord struct {
	Name            string
	Status          string
	StartAttributes map[string]string
	EndAttributes   map[string]string
}

// TracingCollectorSpy captures started and finished spans.
type TracingCollectorSpy struct {
	mu       sync.Mutex
	started  map[*SpySpanContext]map[string]string
	finished []SpanRecord
}

func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{started: make(map[*SpySpanContext]map[string]string)}
}

func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, eventstore.SpanContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	span := &SpySpanContext{name: name}
	s.started[span] = maps.Clone(attrs)

	return ctx, span
}

func (s *TracingCollectorSpy) FinishSpan(spanCtx eventstore.SpanContext, status string, attrs map[string]string) {
	span, ok := spanCtx.(*SpySpanContext)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.finished = append(s.finished, SpanRecord{
		Name:            span.name,
		Status:          status,
		StartAttributes: s.started[span],
		EndAttributes:   maps.Clone(attrs),
	})
	delete(s.started, span)
}

// Spans returns all finished spans.
func (s *TracingCollectorSpy) Spans() []SpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpanRecord(nil), s.finished...)
}

// HasSpan reports whether a span with name finished with status.
func (s *TracingCollectorSpy) HasSpan(name, status string) bool {
	for _, span := range s.Spans() {
		if span.Name == name && span.Status == status {
			return true
		}
	}

	return false
}

// OpenSpans returns how many spans were started but never finished.
func (s *TracingCollectorSpy) OpenSpans() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.started)
}

var _ eventstore.TracingCollector = (*TracingCollectorSpy)(nil)
