// Package entur fetches realtime departures for a fixed set of stop places
// and platforms from the Entur Journey Planner and keeps the latest result
// per place in memory.
//
// A Service performs exactly one request per Update. Polling, retries and
// persistence are left to the caller.
package entur

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"enturclient.dev/internal/clock"
	"enturclient.dev/internal/logging"
	"enturclient.dev/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Service tracks departures for the configured stops and quays.
type Service struct {
	clientName string
	opts       QueryOptions
	transport  Transport
	logger     *slog.Logger
	metrics    *metrics.Metrics
	clock      clock.Clock

	// requestMu keeps a single request in flight.
	requestMu sync.Mutex

	mu          sync.RWMutex
	stops       []string
	quays       []string
	expanded    bool
	info        map[string]*Place
	lastUpdated time.Time
}

// UpdateResult describes a successful Update.
type UpdateResult struct {
	// NothingConfigured is set when no stops or quays are tracked; no request
	// was sent.
	NothingConfigured bool
	UpdatedAt         time.Time
	// PlaceIDs lists the places refreshed by this update, in response order.
	PlaceIDs []string
	// Rejected holds one *NormalizationError per skipped place record.
	Rejected []error
}

// Option configures a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	transport  Transport
	httpClient *http.Client
	logger     *slog.Logger
	registerer prometheus.Registerer
}

// WithTransport replaces the HTTP transport, e.g. with a test double.
func WithTransport(t Transport) Option {
	return func(o *serviceOptions) { o.transport = t }
}

// WithHTTPClient sets the client used by the default transport.
func WithHTTPClient(c *http.Client) Option {
	return func(o *serviceOptions) { o.httpClient = c }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *serviceOptions) { o.logger = l }
}

// WithRegisterer registers the client metrics with reg instead of a private
// registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *serviceOptions) { o.registerer = reg }
}

// New validates cfg and creates a Service. It performs no I/O.
func New(cfg Config, options ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o serviceOptions
	for _, opt := range options {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	logger := o.logger.With(slog.String("component", "entur_service"))

	m, err := metrics.NewWithRegisterer(o.registerer)
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	transport := o.transport
	if transport == nil {
		transport = NewHTTPTransport(cfg.Endpoint, o.httpClient, cfg.RequestsPerMinute, o.logger)
	}

	return &Service{
		clientName: cfg.ClientName,
		opts:       cfg.queryOptions(),
		transport:  transport,
		logger:     logger,
		metrics:    m,
		clock:      clock.RealClock{},
		stops:      append([]string(nil), cfg.Stops...),
		quays:      append([]string(nil), cfg.Quays...),
		info:       make(map[string]*Place),
	}, nil
}

// Open creates a Service and, when cfg.ExpandQuays is set, expands the quays
// of the configured stops. A failed expansion is logged and the Service is
// still returned, tracking only the configured ids.
func Open(ctx context.Context, cfg Config, options ...Option) (*Service, error) {
	s, err := New(cfg, options...)
	if err != nil {
		return nil, err
	}
	if cfg.ExpandQuays {
		if _, err := s.ExpandQuays(ctx); err != nil {
			logging.LogError(s.logger, "quay expansion failed", err,
				slog.String("kind", KindOf(err).String()))
		}
	}
	return s, nil
}

// ExpandQuays looks up the platforms of every configured stop place that has
// more than one platform with upcoming departures, and starts tracking them.
// It may be called once per Service; any failure leaves the tracked quays
// unchanged.
func (s *Service) ExpandQuays(ctx context.Context) ([]string, error) {
	s.requestMu.Lock()
	defer s.requestMu.Unlock()

	s.mu.RLock()
	expanded := s.expanded
	stops := append([]string(nil), s.stops...)
	s.mu.RUnlock()

	if expanded {
		return nil, ErrQuaysAlreadyExpanded
	}
	if len(stops) == 0 {
		return nil, nil
	}

	logger := s.logger.With(slog.String("kind", KindExpansion))
	ctx = logging.WithLogger(ctx, logger)
	logging.LogOperation(logger, "expanding_quays", slog.Int("stops", len(stops)))

	req, err := BuildExpansionQuery(stops, s.opts)
	if err != nil {
		return nil, err
	}
	resp, err := s.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	discovered, err := discoveredQuays(resp.Data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &RequestError{Kind: FailureTransport, Err: err}
	}

	s.mu.Lock()
	s.quays = append(s.quays, discovered...)
	s.expanded = true
	s.mu.Unlock()

	logging.LogOperation(logger, "quays_expanded", slog.Int("quays", len(discovered)))
	return discovered, nil
}

// Update fetches the next departures for every tracked place and stores the
// normalized places. On a request failure the stored places are untouched
// and the *RequestError is returned.
func (s *Service) Update(ctx context.Context) (UpdateResult, error) {
	s.requestMu.Lock()
	defer s.requestMu.Unlock()

	s.mu.RLock()
	stops := append([]string(nil), s.stops...)
	quays := append([]string(nil), s.quays...)
	s.mu.RUnlock()

	logger := s.logger.With(slog.String("kind", KindDepartures))
	ctx = logging.WithLogger(ctx, logger)

	req, err := BuildDeparturesQuery(stops, quays, s.opts)
	if errors.Is(err, ErrEmptyQuery) {
		logger.Debug("no stops or quays configured, skipping update")
		return UpdateResult{NothingConfigured: true}, nil
	}
	if err != nil {
		return UpdateResult{}, err
	}

	resp, err := s.execute(ctx, req)
	if err != nil {
		return UpdateResult{}, err
	}

	places, rejected, err := normalizePlaces(ctx, resp.Data)
	if err != nil {
		return UpdateResult{}, err
	}
	s.metrics.ObserveNormalization(len(places), len(rejected))
	for _, r := range rejected {
		logger.Warn("skipped place record", slog.Any("error", r))
	}

	// A cancelled caller must not observe a late write.
	if err := ctx.Err(); err != nil {
		return UpdateResult{}, &RequestError{Kind: FailureTransport, Err: err}
	}

	now := s.clock.Now()
	ids := make([]string, 0, len(places))

	s.mu.Lock()
	info := make(map[string]*Place, len(s.info)+len(places))
	for id, p := range s.info {
		info[id] = p
	}
	for _, p := range places {
		info[p.ID()] = p
		ids = append(ids, p.ID())
	}
	s.info = info
	s.lastUpdated = now
	s.mu.Unlock()

	s.metrics.MarkUpdated(now)

	return UpdateResult{UpdatedAt: now, PlaceIDs: ids, Rejected: rejected}, nil
}

func (s *Service) execute(ctx context.Context, req Request) (*Response, error) {
	start := s.clock.Now()
	resp, err := s.transport.Execute(ctx, req, s.clientName)
	duration := s.clock.Now().Sub(start)

	if err != nil {
		var reqErr *RequestError
		if !errors.As(err, &reqErr) {
			err = &RequestError{Kind: FailureTransport, Err: err}
		}
		kind := KindOf(err)
		s.metrics.ObserveRequest(req.Kind, kind.String(), duration)
		logging.LogError(logging.FromContext(ctx), "entur request failed", err,
			slog.String("failure", kind.String()))
		return nil, err
	}
	s.metrics.ObserveRequest(req.Kind, metrics.OutcomeSuccess, duration)
	return resp, nil
}

// StopInfo returns the latest place for id. ok is false until an update has
// returned that place.
func (s *Service) StopInfo(id string) (place *Place, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	place, ok = s.info[id]
	return place, ok
}

// Summary returns the departure summary of a stored place.
func (s *Service) Summary(id string) (DepartureSummary, bool, error) {
	place, ok := s.StopInfo(id)
	if !ok {
		return DepartureSummary{}, false, nil
	}
	summary, err := place.Summary()
	return summary, true, err
}

// AllStopPlacesQuays returns the tracked stop places followed by the tracked
// quays, including quays added by ExpandQuays.
func (s *Service) AllStopPlacesQuays() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]string, 0, len(s.stops)+len(s.quays))
	all = append(all, s.stops...)
	return append(all, s.quays...)
}

// LastUpdated is the time of the last successful update, or the zero time.
func (s *Service) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// Metrics exposes the Prometheus registry backing the client metrics. It is
// nil when WithRegisterer was used.
func (s *Service) Metrics() *prometheus.Registry {
	return s.metrics.Registry
}
