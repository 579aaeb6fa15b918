// Package planner serves mission estimates: it caches results, records
// metrics and attaches the route geometry for map clients.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/OCAP2/auvplanner/internal/estimator"
	"github.com/OCAP2/auvplanner/internal/geo"
	"github.com/OCAP2/auvplanner/internal/influx"
	"github.com/OCAP2/auvplanner/internal/logging"
	"github.com/OCAP2/auvplanner/pkg/core"
)

const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
)

// Publisher receives one sample per estimate request.
type Publisher interface {
	Publish(ctx context.Context, s influx.EstimateSample) error
}

// Dependencies holds all dependencies for the planner service
type Dependencies struct {
	Estimator *estimator.Estimator
	Logger    *slog.Logger
	Meter     metric.Meter // global OTel meter when nil
	Publisher Publisher    // optional
	CacheSize int          // caching disabled when <= 0
}

// Report is a successful estimate with its route geometry.
type Report struct {
	ID               string             `json:"id"`
	Input            core.MissionInput  `json:"input"`
	Result           core.MissionResult `json:"result"`
	Route            json.RawMessage    `json:"route,omitempty"`
	RouteWebMercator [][2]float64       `json:"routeWebMercator,omitempty"`
	Cached           bool               `json:"cached"`
}

// Service runs estimates. Safe for concurrent use.
type Service struct {
	deps  Dependencies
	cache *lru.Cache[string, core.MissionResult]

	estimates metric.Int64Counter
	duration  metric.Float64Histogram
	cacheHits metric.Int64Counter
}

// NewService creates a new planner service
func NewService(deps Dependencies) (*Service, error) {
	if deps.Estimator == nil {
		return nil, errors.New("planner: estimator is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	m := deps.Meter
	if m == nil {
		m = meter()
	}

	s := &Service{deps: deps}

	if deps.CacheSize > 0 {
		cache, err := lru.New[string, core.MissionResult](deps.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating result cache: %w", err)
		}
		s.cache = cache
	}

	var err error
	s.estimates, err = m.Int64Counter(
		"planner.estimates",
		metric.WithDescription("Estimate requests by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating estimates counter: %w", err)
	}

	s.duration, err = m.Float64Histogram(
		"planner.estimate.duration",
		metric.WithDescription("Time spent computing an estimate"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	s.cacheHits, err = m.Int64Counter(
		"planner.cache.hits",
		metric.WithDescription("Estimates served from the result cache"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cache hit counter: %w", err)
	}

	return s, nil
}

// Estimate validates and estimates in. A rejected mission returns an
// *estimator.ValidationError; no report is produced.
func (s *Service) Estimate(ctx context.Context, in core.MissionInput) (Report, error) {
	id := uuid.NewString()
	ctx = logging.WithRequestID(ctx, id)
	log := s.deps.Logger

	start := time.Now()
	result, cached, err := s.compute(in)
	elapsed := time.Since(start)

	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeRejected
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	s.estimates.Add(ctx, 1, attrs)
	s.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
	if cached {
		s.cacheHits.Add(ctx, 1)
	}
	s.publish(ctx, influx.EstimateSample{
		Outcome:         outcome,
		Cached:          cached,
		WaypointCount:   len(in.Waypoints),
		ComputeDuration: elapsed,
		BatteryUsageKwh: result.BatteryUsageKwh,
		Time:            start,
	})

	if err != nil {
		log.InfoContext(ctx, "Estimate rejected", "reason", err.Error(), "waypoints", len(in.Waypoints))
		return Report{}, err
	}

	log.DebugContext(ctx, "Estimate computed",
		"waypoints", len(in.Waypoints),
		"distance_m", result.TotalDistance,
		"usage_kwh", result.BatteryUsageKwh,
		"feasible", result.Feasible,
		"cached", cached,
	)

	report := Report{
		ID:               id,
		Input:            in,
		Result:           result,
		RouteWebMercator: geo.WebMercator(in.Waypoints),
		Cached:           cached,
	}
	route, err := geo.RouteGeoJSON(in.Waypoints)
	if err != nil {
		log.WarnContext(ctx, "Failed to build route geometry", "error", err)
	} else {
		report.Route = route
	}
	return report, nil
}

func (s *Service) compute(in core.MissionInput) (core.MissionResult, bool, error) {
	var key string
	if s.cache != nil {
		key = cacheKey(in)
		if res, ok := s.cache.Get(key); ok {
			return res, true, nil
		}
	}

	res, err := s.deps.Estimator.Estimate(in)
	if err != nil {
		return core.MissionResult{}, false, err
	}
	if s.cache != nil {
		s.cache.Add(key, res)
	}
	return res, false, nil
}

func (s *Service) publish(ctx context.Context, sample influx.EstimateSample) {
	if s.deps.Publisher == nil {
		return
	}
	if err := s.deps.Publisher.Publish(ctx, sample); err != nil {
		s.deps.Logger.WarnContext(ctx, "Failed to publish estimate sample", "error", err)
	}
}

// cacheKey renders every input value at full precision.
func cacheKey(in core.MissionInput) string {
	var b strings.Builder
	for _, v := range []float64{
		in.Depth, in.Speed, in.BatteryCapacity, in.Weight,
		in.Volume, in.CurrentSpeed, in.CurrentDirectionDeg,
	} {
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		b.WriteByte('|')
	}
	for _, wp := range in.Waypoints {
		b.WriteString(strconv.FormatFloat(wp.Lat, 'g', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(wp.Lon, 'g', -1, 64))
		b.WriteByte(';')
	}
	return b.String()
}

// Len returns the number of cached results.
func (s *Service) Len() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Len()
}
