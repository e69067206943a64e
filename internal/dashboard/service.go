package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/namwkim/dataviz-storytelling/internal/analytics"
	"github.com/namwkim/dataviz-storytelling/internal/apperrors"
	"github.com/namwkim/dataviz-storytelling/internal/cache"
	"github.com/namwkim/dataviz-storytelling/internal/chart"
	"github.com/namwkim/dataviz-storytelling/internal/petition"
	"github.com/namwkim/dataviz-storytelling/internal/telemetry"

	"github.com/google/uuid"
	tracer "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DatasetProvider hands out the prepared petitions.
type DatasetProvider interface {
	Dataset(ctx context.Context) (*petition.Dataset, error)
	Invalidate()
}

// Uploader publishes rendered exports.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

type Settings struct {
	TopN     int
	AtlasURL string
	CacheTTL time.Duration
}

type Service struct {
	data     DatasetProvider
	cache    cache.Cache
	settings Settings
	logger   *zap.Logger
	tracer   tracer.Tracer
}

func NewService(data DatasetProvider, c cache.Cache, settings Settings, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.TopN <= 0 {
		settings.TopN = 20
	}
	return &Service{
		data:     data,
		cache:    c,
		settings: settings,
		logger:   logger,
		tracer:   telemetry.GetTracer("dashboard"),
	}
}

// Dashboard is every panel for one set of controls.
type Dashboard struct {
	Controls    Controls        `json:"controls"`
	Rows        int             `json:"rows"`
	Trend       chart.Spec      `json:"trend"`
	Breakdown   chart.Spec      `json:"breakdown"`
	Geo         chart.Spec      `json:"geo"`
	Correlation chart.Spec      `json:"correlation"`
	Fit         *analytics.Line `json:"fit,omitempty"`
}

func (d *Dashboard) MarshalBinary() ([]byte, error) {
	return json.Marshal(d)
}

func (d *Dashboard) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, d)
}

// --------------------------------------------------
// Render the whole dashboard
// --------------------------------------------------
func (s *Service) Render(ctx context.Context, c Controls) (*Dashboard, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.Render")
	defer span.End()
	span.SetAttributes(
		telemetry.String("measure", string(c.Measure)),
		telemetry.String("category", string(c.Category)),
		telemetry.String("view", string(c.View)),
		telemetry.Int("years", len(c.Years)),
	)

	key := c.Key()
	if d, ok := s.cached(ctx, key); ok {
		span.SetAttributes(telemetry.String("cache", "hit"))
		return d, nil
	}

	ds, err := s.data.Dataset(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	// The trend always shows every year; the brush narrows the rest.
	trend := analytics.Trend(ds.Rows, c.Measure)
	rows := analytics.FilterYears(ds.Rows, c.Years)

	d := &Dashboard{
		Controls:  c,
		Rows:      len(rows),
		Trend:     chart.Trend(trend, c.Measure),
		Breakdown: chart.Breakdown(analytics.Breakdown(rows, c.Category, c.Measure, s.settings.TopN), c.Category, c.Measure),
	}

	switch c.View {
	case ViewBoxplot:
		d.Geo = chart.StateBox(analytics.StateBox(rows, c.Category, c.Measure), c.Category, c.Measure)
	default:
		d.Geo = chart.CityMap(analytics.CityMap(rows, c.Measure), c.Measure, s.settings.AtlasURL)
	}

	points := analytics.Correlation(rows, c.Category)
	d.Correlation = chart.Correlation(points, c.Category, c.Measure, c.SecondMeasure)
	if line, ok := analytics.FitLine(points, c.Measure, c.SecondMeasure); ok {
		d.Fit = &line
	}

	s.store(ctx, key, d)
	return d, nil
}

// Panel names one section of the dashboard.
type Panel string

const (
	PanelTrend       Panel = "trend"
	PanelBreakdown   Panel = "breakdown"
	PanelGeo         Panel = "geo"
	PanelCorrelation Panel = "correlation"
)

// Panel renders the dashboard and returns the requested section.
func (s *Service) Panel(ctx context.Context, c Controls, p Panel) (chart.Spec, error) {
	d, err := s.Render(ctx, c)
	if err != nil {
		return chart.Spec{}, err
	}

	switch p {
	case PanelTrend:
		return d.Trend, nil
	case PanelBreakdown:
		return d.Breakdown, nil
	case PanelGeo:
		return d.Geo, nil
	case PanelCorrelation:
		return d.Correlation, nil
	default:
		return chart.Spec{}, apperrors.NotFound(fmt.Sprintf("unknown panel %q", p), nil)
	}
}

// --------------------------------------------------
// Widget options
// --------------------------------------------------

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Options struct {
	Measures   []Option `json:"measures"`
	Categories []Option `json:"categories"`
	Views      []Option `json:"views"`
	Years      []int    `json:"years"`
	Defaults   Controls `json:"defaults"`
}

func (s *Service) Options(ctx context.Context) (*Options, error) {
	ds, err := s.data.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	opts := &Options{Years: ds.Years(), Defaults: DefaultControls()}
	for _, m := range analytics.Measures {
		opts.Measures = append(opts.Measures, Option{Value: string(m), Label: m.Label()})
	}
	for _, d := range analytics.Dimensions {
		opts.Categories = append(opts.Categories, Option{Value: string(d), Label: d.Label()})
	}
	for _, v := range Views {
		opts.Views = append(opts.Views, Option{Value: string(v), Label: v.Label()})
	}
	return opts, nil
}

// --------------------------------------------------
// Dataset administration
// --------------------------------------------------

type DatasetStats struct {
	Prepared petition.Stats        `json:"prepared"`
	Wages    analytics.WageSummary `json:"wages"`
	Years    []int                 `json:"years"`
	LoadedAt time.Time             `json:"loaded_at"`
}

func (s *Service) Stats(ctx context.Context) (*DatasetStats, error) {
	ds, err := s.data.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return &DatasetStats{
		Prepared: ds.Stats,
		Wages:    analytics.SummarizeWages(ds.Rows),
		Years:    ds.Years(),
		LoadedAt: ds.LoadedAt,
	}, nil
}

// Reload drops the prepared dataset and every cached render.
func (s *Service) Reload(ctx context.Context) error {
	s.data.Invalidate()
	if s.cache != nil {
		if err := s.cache.Clear(ctx); err != nil {
			return apperrors.Unavailable("clear response cache", err)
		}
	}
	s.logger.Info("🔄 dashboard data reloaded")
	return nil
}

// --------------------------------------------------
// Static exports
// --------------------------------------------------

func (s *Service) TrendSVG(ctx context.Context, w io.Writer, c Controls) error {
	ds, err := s.data.Dataset(ctx)
	if err != nil {
		return err
	}
	return chart.TrendSVG(w, analytics.Trend(ds.Rows, c.Measure), c.Measure)
}

func (s *Service) CorrelationSVG(ctx context.Context, w io.Writer, c Controls) error {
	ds, err := s.data.Dataset(ctx)
	if err != nil {
		return err
	}
	rows := analytics.FilterYears(ds.Rows, c.Years)
	return chart.CorrelationSVG(w, analytics.Correlation(rows, c.Category), c.Measure, c.SecondMeasure)
}

func (s *Service) BreakdownPNG(ctx context.Context, w io.Writer, c Controls) error {
	ds, err := s.data.Dataset(ctx)
	if err != nil {
		return err
	}
	rows := analytics.FilterYears(ds.Rows, c.Years)
	bars := analytics.Breakdown(rows, c.Category, c.Measure, s.settings.TopN)
	return chart.BreakdownPNG(w, bars, c.Category, c.Measure)
}

// Snapshot is a published export.
type Snapshot struct {
	ID  string `json:"id"`
	Key string `json:"key"`
	URL string `json:"url"`
}

// PublishTrend renders the trend SVG and uploads it.
func (s *Service) PublishTrend(ctx context.Context, up Uploader, c Controls) (*Snapshot, error) {
	if up == nil {
		return nil, apperrors.Unavailable("snapshot storage is not configured", nil)
	}

	var buf bytes.Buffer
	if err := s.TrendSVG(ctx, &buf, c); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	key := fmt.Sprintf("snapshots/trend-%s-%s.svg", c.Measure, id)
	url, err := up.Upload(ctx, key, bytes.NewReader(buf.Bytes()), "image/svg+xml")
	if err != nil {
		return nil, apperrors.Unavailable("upload snapshot", err)
	}

	s.logger.Info("📤 trend snapshot published", zap.String("key", key))
	return &Snapshot{ID: id, Key: key, URL: url}, nil
}

// --------------------------------------------------
// Response cache
// --------------------------------------------------

func (s *Service) cached(ctx context.Context, key string) (*Dashboard, bool) {
	if s.cache == nil {
		return nil, false
	}
	var d Dashboard
	err := s.cache.Get(ctx, key, &d)
	if err == nil {
		return &d, true
	}
	if !errors.Is(err, cache.ErrNotFound) {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	return nil, false
}

func (s *Service) store(ctx context.Context, key string, d *Dashboard) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, d, s.settings.CacheTTL); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
