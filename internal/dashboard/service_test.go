package dashboard

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/namwkim/dataviz-storytelling/internal/analytics"
	"github.com/namwkim/dataviz-storytelling/internal/apperrors"
	"github.com/namwkim/dataviz-storytelling/internal/cache"
	"github.com/namwkim/dataviz-storytelling/internal/petition"
)

// --------------------------------------------------
// Mock dataset provider
// --------------------------------------------------

type mockProvider struct {
	ds          *petition.Dataset
	err         error
	calls       int
	invalidated int
}

func (m *mockProvider) Dataset(ctx context.Context) (*petition.Dataset, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.ds, nil
}

func (m *mockProvider) Invalidate() {
	m.invalidated++
}

func fixture() *petition.Dataset {
	return &petition.Dataset{
		Rows: []petition.Petition{
			{Year: 2016, Employer: "ACME", JobTitle: "ENGINEER", Wage: 100, City: "AUSTIN", State: "TEXAS", Lat: 30.3, Lng: -97.7, HasCoords: true},
			{Year: 2016, Employer: "ACME", JobTitle: "ANALYST", Wage: 60, City: "AUSTIN", State: "TEXAS", Lat: 30.3, Lng: -97.7, HasCoords: true},
			{Year: 2017, Employer: "INITECH", JobTitle: "ENGINEER", Wage: 120, City: "SEATTLE", State: "WASHINGTON", Lat: 47.6, Lng: -122.3, HasCoords: true},
			{Year: 2018, Employer: "GLOBEX", JobTitle: "MANAGER", Wage: 200, City: "SEATTLE", State: "WASHINGTON", Lat: 47.6, Lng: -122.3, HasCoords: true},
		},
		Stats: petition.Stats{Loaded: 5, Kept: 4, Outliers: 1},
	}
}

func newTestService(p *mockProvider) (*Service, cache.Cache) {
	c := cache.NewMemory(cache.Options{})
	return NewService(p, c, Settings{TopN: 20, AtlasURL: "https://example.test/states.json"}, nil), c
}

func TestParseControls(t *testing.T) {
	c, err := ParseControls(Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Measure != analytics.MeasurePetitions || c.Category != analytics.DimensionJobTitle ||
		c.View != ViewMap || c.SecondMeasure != analytics.MeasurePetitions {
		t.Errorf("unexpected defaults %+v", c)
	}

	c, err = ParseControls(Query{
		Measure:       "Salary (Prevailing Wage)",
		Category:      "employer",
		View:          "Boxplot",
		SecondMeasure: "wage",
		Years:         "2018, 2016,2016",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Measure != analytics.MeasureWage || c.Category != analytics.DimensionEmployer || c.View != ViewBoxplot {
		t.Errorf("unexpected controls %+v", c)
	}
	if len(c.Years) != 2 || c.Years[0] != 2016 || c.Years[1] != 2018 {
		t.Errorf("years should be sorted and unique, got %v", c.Years)
	}
	if c.Key() != "h1b:m=wage:c=employer:v=boxplot:s=wage:y=2016,2018" {
		t.Errorf("unexpected key %q", c.Key())
	}

	for _, q := range []Query{{Measure: "salary"}, {View: "globe"}, {Years: "twenty"}, {Category: "city"}} {
		if _, err := ParseControls(q); !apperrors.Is(err, apperrors.ErrTypeInvalidInput) {
			t.Errorf("expected INVALID_INPUT for %+v, got %v", q, err)
		}
	}
}

func TestRender_BrushFiltersLowerPanels(t *testing.T) {
	svc, _ := newTestService(&mockProvider{ds: fixture()})

	c := DefaultControls()
	c.Years = []int{2016}
	d, err := svc.Render(context.Background(), c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d.Rows != 2 {
		t.Errorf("expected 2 filtered rows, got %d", d.Rows)
	}
	if n := len(d.Trend.Data.Values); n != 3 {
		t.Errorf("trend should cover every year, got %d points", n)
	}
	if n := len(d.Breakdown.Data.Values); n != 2 {
		t.Errorf("breakdown should only see 2016, got %d bars", n)
	}
	if len(d.Geo.Layer) != 2 {
		t.Errorf("map view should be layered, got %+v", d.Geo)
	}
}

func TestRender_BoxplotView(t *testing.T) {
	svc, _ := newTestService(&mockProvider{ds: fixture()})

	c := DefaultControls()
	c.View = ViewBoxplot
	d, err := svc.Render(context.Background(), c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Geo.Mark == nil || d.Geo.Mark.Type != "boxplot" {
		t.Errorf("expected boxplot, got %+v", d.Geo.Mark)
	}
}

func TestRender_UsesCache(t *testing.T) {
	p := &mockProvider{ds: fixture()}
	svc, _ := newTestService(p)

	for i := 0; i < 3; i++ {
		if _, err := svc.Render(context.Background(), DefaultControls()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if p.calls != 1 {
		t.Errorf("expected one dataset read, got %d", p.calls)
	}

	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if p.invalidated != 1 {
		t.Error("reload should invalidate the dataset")
	}
	if _, err := svc.Render(context.Background(), DefaultControls()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.calls != 2 {
		t.Errorf("expected a fresh read after reload, got %d", p.calls)
	}
}

func TestRender_DatasetError(t *testing.T) {
	svc, _ := newTestService(&mockProvider{err: apperrors.NotFound("dataset h1b_data.csv not found", nil)})

	if _, err := svc.Render(context.Background(), DefaultControls()); !apperrors.Is(err, apperrors.ErrTypeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestPanel(t *testing.T) {
	svc, _ := newTestService(&mockProvider{ds: fixture()})

	spec, err := svc.Panel(context.Background(), DefaultControls(), PanelCorrelation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Mark == nil || spec.Mark.Type != "circle" {
		t.Errorf("expected scatter, got %+v", spec.Mark)
	}

	if _, err := svc.Panel(context.Background(), DefaultControls(), Panel("pie")); !apperrors.Is(err, apperrors.ErrTypeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestOptionsAndStats(t *testing.T) {
	svc, _ := newTestService(&mockProvider{ds: fixture()})

	opts, err := svc.Options(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opts.Measures) != 2 || opts.Measures[1].Label != "Salary (Prevailing Wage)" {
		t.Errorf("unexpected measures %+v", opts.Measures)
	}
	if len(opts.Years) != 3 || opts.Years[0] != 2016 {
		t.Errorf("unexpected years %v", opts.Years)
	}

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Prepared.Outliers != 1 || stats.Wages.Count != 4 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

type mockUploader struct {
	key  string
	body string
	err  error
}

func (m *mockUploader) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	raw, _ := io.ReadAll(body)
	m.key, m.body = key, string(raw)
	return "https://cdn.example.test/" + key, nil
}

func TestPublishTrend(t *testing.T) {
	svc, _ := newTestService(&mockProvider{ds: fixture()})
	up := &mockUploader{}

	snap, err := svc.PublishTrend(context.Background(), up, DefaultControls())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(snap.Key, "snapshots/trend-petitions-") || !strings.HasSuffix(snap.URL, ".svg") {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if !strings.Contains(up.body, "<svg") {
		t.Error("expected svg body")
	}

	if _, err := svc.PublishTrend(context.Background(), nil, DefaultControls()); !apperrors.Is(err, apperrors.ErrTypeUnavailable) {
		t.Errorf("expected UNAVAILABLE without storage, got %v", err)
	}
	if _, err := svc.PublishTrend(context.Background(), &mockUploader{err: errors.New("denied")}, DefaultControls()); err == nil {
		t.Error("expected upload error")
	}
}

func TestExports(t *testing.T) {
	svc, _ := newTestService(&mockProvider{ds: fixture()})

	var buf bytes.Buffer
	if err := svc.BreakdownPNG(context.Background(), &buf, DefaultControls()); err != nil {
		t.Fatalf("png: %v", err)
	}
	buf.Reset()
	if err := svc.CorrelationSVG(context.Background(), &buf, DefaultControls()); err != nil {
		t.Fatalf("svg: %v", err)
	}
}
