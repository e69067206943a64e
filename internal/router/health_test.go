package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/namwkim/dataviz-storytelling/internal/apperrors"
	"github.com/namwkim/dataviz-storytelling/internal/auth"
	"github.com/namwkim/dataviz-storytelling/internal/cache"
	"github.com/namwkim/dataviz-storytelling/internal/cars"
	"github.com/namwkim/dataviz-storytelling/internal/dashboard"
	"github.com/namwkim/dataviz-storytelling/internal/petition"

	"github.com/gin-gonic/gin"
)

const (
	petitionsCSV = `YEAR,EMPLOYER_NAME,JOB_TITLE,PREVAILING_WAGE,CITY,STATE
2016,ACME,ENGINEER,100000,AUSTIN,TEXAS
2017,INITECH,ANALYST,80000,SEATTLE,WASHINGTON
`
	citiesCSV = `city,city_ascii,state_id,state_name,lat,lng,population
Austin,Austin,TX,Texas,30.3,-97.7,1000
Seattle,Seattle,WA,Washington,47.6,-122.3,2000
`
	carsCSV = `Name,Miles_per_Gallon,Cylinders,Displacement,Horsepower,Weight_in_lbs,Acceleration,Year,Origin
buick skylark 320,15,8,350,165,3693,11.5,1970-01-01,USA
datsun pl510,27,4,97,88,2130,14.5,1970-01-01,Japan
`
)

type memSource map[string]string

func (s memSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	body, ok := s[name]
	if !ok {
		return nil, apperrors.NotFound("dataset "+name+" not found", nil)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	src := memSource{
		"h1b.csv":    petitionsCSV,
		"cities.csv": citiesCSV,
		"cars.csv":   carsCSV,
	}
	loader := petition.NewLoader(petition.NewCSVRepository(src, "h1b.csv", "cities.csv"), petition.DefaultOutlierZ, nil)

	tokens, err := auth.NewTokens("router-test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	authService := auth.NewService(auth.NewInMemoryUserRepository(), tokens)
	if _, err := authService.SeedAdmin("admin@example.com", "hunter22"); err != nil {
		t.Fatal(err)
	}

	r, err := NewRouter(Deps{
		Dashboard: dashboard.NewService(loader, cache.NewMemory(cache.Options{}), dashboard.Settings{TopN: 20}, nil),
		Cars:      cars.NewService(src, "cars.csv", nil),
		Auth:      authService,
		Tokens:    tokens,
	})
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	return r
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request id header")
	}
}

func TestPublicRoutes(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{
		"/",
		"/tutorial",
		"/api/h1b/options",
		"/api/h1b/dashboard?measure=wage&view=boxplot",
		"/api/h1b/panels/trend",
		"/h1b/trend.svg",
		"/api/cars/options",
		"/api/cars/explore?origin=USA",
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d: %s", path, w.Code, w.Body.String())
		}
	}
}

func TestAdminRoutes_RequireLogin(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/datasets/stats", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	body, _ := json.Marshal(map[string]string{"email": "admin@example.com", "password": "hunter22"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", w.Code, w.Body.String())
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil || login.Token == "" {
		t.Fatalf("expected a token, got %s", w.Body.String())
	}

	for _, tc := range []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/admin/datasets/stats", http.StatusOK},
		{http.MethodPost, "/admin/datasets/reload", http.StatusOK},
		{http.MethodPost, "/admin/snapshots/trend", http.StatusServiceUnavailable},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.Header.Set("Authorization", "Bearer "+login.Token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Errorf("%s %s: expected %d, got %d", tc.method, tc.path, tc.want, w.Code)
		}
	}
}
