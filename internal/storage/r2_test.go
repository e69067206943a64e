package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/namwkim/dataviz-storytelling/internal/apperrors"
)

// fakeBucket answers the handful of S3 calls the client makes.
func fakeBucket(t *testing.T) *httptest.Server {
	t.Helper()
	objects := map[string][]byte{
		"/datasets/cars.csv": []byte("Name,Origin\nbuick,USA\n"),
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			body, ok := objects[r.URL.Path]
			if !ok {
				w.Header().Set("Content-Type", "application/xml")
				w.WriteHeader(http.StatusNotFound)
				io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
				return
			}
			w.Write(body)
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			objects[r.URL.Path] = body
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
}

func newTestClient(t *testing.T, endpoint string) *R2Client {
	t.Helper()
	client, err := NewR2Client(context.Background(), R2Options{
		Endpoint:      endpoint,
		AccessKey:     "key",
		SecretKey:     "secret",
		Bucket:        "datasets",
		PublicBaseURL: "https://cdn.example.com/",
	})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return client
}

func TestNewR2Client_RequiresBucket(t *testing.T) {
	if _, err := NewR2Client(context.Background(), R2Options{Endpoint: "http://localhost"}); err == nil {
		t.Fatal("expected error without a bucket")
	}
}

func TestR2Client_OpenAndUpload(t *testing.T) {
	srv := fakeBucket(t)
	defer srv.Close()
	client := newTestClient(t, srv.URL)
	ctx := context.Background()

	rc, err := client.Open(ctx, "cars.csv")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if !strings.HasPrefix(string(data), "Name,Origin") {
		t.Errorf("unexpected object body %q", data)
	}

	url, err := client.Upload(ctx, "snapshots/trend.svg", bytes.NewReader([]byte("<svg/>")), "image/svg+xml")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "https://cdn.example.com/snapshots/trend.svg" {
		t.Errorf("unexpected url %q", url)
	}
}

func TestR2Client_OpenMissing(t *testing.T) {
	srv := fakeBucket(t)
	defer srv.Close()
	client := newTestClient(t, srv.URL)

	_, err := client.Open(context.Background(), "nope.csv")
	if !apperrors.Is(err, apperrors.ErrTypeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestPublicURL_FallsBackToBucket(t *testing.T) {
	client := &R2Client{bucket: "datasets"}
	if got := client.PublicURL("a.svg"); got != "https://datasets/a.svg" {
		t.Errorf("unexpected url %q", got)
	}
}
