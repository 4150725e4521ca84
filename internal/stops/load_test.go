package stops

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func dataDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	return filepath.Join(filepath.Dir(file), "../../data")
}

func TestLoadFile(t *testing.T) {
	source := filepath.Join(dataDir(t), "stops.csv")

	table, err := Load(context.Background(), source, nil, DefaultColumns())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if table.Len() != 13 {
		t.Errorf("Len() = %d, want 13", table.Len())
	}
	if table.Skipped() != 1 {
		t.Errorf("Skipped() = %d, want 1 (row with an extra column)", table.Skipped())
	}
	if table.InvalidCoordinates() != 1 {
		t.Errorf("InvalidCoordinates() = %d, want 1", table.InvalidCoordinates())
	}
	if table.Source() != source {
		t.Errorf("Source() = %q, want %q", table.Source(), source)
	}
	if table.LoadedAt().IsZero() {
		t.Error("LoadedAt() should be set")
	}
}

func TestLoadHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stops.csv" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(gtfsLayout))
	}))
	defer srv.Close()

	table, err := Load(context.Background(), srv.URL+"/stops.csv", srv.Client(), DefaultColumns())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Len() != 3 {
		t.Errorf("Len() = %d, want 3", table.Len())
	}
}

func TestLoadFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	}))
	defer srv.Close()

	tests := []struct {
		name   string
		source string
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.csv")},
		{"http error", srv.URL + "/stops.csv"},
		{"no source", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(context.Background(), tc.source, srv.Client(), DefaultColumns())
			if err == nil {
				t.Fatal("expected error")
			}
			var sle *SourceLoadError
			if !errors.As(err, &sle) {
				t.Fatalf("error %v is not a *SourceLoadError", err)
			}
			if sle.Source != tc.source {
				t.Errorf("Source = %q, want %q", sle.Source, tc.source)
			}
		})
	}
}

func TestLoadParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(context.Background(), path, nil, DefaultColumns())
	if !errors.Is(err, ErrNoHeader) {
		t.Errorf("err = %v, want ErrNoHeader", err)
	}
}
