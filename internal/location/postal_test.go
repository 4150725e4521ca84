package location

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"unicode/utf8"
)

func dataDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	return filepath.Join(filepath.Dir(file), "../../data")
}

func loadPostal(t *testing.T) *PostalCodeService {
	t.Helper()
	svc := NewPostalCodeService()
	if err := svc.Load(filepath.Join(dataDir(t), "toronto-fsa.json")); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return svc
}

func TestNormalizePostalCode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"M5V", "M5V"},
		{"m5v", "M5V"},
		{"M5V 3L9", "M5V"},
		{" m5v3l9 ", "M5V"},
		{"M5", "M5"},
		{"", ""},
		{"é5v2", "É5V"},
		{"日本語テキスト", "日本語"},
	}
	for _, tc := range tests {
		got := NormalizePostalCode(tc.in)
		if got != tc.want {
			t.Errorf("NormalizePostalCode(%q) = %q, want %q", tc.in, got, tc.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("NormalizePostalCode(%q) = %q is not valid UTF-8", tc.in, got)
		}
	}
}

func TestPostalCodeServiceLoad(t *testing.T) {
	svc := loadPostal(t)

	if !svc.IsLoaded() {
		t.Error("IsLoaded() = false after Load")
	}
	if svc.Count() != 8 {
		t.Errorf("Count() = %d, want 8", svc.Count())
	}

	pc, ok := svc.Get("m5j 1e6")
	if !ok {
		t.Fatal("Get(m5j 1e6) not found")
	}
	if pc.Code != "M5J" || pc.City != "Toronto" {
		t.Errorf("unexpected postal area: %+v", pc)
	}

	if _, ok := svc.Get("H2X"); ok {
		t.Error("Get(H2X) should miss")
	}

	all := svc.GetAll()
	for i := 1; i < len(all); i++ {
		if all[i-1].Code >= all[i].Code {
			t.Fatalf("GetAll not sorted: %s before %s", all[i-1].Code, all[i].Code)
		}
	}
}

func TestPostalCodeServiceLoadErrors(t *testing.T) {
	svc := NewPostalCodeService()
	if err := svc.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := svc.Load(bad); err == nil {
		t.Error("expected error for malformed JSON")
	}
	if svc.IsLoaded() {
		t.Error("IsLoaded() should stay false after failed loads")
	}
}

func TestFindNearest(t *testing.T) {
	svc := loadPostal(t)

	// Finch Station is in Willowdale
	pc, ok := svc.FindNearest(43.7807, -79.4150)
	if !ok {
		t.Fatal("FindNearest found nothing")
	}
	if pc.Code != "M2N" {
		t.Errorf("FindNearest = %s, want M2N", pc.Code)
	}

	if _, ok := NewPostalCodeService().FindNearest(43.7, -79.4); ok {
		t.Error("empty service should find nothing")
	}
}
