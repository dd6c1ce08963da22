package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "observed.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCSVLoader_Load(t *testing.T) {
	path := writeCSV(t, "time_h,observed_nad_cyt_uM\n0,40.0\n6,41.2\n24,40.5\n")

	obs, err := NewCSVLoader(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(obs.TimesH) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(obs.TimesH))
	}
	if obs.TimesH[1] != 6 || obs.NadCytUM[1] != 41.2 {
		t.Errorf("row mismatch: %v %v", obs.TimesH, obs.NadCytUM)
	}
}

func TestCSVLoader_ExtraColumnsIgnored(t *testing.T) {
	path := writeCSV(t, "subject,time_h,observed_nad_cyt_uM\ns1,0,40\ns1,12,41\n")

	obs, err := NewCSVLoader(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(obs.TimesH) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(obs.TimesH))
	}
}

func TestCSVLoader_MissingColumn(t *testing.T) {
	path := writeCSV(t, "time_h,nad\n0,40\n")
	if _, err := NewCSVLoader(path).Load(); err == nil {
		t.Fatal("expected error for missing target column")
	}
}

func TestCSVLoader_BadValue(t *testing.T) {
	path := writeCSV(t, "time_h,observed_nad_cyt_uM\n0,forty\n")
	if _, err := NewCSVLoader(path).Load(); err == nil {
		t.Fatal("expected parse error for non-numeric value")
	}
}

func TestCSVLoader_NoRows(t *testing.T) {
	path := writeCSV(t, "time_h,observed_nad_cyt_uM\n")
	if _, err := NewCSVLoader(path).Load(); err == nil {
		t.Fatal("expected error for header-only file")
	}
}

func TestObserved_Validate(t *testing.T) {
	cases := []struct {
		name string
		obs  Observed
		ok   bool
	}{
		{"valid", Observed{TimesH: []float64{0, 1}, NadCytUM: []float64{40, 41}}, true},
		{"empty", Observed{}, false},
		{"mismatch", Observed{TimesH: []float64{0, 1}, NadCytUM: []float64{40}}, false},
		{"negative time", Observed{TimesH: []float64{-1}, NadCytUM: []float64{40}}, false},
	}
	for _, tc := range cases {
		err := tc.obs.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestStaticLoader(t *testing.T) {
	l := &StaticLoader{Data: Observed{TimesH: []float64{0}, NadCytUM: []float64{40}}}
	if _, err := l.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	l = &StaticLoader{}
	if _, err := l.Load(); err == nil {
		t.Fatal("expected validation error for empty static data")
	}
}
