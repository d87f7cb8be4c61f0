package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault_Fragments(t *testing.T) {
	r := Default()

	tests := []struct {
		name string
		data any
		want []string
	}{
		{
			"dropdown-item",
			struct {
				ID         int
				Name, Code string
			}{507, "Heathrow", "LHR"},
			[]string{"Heathrow [LHR]", "507", "/api/v1/globe/pick"},
		},
		{
			"dropdown",
			map[string]any{"Show": false},
			nil,
		},
		{
			"flight-detail",
			struct {
				Airline, Airplane, SourceCity, SourceCode, DestCity, DestCode string
				FlightTime, Fuel, DistanceKm                                  float64
			}{"British Airways", "Airbus A320", "London", "LHR", "Paris", "CDG", 1.2, 3.1, 347.4},
			[]string{"Airline: British Airways", "London [LHR]", "Paris [CDG]", "1.2 Hrs", "3.1 (L/Km)", "347 km", "/detail/flight/close"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Render(tt.name, tt.data)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if tt.want == nil && strings.TrimSpace(got) != "" {
				t.Errorf("Render() = %q, want empty", got)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Render() = %q, missing %q", got, w)
				}
			}
		})
	}
}

func TestRender_EscapesNames(t *testing.T) {
	got, err := Default().Render("dropdown-item", struct {
		ID         int
		Name, Code string
	}{1, "<script>", "X"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("name not escaped: %q", got)
	}
}

func TestNewAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.html")
	if err := os.WriteFile(path, []byte(`{{define "x"}}one{{end}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := r.MustRender("x", nil); got != "one" {
		t.Errorf("x = %q", got)
	}

	if err := os.WriteFile(path, []byte(`{{define "x"}}two{{end}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := r.Reload(dir); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if got := r.MustRender("x", nil); got != "two" {
		t.Errorf("x after reload = %q", got)
	}
}

func TestPage(t *testing.T) {
	b, err := Page("", "viewer.html")
	if err != nil || !strings.Contains(string(b), "/api/v1/globe/stream") {
		t.Fatalf("embedded viewer = %d bytes, %v", len(b), err)
	}

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "templates"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "templates", "viewer.html"), []byte("custom"), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err = Page(dir, "viewer.html")
	if err != nil || string(b) != "custom" {
		t.Errorf("override viewer = %q, %v", b, err)
	}
}
