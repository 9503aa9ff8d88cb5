package presets_test

import (
	"strings"
	"testing"

	"github.com/authscope/authscope/pkg/config"
	"github.com/authscope/authscope/presets"
)

func TestDefaultSites(t *testing.T) {
	sites := presets.DefaultSites()

	if len(sites) != 5 {
		t.Fatalf("expected 5 default sites, got %d: %v", len(sites), sites)
	}
	if sites[0] != "https://github.com/login" {
		t.Errorf("first default site: got %q", sites[0])
	}
	for _, s := range sites {
		if !strings.HasPrefix(s, "https://") {
			t.Errorf("default site without https scheme: %q", s)
		}
	}
}

func TestDefaultSitesReturnsCopy(t *testing.T) {
	first := presets.DefaultSites()
	first[0] = "https://mutated.example"

	if presets.DefaultSites()[0] != "https://github.com/login" {
		t.Error("mutating the returned slice leaked into the embedded list")
	}
}

func TestProfileNames(t *testing.T) {
	names := presets.ProfileNames()

	want := map[string]bool{"quick": false, "thorough": false}
	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("profile %q missing from %v", name, names)
		}
	}
}

func TestProfileUnknown(t *testing.T) {
	_, err := presets.Profile("warp-speed")
	if err == nil {
		t.Fatal("expected error for unknown profile")
	}
	if !strings.Contains(err.Error(), "quick") {
		t.Errorf("error should list available profiles, got: %v", err)
	}
}

// TestProfilesApplyCleanly guards profile bodies against config key typos:
// every embedded profile must overlay a default Config and validate.
func TestProfilesApplyCleanly(t *testing.T) {
	for _, name := range presets.ProfileNames() {
		t.Run(name, func(t *testing.T) {
			data, err := presets.Profile(name)
			if err != nil {
				t.Fatalf("Profile(%q) failed: %v", name, err)
			}

			cfg := config.Default()
			if err := cfg.LoadBytes(data); err != nil {
				t.Fatalf("profile %q does not apply: %v", name, err)
			}
			if err := cfg.Validate(); err != nil {
				t.Fatalf("profile %q does not validate: %v", name, err)
			}
		})
	}
}

func TestQuickProfileValues(t *testing.T) {
	data, err := presets.Profile("quick")
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	if err := cfg.LoadBytes(data); err != nil {
		t.Fatal(err)
	}

	if cfg.Renderer != "static" {
		t.Errorf("quick renderer: got %q, want static", cfg.Renderer)
	}
	if cfg.Concurrency != 10 {
		t.Errorf("quick concurrency: got %d, want 10", cfg.Concurrency)
	}
}
