// Package presets ships the scanner's embedded built-ins: the default site
// list and named scan profiles. Embedding keeps the binary self-contained
// regardless of installation method; both files parse at init so a corrupt
// build fails immediately rather than mid-scan.
package presets

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default-sites.yaml
var defaultSitesYAML []byte

//go:embed profiles.yaml
var profilesYAML []byte

var (
	defaultSites = mustSites(defaultSitesYAML)
	profiles     = mustProfiles(profilesYAML)
)

// DefaultSites returns the built-in batch targets. The returned slice is a
// copy; callers may mutate it.
func DefaultSites() []string {
	return append([]string(nil), defaultSites...)
}

// Profile returns the YAML overlay for a named scan profile, ready for
// config.LoadBytes. Unknown names report the available profiles.
func Profile(name string) ([]byte, error) {
	body, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("presets: unknown profile %q (have %s)",
			name, strings.Join(ProfileNames(), ", "))
	}
	return yaml.Marshal(body)
}

// ProfileNames returns the available profile names, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func mustSites(data []byte) []string {
	var f struct {
		Sites []string `yaml:"sites"`
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		panic(fmt.Sprintf("presets: corrupt default-sites.yaml: %v", err))
	}
	if len(f.Sites) == 0 {
		panic("presets: default-sites.yaml lists no sites")
	}
	return f.Sites
}

func mustProfiles(data []byte) map[string]map[string]any {
	var f struct {
		Profiles map[string]map[string]any `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		panic(fmt.Sprintf("presets: corrupt profiles.yaml: %v", err))
	}
	if len(f.Profiles) == 0 {
		panic("presets: profiles.yaml lists no profiles")
	}
	return f.Profiles
}
