// Package templates embeds the bundled output templates for distribution.
//
// This ensures the -template built-ins work regardless of installation
// method (Docker, go install, or a copied binary). The template writer
// resolves a built-in name here when it does not match a file on disk.
//
// Usage:
//
//	tmpl, err := templates.Output("auth-urls")
package templates

import (
	"embed"
	"fmt"
	"strings"
)

// FS contains the bundled output templates. Subdirectory structure matches
// the on-disk templates/ layout minus this Go file.
//
//go:embed output/*.tmpl
var FS embed.FS

// Output returns the named built-in output template.
func Output(name string) (string, error) {
	data, err := FS.ReadFile("output/" + name + ".tmpl")
	if err != nil {
		return "", fmt.Errorf("templates: unknown built-in template: %s (available: %s)",
			name, strings.Join(OutputNames(), ", "))
	}
	return string(data), nil
}

// OutputNames lists the bundled built-in template names. embed.FS serves
// directory entries in name order, so the list is stable across builds.
func OutputNames() []string {
	entries, err := FS.ReadDir("output")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".tmpl"))
	}
	return names
}
