// Package input gathers scan targets from flags, list files, and piped
// stdin.
package input

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// TargetSource consolidates the three ways targets reach the scanner:
// -u flags, a list file, and piped stdin.
type TargetSource struct {
	URLs     []string // from -u/-target flags
	ListFile string   // from -l/-list
	Stdin    bool     // read piped stdin when set
}

// GetTargets merges all sources into one deduplicated list, preserving
// input order. Blank lines and "#" comments are skipped, and bare
// hostnames get an https:// scheme. Strict URL validation happens later,
// when the scanner normalizes each target.
func (ts *TargetSource) GetTargets() ([]string, error) {
	var targets []string
	seen := make(map[string]bool)

	add := func(raw string) {
		t := strings.TrimSpace(raw)
		if t == "" || strings.HasPrefix(t, "#") {
			return
		}
		if !strings.HasPrefix(t, "http://") && !strings.HasPrefix(t, "https://") {
			t = "https://" + t
		}
		if !seen[t] {
			seen[t] = true
			targets = append(targets, t)
		}
	}

	for _, u := range ts.URLs {
		add(u)
	}

	if ts.ListFile != "" {
		lines, err := readLines(ts.ListFile)
		if err != nil {
			return nil, fmt.Errorf("reading targets file: %w", err)
		}
		for _, line := range lines {
			add(line)
		}
	}

	if ts.Stdin {
		lines, err := readStdin()
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		for _, line := range lines {
			add(line)
		}
	}

	return targets, nil
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

func readStdin() ([]string, error) {
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		// Interactive terminal, nothing piped.
		return nil, nil
	}

	var lines []string
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
