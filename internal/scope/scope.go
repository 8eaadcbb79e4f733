// Package scope picks a commit scope from the files staged for commit.
package scope

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Rule maps a scope name to the doublestar patterns of the paths it owns.
type Rule struct {
	Name     string
	Patterns []string
}

// Match is one scope with the number of files its patterns matched.
type Match struct {
	Name  string
	Files int
}

// Rank counts, for every rule, how many of files match at least one of its
// patterns. Rules that match nothing are omitted. The result is ordered by
// descending count; ties keep rule order. Paths are compared in slash form
// relative to the repository root.
func Rank(files []string, rules []Rule) ([]Match, error) {
	var matches []Match
	for _, r := range rules {
		if len(r.Patterns) == 0 {
			continue
		}
		n := 0
		for _, f := range files {
			ok, err := matchAny(r.Patterns, normalize(f))
			if err != nil {
				return nil, fmt.Errorf("scope %q: %w", r.Name, err)
			}
			if ok {
				n++
			}
		}
		if n > 0 {
			matches = append(matches, Match{Name: r.Name, Files: n})
		}
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		return cmp.Compare(b.Files, a.Files)
	})
	return matches, nil
}

// Detect returns the scope whose patterns match the most files, or "" when
// no rule matches any file.
func Detect(files []string, rules []Rule) (string, error) {
	matches, err := Rank(files, rules)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	return matches[0].Name, nil
}

func matchAny(patterns []string, path string) (bool, error) {
	for _, p := range patterns {
		ok, err := doublestar.Match(p, path)
		if err != nil {
			return false, fmt.Errorf("pattern %q: %w", p, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func normalize(path string) string {
	return strings.TrimPrefix(filepath.ToSlash(path), "./")
}
