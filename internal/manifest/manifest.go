// Package manifest tracks the set of published manual versions: their
// routing names, display labels, and the standard-library doc version each
// one pairs with. The set is ordered newest first, as configured.
package manifest

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/foundation/errors"
)

// Version describes one published manual version.
type Version struct {
	// Name is the routing token, e.g. "v1.0" in /manual@v1.0.
	Name string `json:"name"`
	// Std is the standard-library documentation version rendered pages link
	// against. Falls back to Name when the manifest does not map one.
	Std string `json:"std"`
	// Display is the human-facing label shown in the version picker.
	Display string `json:"display"`
}

// Set is the ordered collection of published versions, newest first.
// A Set is immutable once built; config reloads construct a new one.
type Set struct {
	versions []Version
	byName   map[string]int
	def      int
}

var titleCaser = cases.Title(language.English)

// New builds a Set from configuration. Entry order is publication order,
// newest first. The default version is the configured one, or the newest.
func New(cfg config.VersionsConfig) (*Set, error) {
	if len(cfg.List) == 0 {
		return nil, errors.ConfigError("no manual versions configured").Build()
	}

	set := &Set{
		versions: make([]Version, 0, len(cfg.List)),
		byName:   make(map[string]int, len(cfg.List)),
	}
	for i, entry := range cfg.List {
		if _, dup := set.byName[entry.Name]; dup {
			return nil, errors.ConfigError("duplicate version name").WithContext("version", entry.Name).Build()
		}
		set.versions = append(set.versions, Version{
			Name:    entry.Name,
			Std:     stdOrFallback(entry.Std, entry.Name),
			Display: displayName(entry.Display, entry.Name),
		})
		set.byName[entry.Name] = i
	}

	def := cfg.DefaultVersion()
	idx, ok := set.byName[def]
	if !ok {
		return nil, errors.ConfigError("default version is not in the version list").WithContext("version", def).Build()
	}
	set.def = idx
	return set, nil
}

// stdOrFallback resolves the standard-library doc version for a manual
// version. Unmapped versions link against their own version string.
func stdOrFallback(std, name string) string {
	if std != "" {
		return std
	}
	return name
}

// displayName derives the picker label when none is configured. Release
// names like "v1.0" read fine as-is; channel names like "latest" or
// "long-term-support" are title-cased.
func displayName(display, name string) string {
	if display != "" {
		return display
	}
	if isReleaseName(name) {
		return name
	}
	return titleCaser.String(strings.ReplaceAll(name, "-", " "))
}

func isReleaseName(name string) bool {
	rest := strings.TrimPrefix(name, "v")
	return len(rest) > 0 && unicode.IsDigit(rune(rest[0]))
}

// Default returns the version requests land on when none is specified.
func (s *Set) Default() Version {
	return s.versions[s.def]
}

// Lookup resolves a version by routing name.
func (s *Set) Lookup(name string) (Version, bool) {
	idx, ok := s.byName[name]
	if !ok {
		return Version{}, false
	}
	return s.versions[idx], true
}

// All returns the versions in manifest order, newest first.
func (s *Set) All() []Version {
	out := make([]Version, len(s.versions))
	copy(out, s.versions)
	return out
}

// Names returns the routing names in manifest order.
func (s *Set) Names() []string {
	names := make([]string, len(s.versions))
	for i, v := range s.versions {
		names[i] = v.Name
	}
	return names
}

// Len returns the number of published versions.
func (s *Set) Len() int {
	return len(s.versions)
}
