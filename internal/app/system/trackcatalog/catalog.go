// Package trackcatalog holds the configured set of internship tracks.
//
// Profiles, assignments and leaderboards are all partitioned by track. The
// catalog is loaded once at startup and passed explicitly to the components
// that need it; a track missing here is rejected at onboarding.
package trackcatalog

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultTracks is used when no tracks file is configured.
var DefaultTracks = []string{
	"Data Analysis",
	"Web Development",
	"Mobile Application Development",
}

// Catalog is an ordered, immutable list of track names.
type Catalog struct {
	names []string
	index map[string]struct{}
}

type fileFormat struct {
	Tracks []struct {
		Name string `toml:"name"`
	} `toml:"tracks"`
}

// New builds a catalog from names, trimming blanks and dropping duplicates.
func New(names []string) (*Catalog, error) {
	c := &Catalog{index: make(map[string]struct{}, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := c.index[n]; dup {
			continue
		}
		c.index[n] = struct{}{}
		c.names = append(c.names, n)
	}
	if len(c.names) == 0 {
		return nil, fmt.Errorf("track catalog is empty")
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, _ := New(DefaultTracks)
	return c
}

// Load reads a TOML file of the form
//
//	[[tracks]]
//	name = "Data Analysis"
//
// An empty path yields the default catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tracks file: %w", err)
	}
	return Parse(data)
}

// Parse decodes catalog TOML.
func Parse(data []byte) (*Catalog, error) {
	var f fileFormat
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse tracks file: %w", err)
	}
	names := make([]string, 0, len(f.Tracks))
	for _, t := range f.Tracks {
		names = append(names, t.Name)
	}
	return New(names)
}

// Names returns the tracks in configured order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Contains reports whether track is configured.
func (c *Catalog) Contains(track string) bool {
	_, ok := c.index[track]
	return ok
}

var spaceRun = regexp.MustCompile(`\s+`)

// Slug is the key-safe form of a track name: whitespace runs become "_".
func Slug(track string) string {
	return spaceRun.ReplaceAllString(strings.TrimSpace(track), "_")
}
