package planets

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed planets.json
var fixture []byte

// InnerBoundary is the last id inside the asteroid belt.
const InnerBoundary = 4

// Planet is one immutable record of the fixture, keyed by its order from the sun.
type Planet struct {
	ID                      int     `json:"id"`
	Name                    string  `json:"name"`
	Summary                 string  `json:"summary"`
	WikiLink                string  `json:"wikiLink"`
	ImageLink               string  `json:"imageLink"`
	ImageAlt                string  `json:"imageAlt"`
	NumSatellites           int     `json:"numSatellites"`
	SolarOrbitYears         float64 `json:"solarOrbitYears"`
	SolarOrbitAvgDistanceKm int64   `json:"solarOrbitAvgDistanceKm"`
}

// Catalog is a read-only view over the planet list. Every accessor returns copies.
type Catalog struct {
	planets []Planet
}

var ErrInvalidFixture = errors.New("invalid planet fixture")

// Default decodes the embedded fixture.
func Default() (*Catalog, error) {
	return Parse(fixture)
}

// Parse decodes and validates a planet list.
func Parse(raw []byte) (*Catalog, error) {
	var list []Planet
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: no planets", ErrInvalidFixture)
	}
	seen := make(map[int]struct{}, len(list))
	for _, p := range list {
		if p.ID <= 0 {
			return nil, fmt.Errorf("%w: planet %q has non-positive id %d", ErrInvalidFixture, p.Name, p.ID)
		}
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("%w: planet %d has no name", ErrInvalidFixture, p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrInvalidFixture, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	slices.SortStableFunc(list, func(a, b Planet) int { return a.ID - b.ID })
	return &Catalog{planets: list}, nil
}

// All returns every planet ordered by id.
func (c *Catalog) All() []Planet {
	return slices.Clone(c.planets)
}

func (c *Catalog) Len() int { return len(c.planets) }

func (c *Catalog) ByID(id int) (Planet, bool) {
	return c.find(func(p Planet) bool { return p.ID == id })
}

// ByName matches the lower-cased name exactly.
func (c *Catalog) ByName(name string) (Planet, bool) {
	name = strings.ToLower(name)
	return c.find(func(p Planet) bool { return strings.ToLower(p.Name) == name })
}

func (c *Catalog) ByWikiLink(link string) (Planet, bool) {
	return c.find(func(p Planet) bool { return p.WikiLink == link })
}

// Inner returns the planets inside the asteroid belt.
func (c *Catalog) Inner() []Planet {
	return c.Filter(func(p Planet) bool { return p.ID <= InnerBoundary })
}

// Outer returns the planets outside the asteroid belt.
func (c *Catalog) Outer() []Planet {
	return c.Filter(func(p Planet) bool { return p.ID > InnerBoundary })
}

func (c *Catalog) Filter(keep func(Planet) bool) []Planet {
	var out []Planet
	for _, p := range c.planets {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) find(match func(Planet) bool) (Planet, bool) {
	for _, p := range c.planets {
		if match(p) {
			return p, true
		}
	}
	return Planet{}, false
}

var grouping = message.NewPrinter(language.AmericanEnglish)

// FormatDistance renders km with en-US digit grouping, e.g. 57,909,050.
func FormatDistance(km int64) string {
	return grouping.Sprintf("%d", km)
}

// FormatYears renders the shortest decimal form, e.g. 0.24 or 1.
func FormatYears(years float64) string {
	return strconv.FormatFloat(years, 'f', -1, 64)
}
