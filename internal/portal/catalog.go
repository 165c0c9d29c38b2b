package portal

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var embeddedCatalog []byte

// Catalog is the frozen fixture data served by the fixture source and seeded into Firestore.
type Catalog struct {
	DefaultProfile Profile            `yaml:"default_profile"`
	Leaderboard    []LeaderboardEntry `yaml:"leaderboard"`
	Achievements   []Achievement      `yaml:"achievements"`
	DonationStats  DonationStats      `yaml:"donation_stats"`
}

// ErrInvalidCatalog indicates a catalog that breaks the data model invariants.
var ErrInvalidCatalog = errors.New("invalid catalog")

// DefaultCatalog decodes the catalog compiled into the binary.
func DefaultCatalog() (Catalog, error) {
	return DecodeCatalog(bytes.NewReader(embeddedCatalog))
}

// LoadCatalog reads a catalog file, or the embedded catalog when path is empty.
func LoadCatalog(path string) (Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog()
	}
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return DecodeCatalog(f)
}

// DecodeCatalog parses YAML and validates the result.
func DecodeCatalog(r io.Reader) (Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Validate checks rank ordering, id uniqueness and rarity values.
func (c Catalog) Validate() error {
	var problems []string

	p := c.DefaultProfile
	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "default_profile.name is required")
	}
	if p.Donations < 0 {
		problems = append(problems, "default_profile.donations must be non-negative")
	}
	if p.Rank < 1 || p.Rank > p.TotalInterns {
		problems = append(problems, "default_profile.rank must be within 1..total_interns")
	}

	ids := make(map[string]struct{}, len(c.Leaderboard))
	for i, e := range c.Leaderboard {
		if e.Rank != i+1 {
			problems = append(problems, fmt.Sprintf("leaderboard[%d].rank must be %d", i, i+1))
		}
		if _, dup := ids[e.ID]; dup {
			problems = append(problems, fmt.Sprintf("leaderboard id %q is duplicated", e.ID))
		}
		ids[e.ID] = struct{}{}
	}

	ids = make(map[string]struct{}, len(c.Achievements))
	for i, a := range c.Achievements {
		if !a.Rarity.Valid() {
			problems = append(problems, fmt.Sprintf("achievements[%d].rarity %q is unknown", i, a.Rarity))
		}
		if _, dup := ids[a.ID]; dup {
			problems = append(problems, fmt.Sprintf("achievement id %q is duplicated", a.ID))
		}
		ids[a.ID] = struct{}{}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(problems, "; "))
	}
	return nil
}
