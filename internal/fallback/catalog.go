// Package fallback holds the curated per-politician data substituted when a live
// source is unavailable. The table is embedded, parsed and validated once, and has
// no write path.
package fallback

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/polscope/internal/model"
)

//go:embed catalog.yaml
var catalogYAML []byte

// PlaceholderLabel prefixes every generated text field so placeholders are recognizable
const PlaceholderLabel = "[placeholder]"

type catalogFile struct {
	Entries []entry `yaml:"entries" validate:"min=1,dive"`
}

type entry struct {
	Name          string              `yaml:"name" validate:"required"`
	Aliases       []string            `yaml:"aliases" validate:"dive,required"`
	Party         string              `yaml:"party" validate:"required"`
	Position      string              `yaml:"position" validate:"required"`
	TermPeriod    string              `yaml:"term_period" validate:"required"`
	Biography     string              `yaml:"biography" validate:"required"`
	Bills         []model.Bill        `yaml:"bills" validate:"min=1,dive"`
	Activities    []model.Activity    `yaml:"activities" validate:"min=1,dive"`
	Promises      []model.Promise     `yaml:"promises" validate:"min=1,dive"`
	VotingRecord  model.VotingRecord  `yaml:"voting_record"`
	Controversies []model.Controversy `yaml:"controversies" validate:"dive"`
}

// Catalog is the read-only fallback table
type Catalog struct {
	entries map[string]*entry
	names   []string
}

var loadDefault = sync.OnceValues(func() (*Catalog, error) {
	return Parse(catalogYAML)
})

// Default returns the embedded catalog, parsed on first use
func Default() (*Catalog, error) {
	return loadDefault()
}

// Parse decodes and validates a catalog document
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}

	c := &Catalog{entries: make(map[string]*entry)}
	for i := range file.Entries {
		e := &file.Entries[i]
		e.Name = model.NormalizeName(e.Name)
		c.names = append(c.names, e.Name)

		for _, key := range append([]string{e.Name}, e.Aliases...) {
			k := lookupKey(key)
			if prev, dup := c.entries[k]; dup {
				return nil, fmt.Errorf("validate catalog: %q is claimed by %q and %q", key, prev.Name, e.Name)
			}
			c.entries[k] = e
		}
	}

	return c, nil
}

// Names lists the canonical names of curated entries in file order
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Has reports whether name matches a curated entry
func (c *Catalog) Has(name string) bool {
	_, ok := c.entries[lookupKey(name)]
	return ok
}

// Lookup returns the fallback fragment for one source kind. Misses yield a
// generic placeholder entry. The fragment is a copy the caller may keep.
func (c *Catalog) Lookup(name string, kind model.SourceKind) model.SourceFragment {
	e, ok := c.entries[lookupKey(name)]
	if !ok {
		e = genericEntry(model.NormalizeName(name))
	}

	frag := model.SourceFragment{
		Kind:       kind,
		Provenance: model.ProvenanceFallback,
	}

	switch kind {
	case model.SourceLegislative:
		frag.Bills = e.Bills
	case model.SourceEncyclopedia:
		frag.Biography = e.Biography
	case model.SourceNews:
		frag.Activities = e.Activities
	case model.SourceProfile:
		frag.Party = e.Party
		frag.Position = e.Position
		frag.TermPeriod = e.TermPeriod
		frag.Promises = e.Promises
		frag.Controversies = e.Controversies
		vr := e.VotingRecord
		frag.VotingRecord = &vr
	}

	return frag.Clone()
}

func lookupKey(name string) string {
	return strings.ToLower(model.NormalizeName(name))
}

// genericEntry builds the placeholder for a name with no curated data.
// Every list is non-empty and every enum holds a valid value.
func genericEntry(name string) *entry {
	if name == "" {
		name = "Unknown politician"
	}
	note := PlaceholderLabel + " No curated data for " + name + "; live sources were unavailable."

	return &entry{
		Name:       name,
		Party:      "Unknown",
		Position:   "Political figure",
		TermPeriod: "Unknown",
		Biography:  PlaceholderLabel + " Political figure: " + name + ". Configure API keys for detailed information.",
		Bills: []model.Bill{{
			Title:       PlaceholderLabel + " No legislative record available",
			Year:        "Unknown",
			Status:      model.BillIntroduced,
			Description: note,
			Role:        "Unknown",
			ImpactArea:  "General",
		}},
		Activities: []model.Activity{{
			Activity: PlaceholderLabel + " No recent activity available",
			Category: "Public Statement",
			Impact:   model.ImpactNeutral,
			Details:  note,
		}},
		Promises: []model.Promise{{
			Promise:  PlaceholderLabel + " No tracked promises available",
			Status:   model.PromiseInProgress,
			Evidence: note,
			Impact:   "Unknown",
		}},
		VotingRecord: model.VotingRecord{
			Alignment: "Unknown",
			KeyVotes: []model.KeyVote{{
				Issue:    PlaceholderLabel + " No voting record available",
				Position: "Unknown",
				Year:     "Unknown",
			}},
		},
		Controversies: []model.Controversy{{
			Year:  "Unknown",
			Issue: PlaceholderLabel + " No controversy data available",
		}},
	}
}
