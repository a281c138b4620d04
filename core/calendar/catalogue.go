// Package calendar holds the liturgical-day catalogue, the parser for
// free-text day headings, and the Matcher that resolves one to the other.
//
// Catalogue order is significant: the identifier and keyword steps of the
// Matcher return the first qualifying entry in file order.
package calendar

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/JuniperLectionary/core/errors"
)

// Group is the sub-catalogue an entry comes from.
type Group string

const (
	GroupTemporal       Group = "temporal"
	GroupProperOfSaints Group = "proper_of_saints"
	GroupCommons        Group = "commons"
	GroupRitual         Group = "ritual"
	GroupVotive         Group = "votive"
	GroupDead           Group = "dead"
)

// Auxiliary reports whether entries of the group need a catalogue match to
// be emitted.
func (g Group) Auxiliary() bool {
	switch g {
	case "", GroupTemporal:
		return false
	default:
		return true
	}
}

// ParseGroup accepts the group names above plus hyphenated spellings.
func ParseGroup(s string) (Group, error) {
	key := Group(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	switch key {
	case "", GroupTemporal:
		return GroupTemporal, nil
	case GroupProperOfSaints, GroupCommons, GroupRitual, GroupVotive, GroupDead:
		return key, nil
	case "saints", "sanctoral":
		return GroupProperOfSaints, nil
	}
	return "", errors.NewValidation("group", fmt.Sprintf("unknown catalogue group %q", s))
}

// Entry is one liturgical-day definition.
type Entry struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	Season    string `yaml:"season,omitempty" json:"season,omitempty"`
	Week      int    `yaml:"week,omitempty" json:"week,omitempty"`
	DayOfWeek int    `yaml:"day_of_week,omitempty" json:"dayOfWeek,omitempty"`
	Rank      string `yaml:"rank,omitempty" json:"rank,omitempty"`
	Cycle     string `yaml:"cycle,omitempty" json:"cycle,omitempty"`
	Date      string `yaml:"date,omitempty" json:"date,omitempty"`
	Group     Group  `yaml:"group,omitempty" json:"group,omitempty"`

	// Definition is the entry as it appeared in the source catalogue.
	Definition string `yaml:"definition,omitempty" json:"definition,omitempty"`
}

// DateIndex finds the entry celebrated on a month-day. A Catalogue indexes
// its fixed-date entries; a generated year calendar may stand in for it.
type DateIndex interface {
	OnDate(monthDay string) (Entry, bool)
}

// Catalogue is an ordered, read-only set of entries.
type Catalogue struct {
	entries []Entry
	byID    map[string]int
	byDate  map[string]int
}

// NewCatalogue validates entries and indexes them. IDs must be unique and
// non-empty.
func NewCatalogue(entries []Entry) (*Catalogue, error) {
	c := &Catalogue{
		entries: make([]Entry, len(entries)),
		byID:    make(map[string]int, len(entries)),
		byDate:  make(map[string]int),
	}
	for i, e := range entries {
		if e.ID == "" {
			return nil, errors.NewValidation("id", fmt.Sprintf("catalogue entry %d has no id", i))
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, errors.NewValidation("id", fmt.Sprintf("duplicate catalogue id %q", e.ID))
		}
		g, err := ParseGroup(string(e.Group))
		if err != nil {
			return nil, err
		}
		e.Group = g
		c.entries[i] = e
		c.byID[e.ID] = i
		if e.Date != "" {
			if _, seen := c.byDate[e.Date]; !seen {
				c.byDate[e.Date] = i
			}
		}
	}
	return c, nil
}

type catalogueFile struct {
	Entries []Entry `yaml:"entries"`
}

// LoadCatalogue reads a YAML (or JSON) catalogue: either a sequence of
// entries or a mapping with an "entries" key.
func LoadCatalogue(r io.Reader) (*Catalogue, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIO("read", "catalogue", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &errors.ParseError{Format: "YAML", Message: err.Error(), Err: err}
	}

	var entries []Entry
	switch {
	case len(node.Content) == 0:
	case node.Content[0].Kind == yaml.MappingNode:
		var f catalogueFile
		err = node.Decode(&f)
		entries = f.Entries
	default:
		err = node.Decode(&entries)
	}
	if err != nil {
		return nil, &errors.ParseError{Format: "YAML", Message: err.Error(), Err: err}
	}
	return NewCatalogue(entries)
}

// LoadCatalogueFile reads a catalogue from path.
func LoadCatalogueFile(path string) (*Catalogue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()

	c, err := LoadCatalogue(f)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return c, nil
}

// Len returns the number of entries.
func (c *Catalogue) Len() int {
	return len(c.entries)
}

// Entries returns the entries in catalogue order.
func (c *Catalogue) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Get returns the entry with the given id.
func (c *Catalogue) Get(id string) (Entry, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Entry{}, false
	}
	return c.entries[idx], true
}

// OnDate returns the first entry fixed to monthDay ("MM-DD").
func (c *Catalogue) OnDate(monthDay string) (Entry, bool) {
	idx, ok := c.byDate[monthDay]
	if !ok {
		return Entry{}, false
	}
	return c.entries[idx], true
}
