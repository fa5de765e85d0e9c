// Package vocabulary resolves free-text care tags to shared concepts.
//
// The alias table is versioned YAML data. A default table is embedded in the
// binary and may be replaced by a file at startup.
package vocabulary

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/seniorcare/smartmatch/internal/domain/model"
)

//go:embed default.yaml
var defaultYAML []byte

// Document is the serialized form of a Table.
type Document struct {
	Version    string              `koanf:"version" json:"version"`
	Concepts   map[string][]string `koanf:"concepts" json:"concepts"`
	CareLevels map[string][]string `koanf:"care_levels" json:"care_levels"`
}

type concept struct {
	name    string
	aliases []string
}

// Table is an immutable alias table. It is safe for concurrent use.
type Table struct {
	doc        Document
	concepts   []concept
	careLevels map[model.CareLevel][]string
}

var loadDefault = sync.OnceValues(func() (*Table, error) {
	return Parse(defaultYAML)
})

// Default returns the embedded table.
func Default() (*Table, error) {
	return loadDefault()
}

// MustDefault returns the embedded table and panics if it does not parse.
func MustDefault() *Table {
	t, err := Default()
	if err != nil {
		panic(err)
	}
	return t
}

// Load returns the table stored at path, or the embedded default when path
// is empty.
func Load(path string) (*Table, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrLoadTable, path, err)
	}
	return fromKoanf(k)
}

// Parse decodes a YAML table.
func Parse(data []byte) (*Table, error) {
	k := koanf.New(".")
	if err := k.Load(bytesProvider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadTable, err)
	}
	return fromKoanf(k)
}

func fromKoanf(k *koanf.Koanf) (*Table, error) {
	var doc Document
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadTable, err)
	}
	return New(doc)
}

// New validates doc and builds a Table from it.
func New(doc Document) (*Table, error) {
	if strings.TrimSpace(doc.Version) == "" {
		return nil, fmt.Errorf("%w: version is required", ErrInvalidTable)
	}
	if len(doc.Concepts) == 0 {
		return nil, fmt.Errorf("%w: no concepts defined", ErrInvalidTable)
	}

	t := &Table{
		doc:        cloneDocument(doc),
		careLevels: make(map[model.CareLevel][]string, len(doc.CareLevels)),
	}

	names := make([]string, 0, len(doc.Concepts))
	for name := range doc.Concepts {
		names = append(names, name)
	}
	sort.Strings(names)

	known := make(map[string]struct{}, len(names))
	for _, name := range names {
		key := Normalize(name)
		if key == "" {
			return nil, fmt.Errorf("%w: blank concept name", ErrInvalidTable)
		}
		if _, dup := known[key]; dup {
			return nil, fmt.Errorf("%w: concept %q defined twice", ErrInvalidTable, key)
		}
		known[key] = struct{}{}

		// The concept name is always an alias of itself.
		aliases := []string{key}
		for _, a := range doc.Concepts[name] {
			if n := Normalize(a); n != "" && n != key {
				aliases = append(aliases, n)
			}
		}
		t.concepts = append(t.concepts, concept{name: key, aliases: aliases})
	}

	for level, refs := range doc.CareLevels {
		cl := model.CareLevel(level)
		if !cl.Valid() {
			return nil, fmt.Errorf("%w: unknown care level %q", ErrInvalidTable, level)
		}
		resolved := make([]string, 0, len(refs))
		for _, ref := range refs {
			key := Normalize(ref)
			if _, ok := known[key]; !ok {
				return nil, fmt.Errorf("%w: care level %q references unknown concept %q", ErrInvalidTable, level, ref)
			}
			resolved = append(resolved, key)
		}
		t.careLevels[cl] = resolved
	}
	return t, nil
}

// Version identifies the table revision.
func (t *Table) Version() string { return t.doc.Version }

// Document returns a copy of the table as loaded.
func (t *Table) Document() Document { return cloneDocument(t.doc) }

// ConceptNames lists the normalized concept names in sorted order.
func (t *Table) ConceptNames() []string {
	out := make([]string, len(t.concepts))
	for i, c := range t.concepts {
		out[i] = c.name
	}
	return out
}

// Resolve maps a free-text tag to every concept it names. A tag that names no
// known concept resolves to its own normalized form, so unknown vocabulary
// still matches itself. A blank tag resolves to nothing.
func (t *Table) Resolve(tag string) []string {
	n := Normalize(tag)
	if n == "" {
		return nil
	}
	var out []string
	for _, c := range t.concepts {
		for _, a := range c.aliases {
			if n == a || containsWord(n, a) {
				out = append(out, c.name)
				break
			}
		}
	}
	if len(out) == 0 {
		return []string{n}
	}
	return out
}

// ResolveAll returns the union of the concepts of every tag.
func (t *Table) ResolveAll(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		for _, c := range t.Resolve(tag) {
			set[c] = struct{}{}
		}
	}
	return set
}

// CareLevel returns the concepts a care level requires. Levels the table does
// not map carry no requirement.
func (t *Table) CareLevel(level model.CareLevel) []string {
	refs := t.careLevels[level]
	out := make([]string, len(refs))
	copy(out, refs)
	return out
}

func cloneDocument(d Document) Document {
	out := Document{
		Version:    d.Version,
		Concepts:   make(map[string][]string, len(d.Concepts)),
		CareLevels: make(map[string][]string, len(d.CareLevels)),
	}
	for k, v := range d.Concepts {
		out.Concepts[k] = append([]string(nil), v...)
	}
	for k, v := range d.CareLevels {
		out.CareLevels[k] = append([]string(nil), v...)
	}
	return out
}
