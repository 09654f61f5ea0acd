// Package catalog loads the static name-to-identifier tables for packagings
// and shipping units.
package catalog

import (
	_ "embed"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/everyplants/compartment-rules/internal/resolve"
)

//go:embed default.yaml
var defaultYAML []byte

// Catalog holds both lookup tables. It is read-only after loading.
type Catalog struct {
	Packagings    map[string]string `yaml:"packagings"`
	ShippingUnits map[string]string `yaml:"shipping_units"`
	Matching      *Matching         `yaml:"matching,omitempty"`

	resolver *resolve.Resolver
}

// Matching overrides the resolver's substitution tables. Nil fields keep
// the defaults.
type Matching struct {
	LocaleVariants   []resolve.Substitution `yaml:"locale_variants"`
	JoinerVariants   []resolve.Substitution `yaml:"joiner_variants"`
	CategoryPrefixes []string               `yaml:"category_prefixes"`
	FallbackPrefixes []string               `yaml:"fallback_prefixes"`
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	c, err := Parse(defaultYAML)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: default")
	}
	return c, nil
}

// Load reads a catalog file. An empty path yields the embedded default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: read %s", path)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: load %s", path)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrap(err, "catalog: parse yaml")
	}
	if len(c.ShippingUnits) == 0 {
		return nil, eris.New("catalog: no shipping units")
	}
	if err := validate("packagings", c.Packagings); err != nil {
		return nil, err
	}
	if err := validate("shipping_units", c.ShippingUnits); err != nil {
		return nil, err
	}
	c.resolver = resolve.New(c.ShippingUnits, c.options())
	return &c, nil
}

func validate(section string, entries map[string]string) error {
	for _, name := range sortedKeys(entries) {
		if resolve.Normalize(name) == "" {
			return eris.Errorf("catalog: %s: empty name", section)
		}
		if _, err := uuid.Parse(entries[name]); err != nil {
			return eris.Wrapf(err, "catalog: %s: %q has invalid id %q", section, name, entries[name])
		}
	}
	return nil
}

func (c *Catalog) options() resolve.Options {
	opts := resolve.DefaultOptions()
	if c.Matching == nil {
		return opts
	}
	if c.Matching.LocaleVariants != nil {
		opts.LocaleVariants = c.Matching.LocaleVariants
	}
	if c.Matching.JoinerVariants != nil {
		opts.JoinerVariants = c.Matching.JoinerVariants
	}
	if c.Matching.CategoryPrefixes != nil {
		opts.CategoryPrefixes = c.Matching.CategoryPrefixes
	}
	if c.Matching.FallbackPrefixes != nil {
		opts.FallbackPrefixes = c.Matching.FallbackPrefixes
	}
	return opts
}

// Resolver returns the shipping unit resolver built at load time.
func (c *Catalog) Resolver() *resolve.Resolver {
	return c.resolver
}

// PackagingID looks a compartment name up verbatim.
func (c *Catalog) PackagingID(name string) (string, bool) {
	id, ok := c.Packagings[name]
	return id, ok
}

// SelfCheck resolves every shipping unit key against the catalog itself and
// returns the keys that do not come back with their own identifier.
func (c *Catalog) SelfCheck() []string {
	var bad []string
	for _, name := range sortedKeys(c.ShippingUnits) {
		m, ok := c.resolver.Resolve(resolve.Normalize(name))
		if !ok || m.ID != c.ShippingUnits[name] {
			bad = append(bad, name)
		}
	}
	return bad
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
