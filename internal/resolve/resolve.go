// Package resolve matches free-text shipping unit labels against a catalog,
// tolerating the spacing and punctuation drift of hand-edited spreadsheets.
package resolve

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Strategy identifies which lookup step produced a match.
type Strategy string

const (
	StrategyExact  Strategy = "exact"
	StrategyLocale Strategy = "locale"
	StrategyJoiner Strategy = "joiner"
	StrategyPrefix Strategy = "prefix"
)

// Substitution replaces every occurrence of From with To.
type Substitution struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Options holds the substitution tables used after an exact lookup misses.
type Options struct {
	LocaleVariants   []Substitution // decimal comma <-> decimal point
	JoinerVariants   []Substitution // "POT + PLANT" <-> "POT+PLANT"
	CategoryPrefixes []string       // labels starting with one of these skip the prefix step
	FallbackPrefixes []string       // tried in order for bare labels
}

// DefaultOptions returns the tables used by the packaging module workbook.
func DefaultOptions() Options {
	return Options{
		LocaleVariants: []Substitution{
			{From: "P10.5", To: "P10,5"},
			{From: "P10,5", To: "P10.5"},
		},
		JoinerVariants: []Substitution{
			{From: "POT + PLANT", To: "POT+PLANT"},
			{From: "POT+PLANT", To: "POT + PLANT"},
		},
		CategoryPrefixes: []string{"PLANT", "POT", "BUNDEL", "Oppotten"},
		FallbackPrefixes: []string{"POT | ", "PLANT | "},
	}
}

// Match is a successful lookup.
type Match struct {
	Name     string // catalog key as authored
	ID       string
	Strategy Strategy
}

type entry struct {
	name string
	id   string
}

// Resolver looks labels up in a catalog whose keys were normalized once at
// construction. It is safe for concurrent use after New returns.
type Resolver struct {
	lookup     map[string]entry
	opts       Options
	collisions []string
}

// New builds a Resolver over entries (label -> identifier).
func New(entries map[string]string, opts Options) *Resolver {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	r := &Resolver{lookup: make(map[string]entry, len(entries)), opts: opts}
	for _, k := range keys {
		n := Normalize(k)
		if prev, ok := r.lookup[n]; ok {
			r.collisions = append(r.collisions, k+" (shadowed by "+prev.name+")")
			continue
		}
		r.lookup[n] = entry{name: k, id: entries[k]}
	}
	return r
}

// Collisions lists catalog keys dropped because another key normalizes to
// the same form.
func (r *Resolver) Collisions() []string {
	return r.collisions
}

// Len returns the number of distinct normalized keys.
func (r *Resolver) Len() int {
	return len(r.lookup)
}

// Resolve returns the catalog entry for label. The first strategy that hits
// wins; a miss is reported with ok == false.
func (r *Resolver) Resolve(label string) (Match, bool) {
	if strings.TrimSpace(label) == "" {
		return Match{}, false
	}
	n := Normalize(label)

	if m, ok := r.find(n, StrategyExact); ok {
		return m, true
	}
	for _, s := range r.opts.LocaleVariants {
		if m, ok := r.find(strings.ReplaceAll(n, s.From, s.To), StrategyLocale); ok {
			return m, true
		}
	}
	for _, s := range r.opts.JoinerVariants {
		if m, ok := r.find(strings.ReplaceAll(n, s.From, s.To), StrategyJoiner); ok {
			return m, true
		}
	}
	if !hasAnyPrefix(n, r.opts.CategoryPrefixes) {
		for _, p := range r.opts.FallbackPrefixes {
			if m, ok := r.find(p+n, StrategyPrefix); ok {
				return m, true
			}
		}
	}
	return Match{}, false
}

func (r *Resolver) find(key string, s Strategy) (Match, bool) {
	e, ok := r.lookup[key]
	if !ok {
		return Match{}, false
	}
	return Match{Name: e.name, ID: e.id, Strategy: s}, true
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Normalize returns the canonical form of a label: NFC, one space on each
// side of every pipe, inner whitespace collapsed, outer whitespace trimmed.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(label string) string {
	s := norm.NFC.String(label)
	parts := strings.Split(s, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(strings.Fields(strings.Join(parts, " | ")), " ")
}
