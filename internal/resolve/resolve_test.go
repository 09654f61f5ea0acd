package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() map[string]string {
	return map[string]string{
		"PLANT | P10,5 - P14 | H0 - H60":        "8c8fa4ba-0aa5-46e0-a1da-b122847f2b2b",
		"POT | P10,5 - P16":                     "f3f485ed-ed91-4e8c-98eb-1af00bbeb44a",
		"POT | P22 - P24":                       "baf62c8e-9017-4d45-9436-bf87bbb17fd9",
		"POT + PLANT | P17 - P21 | H0 - H100":   "cbcf5dbd-532a-4ebf-89f4-ec8fe5437789",
		"POT+PLANT | P19 - P34 | H0 - H180":     "31288785-bf31-4417-bc29-d93eae7a9e8f",
		"POT + PLANT | P10.5 - P16 | H0 - H100": "e2201adb-3696-458e-a041-ab3837760fa8",
		"PLANT | P35 - P50 | H0 - H300":         "5049cbe5-2121-4869-b66c-9dc33339342f",
		"Oppotten P22 - P40":                    "d0d4b2aa-8a47-4f8b-9284-a5ed26abf213",
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"X|Y", "X | Y"},
		{"X |Y", "X | Y"},
		{"X| Y", "X | Y"},
		{"X | Y", "X | Y"},
		{"  PLANT |P35 - P50|  H0 - H300 ", "PLANT | P35 - P50 | H0 - H300"},
		{"POT\t|\tP22   -  P24", "POT | P22 - P24"},
		{"no pipes here", "no pipes here"},
		{"X|", "X |"},
		{"|Y", "| Y"},
		{"X||Y", "X | | Y"},
		{"A | B", "A | B"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_ComposesCombiningMarks(t *testing.T) {
	assert.Equal(t, "caf\u00e9 | x", Normalize("cafe\u0301|x"))
}

func FuzzNormalizeIdempotent(f *testing.F) {
	for _, seed := range []string{
		"X|Y", "X |Y", "X| Y", " a  |  b ", "||", "| |", "\t|\n", "POT+PLANT|P19 - P34",
		"café | x", "A | B", "",
	} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once))
	})
}

func TestResolve_Exact(t *testing.T) {
	r := New(testCatalog(), DefaultOptions())

	m, ok := r.Resolve("POT | P22 - P24")
	require.True(t, ok)
	assert.Equal(t, "POT | P22 - P24", m.Name)
	assert.Equal(t, "baf62c8e-9017-4d45-9436-bf87bbb17fd9", m.ID)
	assert.Equal(t, StrategyExact, m.Strategy)
}

func TestResolve_ExactAfterNormalize(t *testing.T) {
	r := New(testCatalog(), DefaultOptions())

	m, ok := r.Resolve("  PLANT|P35 - P50| H0 - H300")
	require.True(t, ok)
	assert.Equal(t, "PLANT | P35 - P50 | H0 - H300", m.Name)
	assert.Equal(t, StrategyExact, m.Strategy)
}

func TestResolve_LocaleVariant(t *testing.T) {
	r := New(testCatalog(), DefaultOptions())

	m, ok := r.Resolve("POT | P10.5 - P16")
	require.True(t, ok)
	assert.Equal(t, "POT | P10,5 - P16", m.Name)
	assert.Equal(t, "f3f485ed-ed91-4e8c-98eb-1af00bbeb44a", m.ID)
	assert.Equal(t, StrategyLocale, m.Strategy)

	m, ok = r.Resolve("POT + PLANT | P10,5 - P16 | H0 - H100")
	require.True(t, ok)
	assert.Equal(t, "e2201adb-3696-458e-a041-ab3837760fa8", m.ID)
	assert.Equal(t, StrategyLocale, m.Strategy)
}

func TestResolve_JoinerVariant(t *testing.T) {
	r := New(testCatalog(), DefaultOptions())

	m, ok := r.Resolve("POT+PLANT | P17 - P21 | H0 - H100")
	require.True(t, ok)
	assert.Equal(t, "cbcf5dbd-532a-4ebf-89f4-ec8fe5437789", m.ID)
	assert.Equal(t, StrategyJoiner, m.Strategy)

	m, ok = r.Resolve("POT + PLANT|P19 - P34|H0 - H180")
	require.True(t, ok)
	assert.Equal(t, "31288785-bf31-4417-bc29-d93eae7a9e8f", m.ID)
}

func TestResolve_PrefixHeuristic(t *testing.T) {
	r := New(testCatalog(), DefaultOptions())

	m, ok := r.Resolve("P22 - P24")
	require.True(t, ok)
	assert.Equal(t, "POT | P22 - P24", m.Name)
	assert.Equal(t, StrategyPrefix, m.Strategy)

	m, ok = r.Resolve("P35 - P50| H0 - H300")
	require.True(t, ok)
	assert.Equal(t, "PLANT | P35 - P50 | H0 - H300", m.Name)
}

func TestResolve_PrefixSkippedForCategorisedLabels(t *testing.T) {
	cat := map[string]string{"POT | POTTERY": "id-1"}
	r := New(cat, DefaultOptions())

	// "POTTERY" already starts with a category prefix, so no "POT | " retry.
	_, ok := r.Resolve("POTTERY")
	assert.False(t, ok)
}

func TestResolve_Misses(t *testing.T) {
	r := New(testCatalog(), DefaultOptions())

	for _, label := range []string{"", "   ", "BUNDEL | P99", "pot | p22 - p24", "P22-P24"} {
		_, ok := r.Resolve(label)
		assert.False(t, ok, label)
	}
}

func TestResolve_CatalogSelfConsistency(t *testing.T) {
	cat := testCatalog()
	r := New(cat, DefaultOptions())
	require.Empty(t, r.Collisions())
	assert.Equal(t, len(cat), r.Len())

	for key, id := range cat {
		m, ok := r.Resolve(Normalize(key))
		require.True(t, ok, key)
		assert.Equal(t, id, m.ID, key)
		assert.Equal(t, key, m.Name)
	}
}

func TestNew_Collisions(t *testing.T) {
	r := New(map[string]string{
		"POT | P22": "a",
		"POT|P22":   "b",
		"POT | P30": "c",
	}, DefaultOptions())

	require.Len(t, r.Collisions(), 1)
	assert.Contains(t, r.Collisions()[0], "POT|P22")
	assert.Equal(t, 2, r.Len())

	m, ok := r.Resolve("POT|P22")
	require.True(t, ok)
	assert.Equal(t, "a", m.ID)
}

func TestResolve_EmptyOptionsOnlyExact(t *testing.T) {
	r := New(testCatalog(), Options{})

	_, ok := r.Resolve("POT | P10.5 - P16")
	assert.False(t, ok)
	_, ok = r.Resolve("P22 - P24")
	assert.False(t, ok)
}
