package bibliography

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibkit/bibkit/internal/csl"
)

func testStyle(keys ...csl.SortKey) *csl.Style {
	return &csl.Style{
		Name:            "test",
		Class:           csl.ClassInText,
		Sort:            keys,
		MissingSortLast: true,
	}
}

func testLibrary(t *testing.T, entries ...csl.Entry) *csl.Library {
	t.Helper()
	lib, err := csl.NewLibrary(entries)
	require.NoError(t, err)
	return lib
}

func entry(id string, vars map[string]csl.Value) csl.Entry {
	return csl.Entry{ID: id, Type: csl.TypeBook, Vars: vars}
}

func TestSort_AuthorThenTitle(t *testing.T) {
	lib := testLibrary(t,
		entry("beta", map[string]csl.Value{
			"author": csl.Names{{Given: "Ada", Family: "Smith"}},
			"title":  csl.NewText("Beta"),
		}),
		entry("alpha", map[string]csl.Value{
			"author": csl.Names{{Given: "Ada", Family: "Smith"}},
			"title":  csl.NewText("Alpha"),
		}),
		entry("jones", map[string]csl.Value{
			"author": csl.Names{{Given: "Max", Family: "Jones"}},
			"title":  csl.NewText("Zeta"),
		}),
	)

	s := New(testStyle(
		csl.SortKey{Variable: "author"},
		csl.SortKey{Variable: "title"},
	), csl.EnglishLocale())

	got := s.Sort(lib, []string{"beta", "alpha", "jones"}, nil)
	assert.Equal(t, []string{"jones", "alpha", "beta"}, got)
}

func TestSort_NamesCompareGivenAfterFamily(t *testing.T) {
	lib := testLibrary(t,
		entry("z", map[string]csl.Value{
			"author": csl.Names{{Given: "Zoe", Family: "Smith"}},
		}),
		entry("a", map[string]csl.Value{
			"author": csl.Names{{Given: "Ada", Family: "Smith"}},
		}),
	)

	s := New(testStyle(csl.SortKey{Variable: "author"}), csl.EnglishLocale())
	got := s.Sort(lib, []string{"z", "a"}, nil)
	assert.Equal(t, []string{"a", "z"}, got)
}

func TestSort_ShorterNameListFirst(t *testing.T) {
	lib := testLibrary(t,
		entry("two", map[string]csl.Value{
			"author": csl.Names{
				{Given: "Ada", Family: "Smith"},
				{Given: "Max", Family: "Jones"},
			},
		}),
		entry("one", map[string]csl.Value{
			"author": csl.Names{{Given: "Ada", Family: "Smith"}},
		}),
	)

	s := New(testStyle(csl.SortKey{Variable: "author"}), csl.EnglishLocale())
	got := s.Sort(lib, []string{"two", "one"}, nil)
	assert.Equal(t, []string{"one", "two"}, got)
}

func TestSort_DateByGranularity(t *testing.T) {
	lib := testLibrary(t,
		entry("mar", map[string]csl.Value{"issued": csl.Date{Year: 2020, Month: 3}}),
		entry("jan", map[string]csl.Value{"issued": csl.Date{Year: 2020, Month: 1}}),
		entry("old", map[string]csl.Value{"issued": csl.Date{Year: 1999}}),
	)

	s := New(testStyle(csl.SortKey{Variable: "issued"}), csl.EnglishLocale())
	got := s.Sort(lib, []string{"mar", "jan", "old"}, nil)
	assert.Equal(t, []string{"old", "jan", "mar"}, got)
}

func TestSort_Descending(t *testing.T) {
	lib := testLibrary(t,
		entry("old", map[string]csl.Value{"issued": csl.Date{Year: 1999}}),
		entry("new", map[string]csl.Value{"issued": csl.Date{Year: 2024}}),
	)

	s := New(testStyle(csl.SortKey{
		Variable:  "issued",
		Direction: csl.SortDescending,
	}), csl.EnglishLocale())

	got := s.Sort(lib, []string{"old", "new"}, nil)
	assert.Equal(t, []string{"new", "old"}, got)
}

func TestSort_MissingVariableSortsLast(t *testing.T) {
	lib := testLibrary(t,
		entry("undated", map[string]csl.Value{"title": csl.NewText("Undated")}),
		entry("dated", map[string]csl.Value{"issued": csl.Date{Year: 2020}}),
	)

	s := New(testStyle(csl.SortKey{Variable: "issued"}), csl.EnglishLocale())
	got := s.Sort(lib, []string{"undated", "dated"}, nil)
	assert.Equal(t, []string{"dated", "undated"}, got)
}

func TestSort_MissingVariableSortsFirstWhenConfigured(t *testing.T) {
	lib := testLibrary(t,
		entry("undated", map[string]csl.Value{"title": csl.NewText("Undated")}),
		entry("dated", map[string]csl.Value{"issued": csl.Date{Year: 2020}}),
	)

	style := testStyle(csl.SortKey{Variable: "issued"})
	style.MissingSortLast = false

	s := New(style, csl.EnglishLocale())
	got := s.Sort(lib, []string{"dated", "undated"}, nil)
	assert.Equal(t, []string{"undated", "dated"}, got)
}

func TestSort_NumericKeyComparesAsInteger(t *testing.T) {
	lib := testLibrary(t,
		entry("v10", map[string]csl.Value{"volume": csl.Number{Raw: "10"}}),
		entry("v2", map[string]csl.Value{"volume": csl.Number{Raw: "2"}}),
	)

	s := New(testStyle(csl.SortKey{Variable: "volume"}), csl.EnglishLocale())
	got := s.Sort(lib, []string{"v10", "v2"}, nil)
	assert.Equal(t, []string{"v2", "v10"}, got, "2 before 10, not lexicographic")
}

func TestSort_TypeMismatchFallsBackToStrings(t *testing.T) {
	// One entry stores edition as a number, the other as text; the key
	// still orders them instead of failing.
	lib := testLibrary(t,
		entry("txt", map[string]csl.Value{"edition": csl.NewText("revised")}),
		entry("num", map[string]csl.Value{"edition": csl.Number{Raw: "3"}}),
	)

	s := New(testStyle(csl.SortKey{Variable: "edition"}), csl.EnglishLocale())
	got := s.Sort(lib, []string{"txt", "num"}, nil)
	assert.Equal(t, []string{"num", "txt"}, got, "digits collate before letters")
}

func TestSort_TiesBreakByFirstCitation(t *testing.T) {
	lib := testLibrary(t,
		entry("second", map[string]csl.Value{"issued": csl.Date{Year: 2020}}),
		entry("first", map[string]csl.Value{"issued": csl.Date{Year: 2020}}),
	)

	s := New(testStyle(csl.SortKey{Variable: "issued"}), csl.EnglishLocale())
	firstSeen := map[string]int64{"first": 1, "second": 2}

	got := s.Sort(lib, []string{"second", "first"}, firstSeen)
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestSort_CollationIgnoresCase(t *testing.T) {
	lib := testLibrary(t,
		entry("lower", map[string]csl.Value{"title": csl.NewText("alpha")}),
		entry("upper", map[string]csl.Value{"title": csl.NewText("Beta")}),
	)

	s := New(testStyle(csl.SortKey{Variable: "title"}), csl.EnglishLocale())
	got := s.Sort(lib, []string{"upper", "lower"}, nil)
	assert.Equal(t, []string{"lower", "upper"}, got)
}
