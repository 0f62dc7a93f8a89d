package csl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBraces_MarksVerbatimSpans(t *testing.T) {
	txt := ParseBraces("The {CIA} Files")

	assert.Equal(t, "The CIA Files", txt.Value)
	require.Len(t, txt.Verbatim, 1)
	assert.Equal(t, Span{Start: 4, End: 7}, txt.Verbatim[0])
	assert.Equal(t, "CIA", txt.Value[txt.Verbatim[0].Start:txt.Verbatim[0].End])
}

func TestParseBraces_MultipleSpans(t *testing.T) {
	txt := ParseBraces("{DNA} and {RNA} studies")

	require.Len(t, txt.Verbatim, 2)
	assert.Equal(t, "DNA and RNA studies", txt.Value)
	assert.True(t, txt.InVerbatim(0))
	assert.False(t, txt.InVerbatim(4)) // "and"
	assert.True(t, txt.InVerbatim(8))  // "RNA"
}

func TestParseBraces_UnbalancedBracesAreLiteral(t *testing.T) {
	txt := ParseBraces("open { only")

	assert.Equal(t, "open  only", txt.Value)
	assert.Empty(t, txt.Verbatim)
}

func TestParseBraces_NoBraces(t *testing.T) {
	txt := ParseBraces("plain title")

	assert.Equal(t, "plain title", txt.Value)
	assert.Empty(t, txt.Verbatim)
}

func TestNumber_Int(t *testing.T) {
	testCases := []struct {
		name   string
		raw    string
		want   int
		wantOK bool
	}{
		{"plain integer", "42", 42, true},
		{"padded integer", " 7 ", 7, true},
		{"non-numeric", "S2", 0, false},
		{"empty", "", 0, false},
		{"range text", "12-14", 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n := Number{Raw: tc.raw}
			got, ok := n.Int()
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNumber_StringReattachesAffixes(t *testing.T) {
	n := Number{Raw: "2", Prefix: "S"}
	assert.Equal(t, "S2", n.String())
}

func TestValue_Empty(t *testing.T) {
	assert.True(t, Text{}.Empty())
	assert.False(t, NewText("x").Empty())
	assert.True(t, Names{}.Empty())
	assert.False(t, Names{{Family: "Smith"}}.Empty())
	assert.True(t, Date{}.Empty())
	assert.False(t, Date{Year: 2020}.Empty())
	assert.True(t, Number{}.Empty())
	assert.True(t, Serials{}.Empty())
	assert.False(t, Serials{"isbn": "978-0"}.Empty())
}

func TestPersonName_Initials(t *testing.T) {
	testCases := []struct {
		name  string
		given string
		want  string
	}{
		{"single given", "Jane", "J."},
		{"two given", "Jane Roberta", "J. R."},
		{"hyphenated", "Jean-Luc", "J.-L."},
		{"empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := PersonName{Given: tc.given, Family: "X"}
			assert.Equal(t, tc.want, p.Initials())
		})
	}
}

func TestPersonName_FamilyWithParticle(t *testing.T) {
	p := PersonName{Given: "Ludwig", Family: "Beethoven", NonDropping: "van"}
	assert.Equal(t, "van Beethoven", p.FamilyWithParticle())

	q := PersonName{Given: "Clara", Family: "Schumann"}
	assert.Equal(t, "Schumann", q.FamilyWithParticle())
}

func TestDate_Compare(t *testing.T) {
	testCases := []struct {
		name string
		a, b Date
		want int
	}{
		{"year decides", Date{Year: 2019}, Date{Year: 2020}, -1},
		{"month decides", Date{Year: 2020, Month: 2}, Date{Year: 2020, Month: 5}, -1},
		{"day decides", Date{Year: 2020, Month: 2, Day: 9}, Date{Year: 2020, Month: 2, Day: 1}, 1},
		{"absent month sorts first", Date{Year: 2020}, Date{Year: 2020, Month: 3}, -1},
		{"equal", Date{Year: 2020, Month: 3}, Date{Year: 2020, Month: 3}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Compare(tc.b))
		})
	}
}
