package csl

// Date is a structured date of decreasing granularity: a year, then an
// optional month, day, and season. Zero means "absent" for Month, Day,
// and Season (calendar values are 1-based). A range carries a second
// date of the same shape in End.
type Date struct {
	Year        int   `json:"year"`
	Month       int   `json:"month,omitempty"`  // 1-12
	Day         int   `json:"day,omitempty"`    // 1-31
	Season      int   `json:"season,omitempty"` // 1-4
	Approximate bool  `json:"approximate,omitempty"`
	End         *Date `json:"end,omitempty"`
}

func (Date) value() {}

// Empty reports whether the date carries no year. A date without a year
// renders as nothing; partial dates (year only, year+month) are valid.
func (d Date) Empty() bool { return d.Year == 0 }

// IsRange reports whether the date has a range end.
func (d Date) IsRange() bool { return d.End != nil }

// Compare orders dates by decreasing granularity: year, then month, then
// day. Absent parts compare before present ones so that "2020" sorts
// ahead of "2020-03". Range ends and seasons do not participate.
func (d Date) Compare(o Date) int {
	if c := cmpInt(d.Year, o.Year); c != 0 {
		return c
	}
	if c := cmpInt(d.Month, o.Month); c != 0 {
		return c
	}
	return cmpInt(d.Day, o.Day)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
