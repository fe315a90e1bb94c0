// Package document serves the documents a resolved caller owns.
package document

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Errors that indicate a data-integrity problem in the documents table.
var (
	ErrCorruptRecord = errors.New("corrupt document record")
	ErrOwnerMismatch = errors.New("document owner does not match resolved user")
)

// Record is a row of the documents table.
type Record struct {
	ID       int64
	OwnerID  int64
	Name     string
	Location string
	Type     string
	Year     *string
	Validity []Date
}

// View is the caller-facing projection of a Record.
type View struct {
	DocName     string  `json:"docName"`
	DocLocation string  `json:"docLocation"`
	DocType     string  `json:"docType"`
	DocYear     *string `json:"docYear"`
	DocValidity []Date  `json:"docValidity"`
}

// ToView projects r. It never fails.
func ToView(r *Record) View {
	return View{
		DocName:     r.Name,
		DocLocation: r.Location,
		DocType:     r.Type,
		DocYear:     r.Year,
		DocValidity: slices.Clone(r.Validity),
	}
}

// ToViews projects records one-to-one and in order. The result is never nil.
func ToViews(records []*Record) []View {
	views := make([]View, 0, len(records))
	for _, r := range records {
		views = append(views, ToView(r))
	}
	return views
}

// Date is a calendar date without time of day, or one of the unbounded
// dates infinity and -infinity.
// It encodes to JSON the way PostgreSQL prints a DATE: "YYYY-MM-DD",
// "YYYY-MM-DD BC" before year 1, "infinity" or "-infinity".
type Date struct {
	time.Time
	inf int8 // +1 infinity, -1 -infinity
}

// Unbounded dates, used for open-ended validity intervals.
var (
	Infinity         = Date{inf: 1}
	NegativeInfinity = Date{inf: -1}
)

var dateRE = regexp.MustCompile(`^(\d{4,})-(\d{2})-(\d{2})( BC)?$`)

// ParseDate parses a date in PostgreSQL's ISO output format.
func ParseDate(s string) (Date, error) {
	switch s {
	case "infinity":
		return Infinity, nil
	case "-infinity":
		return NegativeInfinity, nil
	}

	m := dateRE.FindStringSubmatch(s)
	if m == nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if m[4] != "" {
		if year == 0 {
			return Date{}, fmt.Errorf("invalid date %q", s)
		}
		// 1 BC is astronomical year 0.
		year = 1 - year
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return Date{Time: t}, nil
}

// Infinite returns +1 for Infinity, -1 for NegativeInfinity and 0 otherwise.
func (d Date) Infinite() int {
	return int(d.inf)
}

func (d Date) String() string {
	switch {
	case d.inf > 0:
		return "infinity"
	case d.inf < 0:
		return "-infinity"
	}
	if y := d.Year(); y <= 0 {
		return fmt.Sprintf("%04d-%02d-%02d BC", 1-y, int(d.Month()), d.Day())
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year(), int(d.Month()), d.Day())
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts what MarshalJSON produces. It also shadows the
// RFC 3339 decoder promoted from time.Time.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	unq, ok := strings.CutPrefix(s, `"`)
	if !ok {
		return fmt.Errorf("date must be a string, got %s", s)
	}
	unq, ok = strings.CutSuffix(unq, `"`)
	if !ok {
		return fmt.Errorf("date must be a string, got %s", s)
	}
	parsed, err := ParseDate(unq)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// SentinelAll is the type or name value that means "no restriction".
const SentinelAll = "get all"

// IsSentinel reports whether s is SentinelAll, ignoring case.
func IsSentinel(s string) bool {
	return strings.EqualFold(s, SentinelAll)
}

// TypeFilter restricts documents by type. The zero value is "all types".
type TypeFilter struct {
	types   []string
	present bool
}

// AllTypes is the absent filter.
func AllTypes() TypeFilter {
	return TypeFilter{}
}

// TypesOf restricts to the given types, matched exactly.
// An empty list matches nothing; a list containing SentinelAll matches everything.
func TypesOf(types ...string) TypeFilter {
	return TypeFilter{types: slices.Clone(types), present: true}
}

// MatchesAll reports whether the filter places no restriction on type.
func (f TypeFilter) MatchesAll() bool {
	return !f.present || slices.ContainsFunc(f.types, IsSentinel)
}

// Types returns the requested types, deduplicated, in first-seen order.
func (f TypeFilter) Types() []string {
	out := make([]string, 0, len(f.types))
	for _, t := range f.types {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
