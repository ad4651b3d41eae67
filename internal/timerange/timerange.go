// Package timerange resolves Turkish relative time phrases into closed date intervals.
package timerange

import (
	"regexp"
	"strconv"
	"time"
)

// Window is a closed time interval.
type Window struct {
	Start time.Time
	End   time.Time
	Label string
}

// Contains reports whether t lies in the window. Both bounds are inclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Name identifies a named calendar window.
type Name string

const (
	Today     Name = "today"
	Yesterday Name = "yesterday"
	ThisWeek  Name = "this_week"
	LastWeek  Name = "last_week"
	ThisMonth Name = "this_month"
	LastMonth Name = "last_month"
	ThisYear  Name = "this_year"
	LastYear  Name = "last_year"
)

// Unit is the unit of a parametric "son N ..." window.
type Unit string

const (
	Days   Unit = "gün"
	Weeks  Unit = "hafta"
	Months Unit = "ay"
)

// DefaultDays is the fallback window length when a message names no period.
const DefaultDays = 7

// Named phrases in check order. "geçen" phrases never overlap "bu" phrases.
var namedPatterns = []struct {
	name  Name
	label string
	re    *regexp.Regexp
}{
	{Today, "bugün", regexp.MustCompile(`(?:^|\s)bugün`)},
	{Yesterday, "dün", regexp.MustCompile(`(?:^|\s)dün(?:kü|ü)?(?:\s|$|[.,?!])`)},
	{LastWeek, "geçen hafta", regexp.MustCompile(`geçen\s+hafta`)},
	{ThisWeek, "bu hafta", regexp.MustCompile(`(?:^|\s)bu\s+hafta`)},
	{LastMonth, "geçen ay", regexp.MustCompile(`geçen\s+ay(?:ki|da|daki|ın)?(?:\s|$|[.,?!])`)},
	{ThisMonth, "bu ay", regexp.MustCompile(`(?:^|\s)bu\s+ay(?:ki|da|daki|ın)?(?:\s|$|[.,?!])`)},
	{LastYear, "geçen yıl", regexp.MustCompile(`geçen\s+(?:yıl|sene)`)},
	{ThisYear, "bu yıl", regexp.MustCompile(`(?:^|\s)bu\s+(?:yıl|sene)`)},
}

var parametricPattern = regexp.MustCompile(`son\s+(\d+)\s+(gün|hafta|ay)`)

// Resolver computes windows relative to an injectable clock.
type Resolver struct {
	now func() time.Time
	loc *time.Location
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock sets the function used for "now".
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLocation sets the location used for calendar boundaries.
func WithLocation(loc *time.Location) Option {
	return func(r *Resolver) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// New creates a Resolver. Defaults to time.Now in the local zone.
func New(opts ...Option) *Resolver {
	r := &Resolver{now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Now returns the current time in the resolver's location.
func (r *Resolver) Now() time.Time {
	return r.now().In(r.loc)
}

// Location returns the location used for calendar boundaries.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Named returns the calendar window for name.
func (r *Resolver) Named(name Name) (Window, bool) {
	now := r.Now()
	today := startOfDay(now)

	switch name {
	case Today:
		return Window{Start: today, End: endOfDay(today), Label: "bugün"}, true
	case Yesterday:
		y := today.AddDate(0, 0, -1)
		return Window{Start: y, End: endOfDay(y), Label: "dün"}, true
	case ThisWeek:
		start := startOfWeek(today)
		return Window{Start: start, End: endOfDay(start.AddDate(0, 0, 6)), Label: "bu hafta"}, true
	case LastWeek:
		start := startOfWeek(today).AddDate(0, 0, -7)
		return Window{Start: start, End: endOfDay(start.AddDate(0, 0, 6)), Label: "geçen hafta"}, true
	case ThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Window{Start: start, End: endOfDay(start.AddDate(0, 1, -1)), Label: "bu ay"}, true
	case LastMonth:
		start := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
		return Window{Start: start, End: endOfDay(start.AddDate(0, 1, -1)), Label: "geçen ay"}, true
	case ThisYear:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return Window{Start: start, End: endOfDay(start.AddDate(1, 0, -1)), Label: "bu yıl"}, true
	case LastYear:
		start := time.Date(now.Year()-1, time.January, 1, 0, 0, 0, 0, now.Location())
		return Window{Start: start, End: endOfDay(start.AddDate(1, 0, -1)), Label: "geçen yıl"}, true
	default:
		return Window{}, false
	}
}

// Parametric returns the window from count units before now up to now.
// Months are calendar months, not fixed 30-day blocks.
func (r *Resolver) Parametric(unit Unit, count int) (Window, bool) {
	if count < 0 {
		return Window{}, false
	}
	now := r.Now()
	var start time.Time
	switch unit {
	case Days:
		start = now.AddDate(0, 0, -count)
	case Weeks:
		start = now.AddDate(0, 0, -7*count)
	case Months:
		start = now.AddDate(0, -count, 0)
	default:
		return Window{}, false
	}
	return Window{Start: start, End: now, Label: "son " + strconv.Itoa(count) + " " + string(unit)}, true
}

// LastDays returns the window covering the last n days up to now.
func (r *Resolver) LastDays(n int) Window {
	w, _ := r.Parametric(Days, n)
	return w
}

// MonthToDate returns the window from the start of the current month to now.
func (r *Resolver) MonthToDate() Window {
	now := r.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return Window{Start: start, End: now, Label: "bu ay"}
}

// ParseParametric extracts a "son N gün|hafta|ay" phrase from a normalized message.
func ParseParametric(message string) (Unit, int, bool) {
	m := parametricPattern.FindStringSubmatch(message)
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return "", 0, false
	}
	return Unit(m[2]), n, true
}

// DetectNamed returns the first named window phrase present in a normalized message.
func DetectNamed(message string) (Name, bool) {
	for _, p := range namedPatterns {
		if p.re.MatchString(message) {
			return p.name, true
		}
	}
	return "", false
}

// FromMessage resolves the window a normalized message refers to.
// A parametric phrase wins over a named one.
func (r *Resolver) FromMessage(message string) (Window, bool) {
	if unit, n, ok := ParseParametric(message); ok {
		return r.Parametric(unit, n)
	}
	if name, ok := DetectNamed(message); ok {
		return r.Named(name)
	}
	return Window{}, false
}

// FromMessageOrDefault resolves the window a message refers to, falling back
// to the last defaultDays days.
func (r *Resolver) FromMessageOrDefault(message string, defaultDays int) Window {
	if w, ok := r.FromMessage(message); ok {
		return w
	}
	if defaultDays <= 0 {
		defaultDays = DefaultDays
	}
	return r.LastDays(defaultDays)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// startOfWeek returns the Monday of t's calendar week.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return startOfDay(t).AddDate(0, 0, -offset)
}
