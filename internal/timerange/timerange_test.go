package timerange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday 2025-03-12 14:30 in Istanbul.
func fixedResolver(t *testing.T) (*Resolver, *time.Location) {
	t.Helper()
	loc := time.FixedZone("TRT", 3*60*60)
	now := time.Date(2025, time.March, 12, 14, 30, 0, 0, loc)
	return New(WithClock(func() time.Time { return now }), WithLocation(loc)), loc
}

func TestNamed_Bounds(t *testing.T) {
	r, loc := fixedResolver(t)
	ms := int(999 * time.Millisecond)

	tests := []struct {
		name  Name
		start time.Time
		end   time.Time
	}{
		{Today, time.Date(2025, 3, 12, 0, 0, 0, 0, loc), time.Date(2025, 3, 12, 23, 59, 59, ms, loc)},
		{Yesterday, time.Date(2025, 3, 11, 0, 0, 0, 0, loc), time.Date(2025, 3, 11, 23, 59, 59, ms, loc)},
		{ThisWeek, time.Date(2025, 3, 10, 0, 0, 0, 0, loc), time.Date(2025, 3, 16, 23, 59, 59, ms, loc)},
		{LastWeek, time.Date(2025, 3, 3, 0, 0, 0, 0, loc), time.Date(2025, 3, 9, 23, 59, 59, ms, loc)},
		{ThisMonth, time.Date(2025, 3, 1, 0, 0, 0, 0, loc), time.Date(2025, 3, 31, 23, 59, 59, ms, loc)},
		{LastMonth, time.Date(2025, 2, 1, 0, 0, 0, 0, loc), time.Date(2025, 2, 28, 23, 59, 59, ms, loc)},
		{ThisYear, time.Date(2025, 1, 1, 0, 0, 0, 0, loc), time.Date(2025, 12, 31, 23, 59, 59, ms, loc)},
		{LastYear, time.Date(2024, 1, 1, 0, 0, 0, 0, loc), time.Date(2024, 12, 31, 23, 59, 59, ms, loc)},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			w, ok := r.Named(tt.name)
			require.True(t, ok)
			assert.True(t, tt.start.Equal(w.Start), "start = %v, want %v", w.Start, tt.start)
			assert.True(t, tt.end.Equal(w.End), "end = %v, want %v", w.End, tt.end)
			assert.False(t, w.End.Before(w.Start))

			// Closed interval: both bounds are members, their neighbours are not.
			assert.True(t, w.Contains(w.Start))
			assert.True(t, w.Contains(w.End))
			assert.False(t, w.Contains(w.Start.Add(-time.Millisecond)))
			assert.False(t, w.Contains(w.End.Add(time.Millisecond)))
		})
	}
}

func TestNamed_Unknown(t *testing.T) {
	r, _ := fixedResolver(t)
	_, ok := r.Named("fortnight")
	assert.False(t, ok)
}

func TestStartOfWeek_Sunday(t *testing.T) {
	loc := time.UTC
	sunday := time.Date(2025, 3, 16, 10, 0, 0, 0, loc)
	r := New(WithClock(func() time.Time { return sunday }), WithLocation(loc))

	w, ok := r.Named(ThisWeek)
	require.True(t, ok)
	assert.Equal(t, time.Monday, w.Start.Weekday())
	assert.Equal(t, 10, w.Start.Day())
	assert.True(t, w.Contains(sunday))
}

func TestLastMonth_JanuaryWrapsToDecember(t *testing.T) {
	loc := time.UTC
	jan := time.Date(2025, 1, 15, 0, 0, 0, 0, loc)
	r := New(WithClock(func() time.Time { return jan }), WithLocation(loc))

	w, ok := r.Named(LastMonth)
	require.True(t, ok)
	assert.Equal(t, 2024, w.Start.Year())
	assert.Equal(t, time.December, w.Start.Month())
	assert.Equal(t, 31, w.End.Day())
}

func TestParametric(t *testing.T) {
	r, loc := fixedResolver(t)
	now := r.Now()

	tests := []struct {
		unit  Unit
		count int
		start time.Time
	}{
		{Days, 10, time.Date(2025, 3, 2, 14, 30, 0, 0, loc)},
		{Weeks, 2, time.Date(2025, 2, 26, 14, 30, 0, 0, loc)},
		{Months, 3, time.Date(2024, 12, 12, 14, 30, 0, 0, loc)},
		{Days, 0, now},
	}

	for _, tt := range tests {
		w, ok := r.Parametric(tt.unit, tt.count)
		require.True(t, ok)
		assert.True(t, tt.start.Equal(w.Start), "%d %s: start = %v", tt.count, tt.unit, w.Start)
		assert.True(t, now.Equal(w.End))
		assert.False(t, w.End.Before(w.Start))
	}

	_, ok := r.Parametric(Days, -1)
	assert.False(t, ok)
	_, ok = r.Parametric("yıl", 1)
	assert.False(t, ok)
}

func TestParametric_MonthsAreCalendarMonths(t *testing.T) {
	loc := time.UTC
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, loc)
	r := New(WithClock(func() time.Time { return now }), WithLocation(loc))

	w, ok := r.Parametric(Months, 1)
	require.True(t, ok)
	// 30 fixed days would land on March 1st.
	assert.NotEqual(t, time.Date(2025, 3, 1, 12, 0, 0, 0, loc), w.Start)
	assert.Equal(t, time.March, w.Start.Month())
	assert.Equal(t, 3, w.Start.Day()) // Feb 31 normalizes to Mar 3
}

func TestDetectNamed(t *testing.T) {
	tests := []struct {
		msg  string
		want Name
		ok   bool
	}{
		{"bugün kaç teklif var", Today, true},
		{"dün yapılan ziyaretler", Yesterday, true},
		{"dünkü ziyaretler", Yesterday, true},
		{"dünya", "", false},
		{"bu hafta kaç ziyaret yapıldı", ThisWeek, true},
		{"bu haftaki ameliyatlar", ThisWeek, true},
		{"geçen hafta teklifler", LastWeek, true},
		{"bu ay teklifler", ThisMonth, true},
		{"bu ayki teklifler", ThisMonth, true},
		{"bu ayrıntı", "", false},
		{"geçen ay onaylanan", LastMonth, true},
		{"bu yıl", ThisYear, true},
		{"bu sene toplam", ThisYear, true},
		{"geçen sene", LastYear, true},
		{"teklifleri listele", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			got, ok := DetectNamed(tt.msg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseParametric(t *testing.T) {
	unit, n, ok := ParseParametric("son 3 ay içindeki teklifler")
	require.True(t, ok)
	assert.Equal(t, Months, unit)
	assert.Equal(t, 3, n)

	unit, n, ok = ParseParametric("son 14 gündeki ziyaretler")
	require.True(t, ok)
	assert.Equal(t, Days, unit)
	assert.Equal(t, 14, n)

	_, _, ok = ParseParametric("son teklifler")
	assert.False(t, ok)
}

func TestFromMessage(t *testing.T) {
	r, _ := fixedResolver(t)

	w, ok := r.FromMessage("bu hafta son 2 gün")
	require.True(t, ok)
	assert.Equal(t, "son 2 gün", w.Label)

	w, ok = r.FromMessage("geçen ay")
	require.True(t, ok)
	assert.Equal(t, "geçen ay", w.Label)

	_, ok = r.FromMessage("teklifler")
	assert.False(t, ok)
}

func TestFromMessageOrDefault(t *testing.T) {
	r, _ := fixedResolver(t)
	now := r.Now()

	w := r.FromMessageOrDefault("teklifler", 0)
	assert.True(t, now.AddDate(0, 0, -DefaultDays).Equal(w.Start))
	assert.True(t, now.Equal(w.End))

	w = r.FromMessageOrDefault("teklifler", 30)
	assert.True(t, now.AddDate(0, 0, -30).Equal(w.Start))
}

func TestMonthToDate(t *testing.T) {
	r, loc := fixedResolver(t)
	w := r.MonthToDate()
	assert.True(t, time.Date(2025, 3, 1, 0, 0, 0, 0, loc).Equal(w.Start))
	assert.True(t, r.Now().Equal(w.End))
}
