package hitrace_test

import (
	"testing"
	"time"

	hitrace "github.com/Narfinger/hitrace-bench"
)

func TestTimestamp(t *testing.T) {
	t.Parallel()

	a := hitrace.Timestamp{Seconds: 12, Micros: 500_000}
	b := hitrace.Timestamp{Seconds: 14, Micros: 250_000}

	AssertEqual(t, "12.500000", a.String())
	AssertEqual(t, true, a.Before(b))
	AssertEqual(t, false, b.Before(a))
	AssertEqual(t, false, a.Before(a))
	AssertEqual(t, 1750*time.Millisecond, b.Sub(a))
	AssertEqual(t, 12500*time.Millisecond, a.Duration())
}

func TestMarkerSymbols(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		symbol string
		want   hitrace.Marker
	}{
		{"B", hitrace.StartSync},
		{"E", hitrace.EndSync},
		{"S", hitrace.StartAsync},
		{"F", hitrace.EndAsync},
		{"H", hitrace.Dot},
		{"C", hitrace.Dot},
	} {
		m, ok := hitrace.MarkerFromSymbol(tc.symbol)
		AssertEqual(t, true, ok)
		AssertEqual(t, tc.want, m)
	}

	_, ok := hitrace.MarkerFromSymbol("X")
	AssertEqual(t, false, ok)
}

func TestMarkerText(t *testing.T) {
	t.Parallel()

	text, err := hitrace.StartAsync.MarshalText()
	AssertNoError(t, err)
	AssertEqual(t, "start_async", string(text))

	var m hitrace.Marker
	AssertNoError(t, m.UnmarshalText([]byte("end_sync")))
	AssertEqual(t, hitrace.EndSync, m)

	if err := m.UnmarshalText([]byte("bogus")); err == nil {
		t.Fatal("want error for unknown marker text")
	}
}
