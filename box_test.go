package exprbox

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBoxRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		v    any
		want any
	}{
		{"nil", nil, nil},
		{"true", true, true},
		{"false", false, false},
		{"number", 3.25, 3.25},
		{"zero", 0.0, 0.0},
		{"int", 42, 42.0},
		{"int8", int8(-7), -7.0},
		{"uint32", uint32(9), 9.0},
		{"float32", float32(1.5), 1.5},
		{"inf", math.Inf(1), math.Inf(1)},
		{"string", "hello", "hello"},
		{"slice", []any{1.0, "a"}, []any{1.0, "a"}},
		{"map", map[string]any{"k": 1.0}, map[string]any{"k": 1.0}},
		{"tuple", Tuple{1.0, 2.0}, Tuple{1.0, 2.0}},
		{"range", IntRange{Shape: RangeClosed, Lo: 1, Hi: 3}, IntRange{Shape: RangeClosed, Lo: 1, Hi: 3}},
		{"bigint", int64(1) << 60, int64(1) << 60},
		{"biguint", uint64(1) << 60, uint64(1) << 60},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var b ValueBox
			got := b.Load(b.Store(c.v))
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("round trip changed the value (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBoxTypedNil(t *testing.T) {
	var b ValueBox
	var p *int
	var m map[string]int
	var s []int
	for _, v := range []any{p, m, s} {
		if got := b.Load(b.Store(v)); got != nil {
			t.Errorf("typed nil %T round-tripped to %v, want nil", v, got)
		}
	}
	if b.Len() != 0 {
		t.Errorf("nil-like values took %d table entries", b.Len())
	}
}

func TestBoxSmallNumbersTakeNoEntries(t *testing.T) {
	var b ValueBox
	for _, v := range []any{1.0, -2.5, 7, uint16(3), true, false, nil} {
		b.Store(v)
	}
	if b.Len() != 0 {
		t.Errorf("direct encodings took %d table entries", b.Len())
	}
	b.Store("boxed")
	if b.Len() != 1 {
		t.Errorf("table has %d entries, want 1", b.Len())
	}
}

func TestBoxForeignNaN(t *testing.T) {
	var b ValueBox
	// Occupy some table slots so their reference patterns are live.
	for i := 0; i < 8; i++ {
		b.Store("pad")
	}
	hostile := []float64{
		math.NaN(),
		math.Float64frombits(nilBits),
		math.Float64frombits(trueBits),
		math.Float64frombits(falseBits),
		math.Float64frombits(boxMask | boxIndexOffset),       // entry 0's pattern
		math.Float64frombits(boxMask | (boxIndexOffset + 7)), // entry 7's pattern
		math.Float64frombits(boxMask | 0xFFFF),               // out-of-range pattern
	}
	for _, f := range hostile {
		got, ok := b.Load(b.Store(f)).(float64)
		if !ok {
			t.Errorf("NaN %#x decoded to non-float", math.Float64bits(f))
			continue
		}
		if math.Float64bits(got) != math.Float64bits(f) {
			t.Errorf("NaN %#x round-tripped to %#x", math.Float64bits(f), math.Float64bits(got))
		}
	}
}

func TestBoxUnsafeIntegers(t *testing.T) {
	var b ValueBox
	big := int64(1)<<53 + 1
	if got := b.Load(b.Store(big)); got != big {
		t.Errorf("unsafe integer round-tripped to %v (%T), want %v", got, got, big)
	}
	if b.Len() != 1 {
		t.Errorf("unsafe integer did not take a table entry")
	}
	safe := int64(1)<<53 - 1
	if got := b.Load(b.Store(safe)); got != float64(safe) {
		t.Errorf("safe integer round-tripped to %v (%T), want %v", got, got, float64(safe))
	}
}

func TestBoxTruncate(t *testing.T) {
	var b ValueBox
	keep := b.Store("constant")
	b.Store("temp1")
	b.Store("temp2")
	b.truncate(1)
	if b.Len() != 1 {
		t.Fatalf("table has %d entries after truncate, want 1", b.Len())
	}
	if got := b.Load(keep); got != "constant" {
		t.Errorf("entry below the mark became %v", got)
	}
	// Slots are reused, so the next store lands at index 1 again.
	f := b.Store("temp3")
	if got := b.Load(f); got != "temp3" {
		t.Errorf("reused slot holds %v, want temp3", got)
	}
	if b.Len() != 2 {
		t.Errorf("table has %d entries, want 2", b.Len())
	}
}
