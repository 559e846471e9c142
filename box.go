package exprbox

import (
	"math"
	"reflect"
)

// The value channel is a plain float64. Ordinary numbers travel through it
// unchanged; everything else is encoded into the quiet-NaN bit-pattern
// space. A small set of negative quiet-NaN payloads is reserved for nil,
// true, and false, and every other payload is an index into the expression's
// value table, shifted past the sentinels.
//
// Host-provided doubles that already are quiet NaNs must survive a round
// trip, so Store boxes any float64 whose bit pattern would currently decode
// as a table reference, and Load treats out-of-range payloads as the number
// itself.
const (
	// boxMask is the bit pattern of a negative quiet NaN with empty payload.
	boxMask = 0xFFF8000000000000

	trueBits  = boxMask | 1
	falseBits = boxMask | 2
	nilBits   = boxMask | 3

	// boxIndexOffset shifts table indices past the sentinel payloads.
	boxIndexOffset = 4
)

// maxSafeInteger is the largest integer magnitude exactly representable as a
// float64 without precision loss.
const maxSafeInteger = 1 << 53

// ValueBox is the value table backing one expression instance: an
// append-only sequence of host values referenced by tagged channel doubles.
// Entries below the expression's baseline hold literals and folded constants
// and live as long as the expression; entries above it are transient and are
// discarded when the evaluation call that created them returns.
//
// A ValueBox is not safe for concurrent use; the owning Expression
// serializes access around each evaluation.
type ValueBox struct {
	values []any
}

// Len reports the current number of table entries.
func (b *ValueBox) Len() int {
	return len(b.values)
}

// Store encodes a host value as a channel double. Numbers exactly
// representable as float64, booleans, and nil-like values encode directly
// with no table entry; everything else is appended to the table.
func (b *ValueBox) Store(v any) float64 {
	switch v := v.(type) {
	case nil:
		return math.Float64frombits(nilBits)
	case bool:
		if v {
			return math.Float64frombits(trueBits)
		}
		return math.Float64frombits(falseBits)
	case float64:
		switch math.Float64bits(v) {
		case trueBits, falseBits, nilBits:
			return b.box(v)
		}
		if _, ok := b.tableIndex(v); ok {
			// A foreign NaN colliding with a sentinel or a live table
			// reference; box it so it decodes to itself.
			return b.box(v)
		}
		return v
	case float32:
		return float64(v)
	case int:
		return b.storeInt(int64(v))
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return b.storeInt(v)
	case uint:
		return b.storeUint(uint64(v))
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return b.storeUint(v)
	case uintptr:
		return b.storeUint(uint64(v))
	default:
		if isNilValue(v) {
			return math.Float64frombits(nilBits)
		}
		return b.box(v)
	}
}

func (b *ValueBox) storeInt(v int64) float64 {
	if v > -maxSafeInteger && v < maxSafeInteger {
		return float64(v)
	}
	return b.box(v)
}

func (b *ValueBox) storeUint(v uint64) float64 {
	if v < maxSafeInteger {
		return float64(v)
	}
	return b.box(v)
}

func (b *ValueBox) box(v any) float64 {
	b.values = append(b.values, v)
	return math.Float64frombits(boxMask | uint64(len(b.values)-1+boxIndexOffset))
}

// Load decodes a channel double back to the host value it encodes. Sentinel
// patterns resolve directly, in-range tagged patterns look up the table, and
// every other bit pattern is the number itself.
func (b *ValueBox) Load(f float64) any {
	switch math.Float64bits(f) {
	case nilBits:
		return nil
	case trueBits:
		return true
	case falseBits:
		return false
	}
	if i, ok := b.tableIndex(f); ok {
		return b.values[i]
	}
	return f
}

// tableIndex reports the table entry a channel double refers to, if its bit
// pattern is a tag within the currently valid index range.
func (b *ValueBox) tableIndex(f float64) (int, bool) {
	bits := math.Float64bits(f)
	if bits&boxMask != boxMask {
		return 0, false
	}
	i := int64(bits&^uint64(boxMask)) - boxIndexOffset
	if i < 0 || i >= int64(len(b.values)) {
		return 0, false
	}
	return int(i), true
}

// truncate discards table entries at and above n, releasing their values.
func (b *ValueBox) truncate(n int) {
	for i := n; i < len(b.values); i++ {
		b.values[i] = nil
	}
	b.values = b.values[:n]
}

// isNilValue reports whether v is a typed nil pointer, map, slice, channel,
// function, or interface.
func isNilValue(v any) bool {
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
