package exprbox

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func projectAs[T any](t *testing.T, src string, opts ...Option) (T, error) {
	t.Helper()
	e, err := New(src, opts...)
	if err != nil {
		t.Fatalf("%q failed to build: %v", src, err)
	}
	return EvaluateAs[T](e)
}

func TestEvaluateAs(t *testing.T) {
	t.Run("int", func(t *testing.T) {
		v, err := projectAs[int](t, "4 + 5")
		if err != nil || v != 9 {
			t.Errorf("got %v, %v", v, err)
		}
	})
	t.Run("float", func(t *testing.T) {
		v, err := projectAs[float64](t, "1 / 2")
		if err != nil || v != 0.5 {
			t.Errorf("got %v, %v", v, err)
		}
	})
	t.Run("uint8", func(t *testing.T) {
		v, err := projectAs[uint8](t, "200")
		if err != nil || v != 200 {
			t.Errorf("got %v, %v", v, err)
		}
	})
	t.Run("stringfromnumber", func(t *testing.T) {
		v, err := projectAs[string](t, "4 + 5")
		if err != nil || v != "9" {
			t.Errorf("got %q, %v", v, err)
		}
	})
	t.Run("stringdirect", func(t *testing.T) {
		v, err := projectAs[string](t, "'a' + 'b'")
		if err != nil || v != "ab" {
			t.Errorf("got %q, %v", v, err)
		}
	})
	t.Run("stringfrombool", func(t *testing.T) {
		v, err := projectAs[string](t, "1 < 2")
		if err != nil || v != "true" {
			t.Errorf("got %q, %v", v, err)
		}
	})
	t.Run("boolfromnumber", func(t *testing.T) {
		v, err := projectAs[bool](t, "3")
		if err != nil || v != true {
			t.Errorf("got %v, %v", v, err)
		}
		v, err = projectAs[bool](t, "0")
		if err != nil || v != false {
			t.Errorf("got %v, %v", v, err)
		}
	})
	t.Run("numberfrombool", func(t *testing.T) {
		v, err := projectAs[float64](t, "true")
		if err != nil || v != 1 {
			t.Errorf("got %v, %v", v, err)
		}
	})
	t.Run("intslice", func(t *testing.T) {
		v, err := projectAs[[]int](t, "[1, 2, 3]")
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]int{1, 2, 3}, v); diff != "" {
			t.Errorf("wrong slice (-want +got):\n%s", diff)
		}
	})
	t.Run("stringslice", func(t *testing.T) {
		v, err := projectAs[[]string](t, "[1, 'a', true]")
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"1", "a", "true"}, v); diff != "" {
			t.Errorf("wrong slice (-want +got):\n%s", diff)
		}
	})
	t.Run("anyvalue", func(t *testing.T) {
		v, err := projectAs[any](t, "nil")
		if err != nil || v != nil {
			t.Errorf("got %v, %v", v, err)
		}
	})
	t.Run("nilpointer", func(t *testing.T) {
		v, err := projectAs[*int](t, "nil")
		if err != nil || v != nil {
			t.Errorf("got %v, %v", v, err)
		}
	})
	t.Run("passthrough", func(t *testing.T) {
		want := IntRange{Shape: RangeClosed, Lo: 1, Hi: 3}
		v, err := projectAs[IntRange](t, "1...3")
		if err != nil || v != want {
			t.Errorf("got %v, %v", v, err)
		}
	})
}

func TestEvaluateAsMismatch(t *testing.T) {
	check := func(t *testing.T, err error) {
		t.Helper()
		var rerr *ResultTypeMismatchError
		if !errors.As(err, &rerr) {
			t.Fatalf("error was %#v, not ResultTypeMismatchError", err)
		}
	}
	t.Run("fractionalint", func(t *testing.T) {
		_, err := projectAs[int](t, "1 / 2")
		check(t, err)
	})
	t.Run("negativeuint", func(t *testing.T) {
		_, err := projectAs[uint](t, "0 - 1")
		check(t, err)
	})
	t.Run("overflow", func(t *testing.T) {
		_, err := projectAs[int8](t, "1000")
		check(t, err)
	})
	t.Run("nilstring", func(t *testing.T) {
		_, err := projectAs[string](t, "nil")
		check(t, err)
	})
	t.Run("boolfromstring", func(t *testing.T) {
		_, err := projectAs[bool](t, "'true'")
		check(t, err)
	})
	t.Run("mixedslice", func(t *testing.T) {
		_, err := projectAs[[]int](t, "[1, 'a']")
		check(t, err)
	})
	t.Run("evalerrorwins", func(t *testing.T) {
		_, err := projectAs[int](t, "1 + nil")
		var terr *TypeMismatchError
		if !errors.As(err, &terr) {
			t.Fatalf("error was %#v, not the evaluation error", err)
		}
	})
}
