// Package doctest is the runtime half of mdtest: the small helper
// library that generated documentation tests call into. The compiler
// never evaluates sample code itself; everything here runs under go test
// inside the generated suite.
package doctest

import (
	"fmt"
	"reflect"
	"strconv"
	"testing"
)

// Suite registers one documentation suite. Generated programs call it
// exactly once; cases run in registration order, which is document order.
func Suite(t *testing.T, name string, fn func(t *testing.T)) {
	t.Helper()
	t.Run(name, fn)
}

// Case registers one sample's test case inside a suite.
func Case(t *testing.T, name string, fn func(t *testing.T)) {
	t.Helper()
	t.Run(name, fn)
}

// AssertRepr fails the test when v's rendered representation differs from
// want. The annotated expression has already been evaluated by the time
// its value arrives here; it is never evaluated twice.
func AssertRepr(t testing.TB, v any, want string) {
	t.Helper()
	if got := Repr(v); got != want {
		t.Errorf("repr mismatch\n got: %s\nwant: %s", got, want)
	}
}

// AssertError invokes the thunk and fails the test unless it panics with
// a value whose kind name and message match. Evaluation is deferred into
// the thunk so a failing expression cannot abort the rest of the case.
func AssertError(t testing.TB, fn func(), name, message string) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Errorf("expected %s: %s, but nothing was raised", name, message)
			return
		}
		gotName, gotMsg := errorKind(r), errorMessage(r)
		if gotName != name || gotMsg != message {
			t.Errorf("error mismatch\n got: %s: %s\nwant: %s: %s", gotName, gotMsg, name, message)
		}
	}()
	fn()
}

// Repr renders a value the way documentation quotes it: strings as Go
// quoted literals, errors by their message, Stringers by String, and
// anything else through %v.
func Repr(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// errorKind names the dynamic type of a raised value, pointers
// dereferenced, so a *doc.MathError panics as "MathError".
func errorKind(v any) string {
	rt := reflect.TypeOf(v)
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil {
		return ""
	}
	if rt.Name() == "" {
		return rt.String()
	}
	return rt.Name()
}

func errorMessage(v any) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(v)
}
