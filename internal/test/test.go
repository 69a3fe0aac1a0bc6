// Package test contains helpers shared by package tests.
package test

import (
	"fmt"
	"runtime"
	"testing"

	err "github.com/ava12/barg/errors"
)

func fatalf(t testing.TB, message string, params ...any) {
	t.Helper()
	if len(params) > 0 {
		message = fmt.Sprintf(message, params...)
	}
	_, thisFile, _, _ := runtime.Caller(0)
	file := thisFile
	line := 0
	for i := 2; file == thisFile; i++ {
		_, file, line, _ = runtime.Caller(i)
	}
	t.Fatalf("%s at %s:%d", message, file, line)
}

// ExpectErrorCode fails the test unless e's chain contains *errors.Error with expected code.
func ExpectErrorCode(t testing.TB, expected int, e error) {
	t.Helper()
	if err.Code(e) != expected {
		fatalf(t, "expecting error code %d, got %v", expected, e)
	}
}

// ExpectBadGrammar fails the test unless e is a bad grammar error.
func ExpectBadGrammar(t testing.TB, e error) {
	t.Helper()
	if !err.IsBadGrammar(e) {
		fatalf(t, "expecting bad grammar error, got %v", e)
	}
}
