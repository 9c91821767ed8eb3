// Package test contains helpers shared by package tests.
package test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava12/jetpeg"
)

// ExpectErrorCode fails the test unless e is a jetpeg.Error with expected code.
func ExpectErrorCode(t testing.TB, expected int, e error, msgAndArgs ...any) {
	t.Helper()
	var je *jetpeg.Error
	require.ErrorAs(t, e, &je, msgAndArgs...)
	require.Equal(t, expected, je.Code, "unexpected error %q", je.Message)
}

// ExpectPanic fails the test unless f panics with jetpeg.InternalError.
func ExpectPanic(t testing.TB, f func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "panic expected")
		_, valid := r.(*jetpeg.InternalError)
		require.True(t, valid, "InternalError expected, got %v", r)
	}()
	f()
}
