// Package testutil holds helpers shared by integration tests that need
// external services (PostgreSQL, Redis).
package testutil

import (
	"os"
	"testing"

	"github.com/rs/xid"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// UniqueID returns prefix joined with a fresh xid, so tests sharing one
// database do not collide.
func UniqueID(prefix string) string {
	return prefix + "-" + xid.New().String()
}
