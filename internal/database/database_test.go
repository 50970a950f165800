// internal/database/database_test.go
//
// Tests for the DSN adjustments Open applies.

package database

import "testing"

func TestWithFoundRows(t *testing.T) {
	cases := map[string]string{
		"user:pw@tcp(db:3306)/taskgate":                 "user:pw@tcp(db:3306)/taskgate?clientFoundRows=true",
		"user:pw@tcp(db:3306)/taskgate?parseTime=true":  "user:pw@tcp(db:3306)/taskgate?parseTime=true&clientFoundRows=true",
		"user:pw@/taskgate?clientFoundRows=false":       "user:pw@/taskgate?clientFoundRows=false",
		"user:pw@/taskgate?clientFoundRows=true&loc=UTC": "user:pw@/taskgate?clientFoundRows=true&loc=UTC",
	}
	for in, want := range cases {
		if got := withFoundRows(in); got != want {
			t.Errorf("withFoundRows(%q) = %q, want %q", in, got, want)
		}
	}
}
