package main

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestRoundedSqrt(t *testing.T) {
	cases := map[string]string{
		"2":    "1.41",
		"9":    "3",
		"2.25": "1.5",
		" 16 ": "4",
		"0":    "0",
	}
	for in, want := range cases {
		got, err := RoundedSqrt(in)
		if err != nil {
			t.Errorf("RoundedSqrt(%q) returned error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("RoundedSqrt(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRoundedSqrtBadInput(t *testing.T) {
	for _, in := range []string{"", "abc", "12abc", "-4"} {
		if _, err := RoundedSqrt(in); err == nil {
			t.Errorf("RoundedSqrt(%q) should return an error", in)
		}
	}
}

func TestSafeJoin(t *testing.T) {
	root := filepath.Join("/tmp", "content")
	if got := SafeJoin(root, "/notes/a.md"); got != filepath.Join(root, "notes/a.md") {
		t.Errorf("SafeJoin resolved to %q", got)
	}
	// Traversal is clamped inside root, never outside it.
	got := SafeJoin(root, "../../etc/passwd")
	if got != "" && got != filepath.Join(root, "etc/passwd") {
		t.Errorf("SafeJoin let a path escape root: %q", got)
	}
}

func TestToStrArr(t *testing.T) {
	if got := ToStrArr(nil); len(got) != 0 {
		t.Errorf("ToStrArr(nil) = %v, want empty", got)
	}
	if got := ToStrArr([]any{"a", 2, true}); !reflect.DeepEqual(got, []string{"a", "2", "true"}) {
		t.Errorf("ToStrArr list = %v", got)
	}
	if got := ToStrArr("solo"); !reflect.DeepEqual(got, []string{"solo"}) {
		t.Errorf("ToStrArr scalar = %v", got)
	}
}
