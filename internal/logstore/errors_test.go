package logstore

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesOnKindOnly(t *testing.T) {
	err := wrapErr(KindFileNotFound, "/some/path.glog", nil)
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("errors.Is should match sentinel by Kind regardless of Message")
	}
	if errors.Is(err, ErrReadOnlyViolation) {
		t.Fatalf("errors.Is should not match a different Kind")
	}
}

func TestErrorUnwrapExposesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := wrapEngineErr("write message", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is should see through Unwrap to the underlying cause")
	}
}

func TestWrapEngineErrNilIsNil(t *testing.T) {
	if wrapEngineErr("noop", nil) != nil {
		t.Fatalf("wrapEngineErr(nil) should return nil, not a non-nil *Error wrapping nil")
	}
}

func TestKindStringCovers(t *testing.T) {
	cases := []struct {
		k    Kind
		want string
	}{
		{KindFileNotFound, "FileNotFound"},
		{KindLogFileExistsAlready, "LogFileExistsAlready"},
		{KindAlreadyDisposed, "AlreadyDisposed"},
		{Kind(999), "None"},
	}
	for _, c := range cases {
		if got := c.k.String(); got != c.want {
			t.Fatalf("Kind(%d).String() = %q, want %q", c.k, got, c.want)
		}
	}
}
