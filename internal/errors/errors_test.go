package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapPreservesCode(t *testing.T) {
	base := ConfigInvalid("bad value")
	wrapped := Wrap(base, "loading config")
	if GetCode(wrapped) != CodeConfigInvalid {
		t.Errorf("code = %s, want %s", GetCode(wrapped), CodeConfigInvalid)
	}
	if !errors.Is(wrapped, base) {
		t.Error("wrapped error must unwrap to its cause")
	}
}

func TestWrapForeignErrorGetsInternalCode(t *testing.T) {
	wrapped := Wrap(fmt.Errorf("disk full"), "saving file")
	if GetCode(wrapped) != CodeInternalError {
		t.Errorf("code = %s, want %s", GetCode(wrapped), CodeInternalError)
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("wrapping nil must stay nil")
	}
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("Wrapf(nil) must stay nil")
	}
}

func TestGetCodeUnknown(t *testing.T) {
	if got := GetCode(fmt.Errorf("plain")); got != "UNKNOWN" {
		t.Errorf("code = %s, want UNKNOWN", got)
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := Wrap(fmt.Errorf("root"), "outer")
	if err.Error() != "outer: root" {
		t.Errorf("Error() = %q, want \"outer: root\"", err.Error())
	}
}
