package cli

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("rules.path", "cannot be empty")
	if !strings.Contains(err.Error(), "rules.path") {
		t.Errorf("error %q does not name the field", err)
	}

	bare := NewConfigError("", "file missing")
	if strings.Contains(bare.Error(), "in ") {
		t.Errorf("fieldless error %q mentions a field", bare)
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := NewCommandError("run", cause)
	if !errors.Is(err, cause) {
		t.Error("CommandError does not unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "run") {
		t.Errorf("error %q does not name the command", err)
	}
}
