package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerDebugGating(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLoggerTo(&out, &errOut)

	l.Debug("hidden %d", 1)
	if out.Len() != 0 {
		t.Errorf("debug output written while disabled: %q", out.String())
	}

	l.SetLevel("DEBUG")
	l.Debug("shown %d", 2)
	if !strings.Contains(out.String(), "shown 2") {
		t.Errorf("debug output missing: %q", out.String())
	}

	l.Error("boom on page %d", 5)
	if !strings.Contains(errOut.String(), "boom on page 5") {
		t.Errorf("error output missing: %q", errOut.String())
	}
}
