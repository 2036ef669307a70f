package jitlog

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)

	l.Infof("should not appear")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below minimum level, got %q", buf.String())
	}

	l.Warnf("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Errorf("expected warn message in output, got %q", buf.String())
	}
}

func TestWithAddsStickyFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug).With("block", "0x8000")

	l.Infof("emitted %d words", 3)

	out := buf.String()
	if !strings.Contains(out, "block=0x8000") {
		t.Errorf("expected sticky field in output, got %q", out)
	}
	if !strings.Contains(out, "emitted 3 words") {
		t.Errorf("expected message in output, got %q", out)
	}
}

func TestWithDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, LevelDebug)
	_ = base.With("a", 1)

	base.Infof("plain")
	if strings.Contains(buf.String(), "a=1") {
		t.Errorf("parent logger was mutated by With: %q", buf.String())
	}
}
