package core

import (
	"bytes"
	"testing"
)

func TestDefaultLogger_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := newDefaultLogger("points", false, &out, &errOut)

	l.Debugf("hidden %d", 1)
	l.Infof("visible %d", 2)
	l.Errorf("broken %d", 3)

	if bytes.Contains(out.Bytes(), []byte("hidden")) {
		t.Errorf("debug line written while debug is off: %q", out.String())
	}
	if !bytes.Contains(out.Bytes(), []byte("visible 2")) || !bytes.Contains(out.Bytes(), []byte("prefix=points")) {
		t.Errorf("info line missing: %q", out.String())
	}
	if !bytes.Contains(errOut.Bytes(), []byte("broken 3")) {
		t.Errorf("error line missing: %q", errOut.String())
	}

	l.SetDebug(true)
	if !l.DebugEnabled() {
		t.Fatal("debug should be enabled")
	}
	l.Debugf("shown %d", 4)
	if !bytes.Contains(out.Bytes(), []byte("shown 4")) {
		t.Errorf("debug line missing: %q", out.String())
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop must never return nil")
	}
	l := NewDefaultLogger("", false)
	if OrNop(l) != Logger(l) {
		t.Error("OrNop should pass through a non-nil logger")
	}
}
