package monitoring

import "testing"

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) { got = format })

	Logf("frame dropped")
	if got != "frame dropped" {
		t.Errorf("custom logger got %q, want %q", got, "frame dropped")
	}

	// nil installs a no-op, not a nil func.
	got = ""
	SetLogger(nil)
	Logf("ignored")
	if got != "" {
		t.Errorf("no-op logger still forwarded %q", got)
	}
}

func TestDefaultLogf(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf must have a default")
	}
}
