package log

import (
	"bytes"
	"encoding/json"
	stdlog "log"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug": DebugLevel,
		"info":  InfoLevel,
		"":      InfoLevel,
		"WARN":  WarnLevel,
		"error": ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithLevel(WarnLevel), WithOutput(&buf))
	l.Info("dropped")
	l.Warn("kept")
	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestJSONFormatAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithFormat(FormatJSON), WithOutput(&buf))
	l = l.With(Component("streams"))
	l.Info("stream opened", Str("name", "orders"), Uint64("entries", 3))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("not JSON: %v (%q)", err, buf.String())
	}
	if line["component"] != "streams" || line["name"] != "orders" {
		t.Fatalf("missing fields: %v", line)
	}
}

func TestApplyConfig(t *testing.T) {
	l, err := ApplyConfig(&Config{Level: "debug", Format: "json"})
	if err != nil || l == nil {
		t.Fatalf("ApplyConfig: %v", err)
	}
	if _, err := ApplyConfig(&Config{Level: "nope"}); err == nil {
		t.Fatalf("expected error for bad level")
	}
}

func TestRedirectStdLog(t *testing.T) {
	orig := stdlog.Writer()
	defer stdlog.SetOutput(orig)

	var buf bytes.Buffer
	RedirectStdLog(NewLogger(WithOutput(&buf)))
	stdlog.Print("from stdlib")
	if !strings.Contains(buf.String(), "from stdlib") {
		t.Fatalf("stdlib line not routed: %q", buf.String())
	}
}
