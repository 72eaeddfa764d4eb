package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{"info by default", false, false},
		{"debug when verbose", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(&buf, Options{Verbose: tt.verbose})
			log.Debug("debug line")
			log.Info("info line", "make", "ford")

			out := buf.String()
			if !strings.Contains(out, "info line") {
				t.Errorf("missing info record in %q", out)
			}
			if !strings.Contains(out, "make=ford") {
				t.Errorf("missing attribute in %q", out)
			}
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Errorf("debug emitted = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestNewNoColorForBuffers(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, Options{}).Info("plain")
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("unexpected ANSI escape in %q", buf.String())
	}
}
