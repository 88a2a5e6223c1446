package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// Capture collects JSON log records written during a test.
type Capture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer.
func (c *Capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

// String returns everything logged so far.
func (c *Capture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// Records decodes every captured line. It fails the test on a malformed line.
func (c *Capture) Records(t testing.TB) []map[string]any {
	t.Helper()

	var records []map[string]any
	for _, line := range strings.Split(c.String(), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("malformed log line %q: %v", line, err)
		}
		records = append(records, rec)
	}
	return records
}

// Find returns the first record with the given message whose attributes
// match kv, given as alternating key and value. Values compare by their
// fmt representation so numbers and UUIDs need no conversion.
func (c *Capture) Find(t testing.TB, msg string, kv ...any) (map[string]any, bool) {
	t.Helper()

records:
	for _, rec := range c.Records(t) {
		if rec[slog.MessageKey] != msg {
			continue
		}
		for i := 0; i+1 < len(kv); i += 2 {
			key := fmt.Sprint(kv[i])
			if fmt.Sprint(rec[key]) != fmt.Sprint(kv[i+1]) {
				continue records
			}
		}
		return rec, true
	}
	return nil, false
}

// NewCapture returns a debug level JSON logger writing into a fresh Capture.
func NewCapture(t testing.TB) (*Capture, *slog.Logger) {
	t.Helper()
	c := &Capture{}
	return c, slog.New(slog.NewJSONHandler(c, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// CaptureDefault is NewCapture that also installs the logger as the slog
// default until the test ends.
func CaptureDefault(t testing.TB) (*Capture, *slog.Logger) {
	t.Helper()
	c, l := NewCapture(t)
	original := slog.Default()
	slog.SetDefault(l)
	t.Cleanup(func() { slog.SetDefault(original) })
	return c, l
}
