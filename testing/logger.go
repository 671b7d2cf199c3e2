package testing

import (
	"fmt"
	"strings"
	"testing"

	"github.com/arloliu/rebalance/types"
)

// NewTestLogger creates a logger that writes through t.Logf.
// This is useful for seeing planner decisions during test runs.
func NewTestLogger(t testing.TB) types.Logger {
	return &testLogger{t: t}
}

type testLogger struct {
	t testing.TB
}

var _ types.Logger = (*testLogger)(nil)

func (l *testLogger) Debug(msg string, keysAndValues ...any) {
	l.t.Logf("DEBUG: %s%s", msg, formatKeyValues(keysAndValues))
}

func (l *testLogger) Info(msg string, keysAndValues ...any) {
	l.t.Logf("INFO: %s%s", msg, formatKeyValues(keysAndValues))
}

func (l *testLogger) Warn(msg string, keysAndValues ...any) {
	l.t.Logf("WARN: %s%s", msg, formatKeyValues(keysAndValues))
}

func (l *testLogger) Error(msg string, keysAndValues ...any) {
	l.t.Logf("ERROR: %s%s", msg, formatKeyValues(keysAndValues))
}

// Fatal logs the message and fails the test.
func (l *testLogger) Fatal(msg string, keysAndValues ...any) {
	l.t.Fatalf("FATAL: %s%s", msg, formatKeyValues(keysAndValues))
}

// formatKeyValues renders pairs as " k1=v1 k2=v2"; a trailing key without
// value is shown as k=<missing>.
func formatKeyValues(keysAndValues []any) string {
	var sb strings.Builder
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fmt.Fprintf(&sb, " %v=%v", keysAndValues[i], keysAndValues[i+1])
		} else {
			fmt.Fprintf(&sb, " %v=<missing>", keysAndValues[i])
		}
	}

	return sb.String()
}
