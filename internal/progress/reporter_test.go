package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallbackDrivesCIReporter(t *testing.T) {
	var buf bytes.Buffer
	cb := Callback(&CIReporter{w: &buf})

	cb(2, 5)
	cb(4, 5)
	cb(5, 5)

	assert.Equal(t, "Embedding 5 segments\n"+
		"[2/5] Embedding segments (2/5)\n"+
		"[4/5] Embedding segments (4/5)\n"+
		"[5/5] Embedding segments (5/5)\n"+
		"Indexing complete\n", buf.String())
}

func TestNewReporterInCI(t *testing.T) {
	t.Setenv("CI", "true")
	_, ok := NewReporter(&bytes.Buffer{}).(*CIReporter)
	assert.True(t, ok)
}

func TestNewReporterInTerminal(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	r := NewReporter(&bytes.Buffer{})
	_, ok := r.(*TerminalReporter)
	assert.True(t, ok)

	// Updating before Start must not panic.
	r.Update(1, "x")
	r.Finish()
}
