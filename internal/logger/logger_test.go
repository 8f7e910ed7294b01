package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetLevel(INFO)

	SetLevel(WARN)
	Infof("solver", "hidden %d", 1)
	Warnf("solver", "shown %d", 2)
	Errorf("input", "also shown")

	assert.Equal(t, "[WARN] solver: shown 2\n[ERROR] input: also shown\n", buf.String())

	buf.Reset()
	SetLevel(QUIET)
	Errorf("solver", "nothing")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel(" Warning "))
	assert.Equal(t, QUIET, ParseLevel("quiet"))
	assert.Equal(t, INFO, ParseLevel("bogus"))
}
