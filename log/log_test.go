package log

import(
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("info", &buf, "")

	l.Debugf("hidden %d", 1)
	l.Infof("shown %d", 2)
	l.Errorf("bad %s", "thing")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown 2"`)
	assert.Contains(t, out, `"msg":"bad thing"`)
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("debug", &buf, "").With("request", "r-1")
	require.NotNil(t, l)

	l.Debugf("x")
	assert.Contains(t, buf.String(), `"request":"r-1"`)
}

func TestNilLogger(t *testing.T) {
	var l *Logger
	l.Debugf("nothing")
	l.Infof("nothing")
	assert.Nil(t, l.With("a", "b"))
}
