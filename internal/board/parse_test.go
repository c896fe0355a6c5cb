// internal/board/parse_test.go
package board

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValidBoard(t *testing.T) {
	rows, cols, values, err := Parse([]byte("3x3\n🦄\n🦄\n🌈\n🌈\n🌈\n🦄\n🌈\n🦄\n🌈\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, perfectValues, values)
}

func TestParseTrimsAndToleratesCRLF(t *testing.T) {
	rows, cols, values, err := Parse([]byte("1x2\r\n  A \r\nB\r\n\r\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, []string{"A", "B"}, values)
}

func TestParseNoTrailingNewline(t *testing.T) {
	_, _, values, err := Parse([]byte("1x1\nsolo"))
	require.NoError(t, err)
	assert.Equal(t, []string{"solo"}, values)
}

func TestParseBadHeader(t *testing.T) {
	for _, in := range []string{"", "3by3\nA", "x3\nA", "3x\nA", "3x3x3\nA", "-1x3\nA", "A\nB"} {
		_, _, _, err := Parse([]byte(in))
		assert.Error(t, err, "input %q", in)
		var pe *ParseError
		assert.ErrorAs(t, err, &pe, "input %q", in)
	}
}

func TestParseZeroDimension(t *testing.T) {
	_, _, _, err := Parse([]byte("0x3\n"))
	assert.Error(t, err)
}

func TestParseCountMismatch(t *testing.T) {
	_, _, _, err := Parse([]byte("2x2\nA\nB\nC\n"))
	assert.Error(t, err)

	_, _, _, err = Parse([]byte("2x2\nA\nB\nC\nD\nE\n"))
	assert.Error(t, err)
}

func TestParseRejectsBlankOrSpacedValues(t *testing.T) {
	// An interior blank line trims to an empty card value.
	_, _, _, err := Parse([]byte("2x1\n\nA\n"))
	assert.Error(t, err)

	_, _, _, err = Parse([]byte("1x1\na b\n"))
	assert.Error(t, err)
}

func TestParseFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mini.txt")
	require.NoError(t, os.WriteFile(path, []byte("2x2\nA\nB\nB\nA\n"), 0o644))

	b, err := ParseFile(path)
	require.NoError(t, err)
	rows, cols := b.Size()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, "2x2\ndown\ndown\ndown\ndown", b.Look("alice"))
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}
