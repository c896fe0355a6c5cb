// internal/board/parse.go
package board

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var headerPattern = regexp.MustCompile(`^(\d+)x(\d+)$`)

// Parse reads a textual board template:
//
//	ROWSxCOLS
//	VALUE_1
//	...
//	VALUE_{ROWS*COLS}
//
// Lines are whitespace-trimmed and trailing blank lines are ignored. Parse
// fails if the header is malformed, the card count does not match the
// dimensions, or any value line is empty or contains internal whitespace.
func Parse(data []byte) (rows, cols int, values []string, err error) {
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	if len(lines) == 0 {
		return 0, 0, nil, &ParseError{Msg: "empty board file"}
	}

	m := headerPattern.FindStringSubmatch(lines[0])
	if m == nil {
		return 0, 0, nil, &ParseError{Line: 1, Msg: fmt.Sprintf("bad header %q, want ROWSxCOLS", lines[0])}
	}
	rows, err = strconv.Atoi(m[1])
	if err == nil {
		cols, err = strconv.Atoi(m[2])
	}
	if err != nil || rows <= 0 || cols <= 0 {
		return 0, 0, nil, &ParseError{Line: 1, Msg: fmt.Sprintf("bad dimensions %q", lines[0])}
	}

	want := rows * cols
	got := len(lines) - 1
	if got != want {
		return 0, 0, nil, &ParseError{Msg: fmt.Sprintf("expected %d cards for a %dx%d board, got %d", want, rows, cols, got)}
	}

	values = make([]string, 0, want)
	for i, line := range lines[1:] {
		if !validValue(line) {
			return 0, 0, nil, &ParseError{Line: i + 2, Msg: fmt.Sprintf("bad card value %q", line)}
		}
		values = append(values, line)
	}

	return rows, cols, values, nil
}

// ParseFile reads a board template from disk and constructs a fresh board.
func ParseFile(path string) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read board file: %w", err)
	}
	rows, cols, values, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return FromValues(rows, cols, values)
}
