// Package tracefile reads address traces: text files with one decimal virtual
// address per line.
package tracefile

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// A ParseError reports a line that does not hold a valid address.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: invalid address %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// A Reader returns the addresses of a trace one by one.
type Reader struct {
	scanner *bufio.Scanner
	lenient bool
	line    int
}

// NewReader creates a Reader. In strict mode, blank lines are skipped and a
// line that is not a 32-bit decimal integer is an error. In lenient mode,
// every line is parsed like the C atoi function: the leading integer is used
// and a line without one, blank lines included, yields 0.
func NewReader(r io.Reader, lenient bool) *Reader {
	return &Reader{
		scanner: bufio.NewScanner(r),
		lenient: lenient,
	}
}

// Line returns the number of the last line read.
func (r *Reader) Line() int {
	return r.line
}

// Next returns the next address. It returns io.EOF after the last address.
func (r *Reader) Next() (int32, error) {
	for r.scanner.Scan() {
		r.line++

		text := strings.TrimSpace(r.scanner.Text())

		if r.lenient {
			return Atoi(text), nil
		}

		if text == "" {
			continue
		}

		v, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return 0, &ParseError{Line: r.line, Text: text, Err: err}
		}

		return int32(v), nil
	}

	if err := r.scanner.Err(); err != nil {
		return 0, fmt.Errorf("read trace: %w", err)
	}

	return 0, io.EOF
}

// ReadAll returns all the remaining addresses.
func (r *Reader) ReadAll() ([]int32, error) {
	var addrs []int32

	for {
		addr, err := r.Next()
		if err == io.EOF {
			return addrs, nil
		}

		if err != nil {
			return addrs, err
		}

		addrs = append(addrs, addr)
	}
}

// Atoi parses the leading decimal integer of s, after optional white space
// and an optional sign. It returns 0 if there is none. Values beyond the
// 64-bit range saturate before being truncated to 32 bits.
func Atoi(s string) int32 {
	s = strings.TrimLeft(s, " \t\n\v\f\r")

	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}

	var v uint64
	saturated := false

	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		d := uint64(s[i] - '0')
		if v > (math.MaxInt64-d)/10 {
			saturated = true
			break
		}

		v = v*10 + d
	}

	var n int64
	switch {
	case saturated && negative:
		n = math.MinInt64
	case saturated:
		n = math.MaxInt64
	case negative:
		n = -int64(v)
	default:
		n = int64(v)
	}

	return int32(n)
}
