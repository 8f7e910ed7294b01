package stats

import (
	"bytes"
	"iter"
	"math"
	"strconv"
	"unicode/utf8"
)

const (
	valueSep = ';'
	endLine  = '\n'
)

// pow10 holds the powers of ten that are exact in a float64.
var pow10 = [...]float64{1e0, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9,
	1e10, 1e11, 1e12, 1e13, 1e14, 1e15, 1e16, 1e17, 1e18, 1e19, 1e20, 1e21, 1e22}

// ParseValue parses [+-]?[0-9]+(\.[0-9]*)? into a float64.
//
// strconv.ParseFloat dominates the profile for short literals, so those are
// computed directly: a mantissa below 2^53 divided by an exact power of ten
// is correctly rounded. Longer literals fall back to strconv.
func ParseValue(value []byte) (float64, bool) {
	i := 0
	neg := false
	if len(value) > 0 && (value[0] == '-' || value[0] == '+') {
		neg = value[0] == '-'
		i++
	}

	var mant uint64
	digits, frac := 0, 0
	intStart := i
	for ; i < len(value) && isDigit(value[i]); i++ {
		mant = mant*10 + uint64(value[i]-'0')
		digits++
	}
	if i == intStart {
		return 0, false
	}
	if i < len(value) && value[i] == '.' {
		i++
		for ; i < len(value) && isDigit(value[i]); i++ {
			mant = mant*10 + uint64(value[i]-'0')
			digits++
			frac++
		}
	}
	if i != len(value) {
		return 0, false
	}

	if digits > 15 || frac >= len(pow10) {
		f, err := strconv.ParseFloat(string(value), 64)
		if err != nil || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}

	f := float64(mant) / pow10[frac]
	if neg {
		f = -f
	}
	return f, true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// ParseLine splits one line into a trimmed key and its value. ok is false
// for lines that do not hold exactly one separator, an empty or invalid
// UTF-8 key, or a value that is not a decimal literal.
func ParseLine(line []byte) (key []byte, value float64, ok bool) {
	sep := bytes.IndexByte(line, valueSep)
	if sep == -1 || bytes.IndexByte(line[sep+1:], valueSep) != -1 {
		return nil, 0, false
	}

	key = bytes.TrimSpace(line[:sep])
	if len(key) == 0 || !utf8.Valid(key) {
		return nil, 0, false
	}

	value, ok = ParseValue(bytes.TrimSpace(line[sep+1:]))
	if !ok {
		return nil, 0, false
	}
	return key, value, true
}

// Records yields every valid record in chunk. The key slice aliases chunk and
// is only valid until the next iteration.
func Records(chunk []byte) iter.Seq2[[]byte, float64] {
	return func(yield func([]byte, float64) bool) {
		buf := chunk
		for len(buf) > 0 {
			line := buf
			le := bytes.IndexByte(buf, endLine)
			if le == -1 {
				buf = nil
			} else {
				line = buf[:le]
				buf = buf[le+1:]
			}

			key, value, ok := ParseLine(line)
			if !ok {
				continue
			}
			if !yield(key, value) {
				return
			}
		}
	}
}
