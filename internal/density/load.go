package density

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrParse is returned for malformed sample files.
var ErrParse = errors.New("parse error")

// Load reads whitespace-separated "x y z" lines. Blank lines and anything
// after a '#' are ignored.
func Load(r io.Reader) (x, y, z []float64, err error) {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return nil, nil, nil, fmt.Errorf("%w: line %d: want 3 columns, got %d", ErrParse, line, len(fields))
		}

		var vals [3]float64
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("%w: line %d: %w", ErrParse, line, err)
			}
			vals[i] = v
		}
		x = append(x, vals[0])
		y = append(y, vals[1])
		z = append(z, vals[2])
	}
	if err := sc.Err(); err != nil {
		return nil, nil, nil, err
	}
	return x, y, z, nil
}
