// Package logparse extracts the reported run time from simulation logs.
package logparse

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"

	"github.com/patrickspencer/simstats/internal/stats"
)

// DefaultPattern matches lines like "Run time: 1 hour 2 minutes 3 seconds".
const DefaultPattern = `Run time:\s+(\d+)\s+hours?\s+(\d+)\s+minutes?\s+(\d+)\s+seconds?`

// ErrOutOfRange is returned for a run time too large to count in seconds.
var ErrOutOfRange = errors.New("run time out of range")

// Parser finds the first run-time line in a log.
type Parser struct {
	re *regexp.Regexp
}

// New returns a Parser using DefaultPattern.
func New() *Parser {
	return &Parser{re: regexp.MustCompile(DefaultPattern)}
}

// ParseFile scans the file at path. ok is false when no line matches.
func (p *Parser) ParseFile(path string) (d stats.Duration, ok bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return stats.Duration{}, false, err
	}
	defer f.Close()
	return p.ParseReader(f)
}

// ParseReader reads r line by line and returns the first match. Lines may
// be of any length.
func (p *Parser) ParseReader(r io.Reader) (stats.Duration, bool, error) {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if m := p.re.FindStringSubmatch(line); m != nil {
			d, perr := toDuration(m)
			return d, perr == nil, perr
		}
		if err == io.EOF {
			return stats.Duration{}, false, nil
		}
		if err != nil {
			return stats.Duration{}, false, err
		}
	}
}

func toDuration(m []string) (stats.Duration, error) {
	var vals [3]int64
	for i := range vals {
		v, err := strconv.ParseInt(m[i+1], 10, 64)
		if err != nil {
			return stats.Duration{}, fmt.Errorf("%w: %q", ErrOutOfRange, m[0])
		}
		vals[i] = v
	}
	h, mins, s := vals[0], vals[1], vals[2]
	// 3600h + 60m + s must fit in an int64.
	if h > math.MaxInt64/3600 || mins > math.MaxInt64/60 || 3600*h > math.MaxInt64-60*mins-s {
		return stats.Duration{}, fmt.Errorf("%w: %q", ErrOutOfRange, m[0])
	}
	return stats.Duration{Hours: h, Minutes: mins, Seconds: s}, nil
}
