// Package stats converts simulation run times to seconds and summarizes them.
package stats

import "errors"

// ErrNoDurations is returned by Aggregate when there is nothing to summarize.
var ErrNoDurations = errors.New("no durations to aggregate")

// Duration is a run time as reported in a simulation log.
type Duration struct {
	Hours   int64
	Minutes int64
	Seconds int64
}

// TotalSeconds converts d to seconds.
func (d Duration) TotalSeconds() int64 {
	return 3600*d.Hours + 60*d.Minutes + d.Seconds
}

// Summary holds the minimum, maximum and mean of a set of durations, in seconds.
type Summary struct {
	Minimum int64
	Maximum int64
	Average float64
	Count   int
}

// Aggregate summarizes durations. It returns ErrNoDurations for an empty slice.
func Aggregate(durations []Duration) (Summary, error) {
	if len(durations) == 0 {
		return Summary{}, ErrNoDurations
	}

	first := durations[0].TotalSeconds()
	s := Summary{Minimum: first, Maximum: first, Count: len(durations)}
	// Summed as float64 so many long runs cannot overflow.
	var sum float64
	for _, d := range durations {
		secs := d.TotalSeconds()
		if secs < s.Minimum {
			s.Minimum = secs
		}
		if secs > s.Maximum {
			s.Maximum = secs
		}
		sum += float64(secs)
	}
	s.Average = sum / float64(len(durations))
	return s, nil
}
