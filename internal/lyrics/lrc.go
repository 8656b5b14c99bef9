// Package lyrics parses time-synced LRC lyrics.
package lyrics

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

var timeTag = regexp.MustCompile(`\[(\d{2}):(\d{2})\.(\d{2,3})]`)

// Line is one timed lyric line.
type Line struct {
	Time time.Duration `json:"time"`
	Text string        `json:"text"`
}

// Lyrics are lines sorted by time.
type Lyrics []Line

// ParseLRC reads "[mm:ss.xx] text" lines. Lines without a time tag are
// skipped. Only the first tag of a line is used.
func ParseLRC(text string) Lyrics {
	var out Lyrics
	for _, raw := range strings.Split(text, "\n") {
		loc := timeTag.FindStringSubmatchIndex(raw)
		if loc == nil {
			continue
		}
		minutes, _ := strconv.Atoi(raw[loc[2]:loc[3]])
		seconds, _ := strconv.Atoi(raw[loc[4]:loc[5]])
		frac := raw[loc[6]:loc[7]]
		millis, _ := strconv.Atoi(frac + strings.Repeat("0", 3-len(frac)))

		out = append(out, Line{
			Time: time.Duration(minutes)*time.Minute +
				time.Duration(seconds)*time.Second +
				time.Duration(millis)*time.Millisecond,
			Text: strings.TrimSpace(raw[:loc[0]] + raw[loc[1]:]),
		})
	}
	slices.SortStableFunc(out, func(a, b Line) int { return cmp.Compare(a.Time, b.Time) })
	return out
}

// At returns the index of the line active at t, or -1 before the first.
func (l Lyrics) At(t time.Duration) int {
	i, found := slices.BinarySearchFunc(l, t, func(line Line, t time.Duration) int {
		return cmp.Compare(line.Time, t)
	})
	if found {
		// Several lines may share a timestamp; the last one wins.
		for i+1 < len(l) && l[i+1].Time == t {
			i++
		}
		return i
	}
	return i - 1
}
