package platforms

import "strings"

const (
	topicSuffix   = " - Topic"
	unknownAuthor = "Unknown"
	officialMark  = "offic"
)

// bracket slots tracked by [CleanTitle]
const (
	paren = iota
	square
)

// CleanTitle removes bracketed spans such as "(Official Video)" or "[audio officiel]" from a video title.
//
// One opener position is tracked per bracket kind; a new opener replaces the previous one of the same kind.
// When a closer matches a tracked opener and the span contains "offic" in any case, the span and one space
// in front of it are dropped. Nested brackets of the same kind are not balanced.
func CleanTitle(title string) string {
	out := make([]rune, 0, len(title))
	open := [2]int{-1, -1}

	for _, r := range title {
		var slot int
		switch r {
		case '(', '[':
			slot = paren
			if r == '[' {
				slot = square
			}
			open[slot] = len(out)
			out = append(out, r)
			continue
		case ')':
			slot = paren
		case ']':
			slot = square
		default:
			out = append(out, r)
			continue
		}

		start := open[slot]
		open[slot] = -1
		if start < 0 || !strings.Contains(strings.ToLower(string(out[start:])), officialMark) {
			out = append(out, r)
			continue
		}

		if start > 0 && out[start-1] == ' ' {
			start--
		}
		out = out[:start]
		for i := range open {
			if open[i] >= len(out) {
				open[i] = -1
			}
		}
	}

	return string(out)
}

// CleanAuthor maps a channel title onto an artist name.
func CleanAuthor(channel *string) string {
	if channel == nil || *channel == "" {
		return unknownAuthor
	}
	return strings.TrimSuffix(*channel, topicSuffix)
}
