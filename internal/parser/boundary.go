package parser

import "regexp"

// headerScanLimit caps how many lines firstNonHeaderLine inspects.
const headerScanLimit = 50

var (
	// knownHeaderLine matches header names that only appear in a header block.
	knownHeaderLine = regexp.MustCompile(`(?i)^\s*(?:received|dkim|spf|return-path|message-id|date|to|cc|reply-to|authentication-results|mime-version|content-type|x-[\w-]+)\b[\w-]*\s*:`)

	// headerShapedLine matches "Name:" with a word-and-hyphen field name.
	headerShapedLine = regexp.MustCompile(`^\s*[\w-]+:`)

	bannerLines = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*-{2,}\s*original message\s*-{2,}`),
		regexp.MustCompile(`(?i)^\s*-{2,}\s*forwarded message\s*-{2,}`),
		regexp.MustCompile(`(?i)^\s*on\s.+\swrote:\s*$`),
		regexp.MustCompile(`(?i)^\s*begin forwarded message:`),
	}
)

// split marks where the header block ends and the body begins: lines
// [0, headerEnd) are headers and lines [bodyStart, len) are the body.
// headerEnd never exceeds bodyStart.
type split struct {
	headerEnd int
	bodyStart int
}

// boundaryStrategy proposes a split, reporting false when its evidence is absent.
type boundaryStrategy func(s *headerScan) (split, bool)

// boundaryStrategies are tried in order, strongest evidence first.
var boundaryStrategies = []boundaryStrategy{
	blankLineAfterHeaders,
	firstNonHeaderLine,
	forwardingBanner,
	afterSubjectLine,
}

// detectBoundary returns the first split a strategy proposes. When none
// applies, the whole input is body and there is no header block.
func detectBoundary(s *headerScan) split {
	for _, strategy := range boundaryStrategies {
		if at, ok := strategy(s); ok {
			return at
		}
	}
	return split{}
}

// blankLineAfterHeaders splits at the first blank line that follows a
// recognized header. Blank lines before any header do not end the block.
func blankLineAfterHeaders(s *headerScan) (split, bool) {
	seen := false
	for i, line := range s.lines {
		if isBlank(line) {
			if seen {
				return split{headerEnd: i, bodyStart: i + 1}, true
			}
			continue
		}
		if i == s.senderAt || i == s.subjectAt || knownHeaderLine.MatchString(line) {
			seen = true
		}
	}
	return split{}, false
}

// firstNonHeaderLine splits at the earliest line, within headerScanLimit
// lines, that is neither blank nor header-shaped. At least one header-shaped
// line must come before it.
func firstNonHeaderLine(s *headerScan) (split, bool) {
	sawHeader := false
	for i, line := range s.lines {
		if i >= headerScanLimit {
			break
		}
		switch {
		case isBlank(line):
		case headerShapedLine.MatchString(line):
			sawHeader = true
		case sawHeader && isContinuation(line):
		default:
			if !sawHeader {
				return split{}, false
			}
			return split{headerEnd: i, bodyStart: i}, true
		}
	}
	return split{}, false
}

// forwardingBanner starts the body after the first forward or reply banner.
// Nothing before the banner is treated as headers.
func forwardingBanner(s *headerScan) (split, bool) {
	for i, line := range s.lines {
		for _, banner := range bannerLines {
			if banner.MatchString(line) {
				return split{headerEnd: 0, bodyStart: i + 1}, true
			}
		}
	}
	return split{}, false
}

// afterSubjectLine starts the body on the line after the subject header.
func afterSubjectLine(s *headerScan) (split, bool) {
	if s.subjectAt < 0 {
		return split{}, false
	}
	return split{headerEnd: s.subjectAt + 1, bodyStart: s.subjectAt + 1}, true
}
