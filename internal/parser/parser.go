// Package parser recovers sender, subject, header block and body from pasted
// email text. Input is not assumed to be well-formed RFC 5322: headers may be
// missing or reflowed, forwarding banners may be present, or the paste may be
// a bare body. Extraction applies ordered heuristics and always returns a
// best-effort result.
package parser

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shineum/mailsift/internal/email"
)

const (
	// senderScanLimit is how many leading lines the bare-address fallback inspects.
	senderScanLimit = 20

	// minBodyLength is the body length, in runes, that counts as recovered
	// content when neither sender nor subject was found.
	minBodyLength = 10

	// blankRunLimit is the shortest run of blank body lines that is collapsed
	// into a single blank line.
	blankRunLimit = 3
)

var (
	senderLine  = regexp.MustCompile(`(?i)^\s*(?:from|sender)\s*:\s*(\S.*)$`)
	subjectLine = regexp.MustCompile(`(?i)^\s*subject\s*:\s*(\S.*)$`)

	// angleAddress matches the addr-spec of a "Name <addr>" mailbox.
	angleAddress = regexp.MustCompile(`<([^<>\s]+@[^<>\s]+)>`)
	bareAddress  = regexp.MustCompile(`[\w.+%-]+@[\w-]+(?:\.[\w-]+)*`)

	// looseAddress is the local@domain.tld shape searched for anywhere in a line
	// when no sender header was present.
	looseAddress = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
)

// Parse extracts the sender, subject, header block and body from raw.
// It never fails: when nothing usable is found the result has Success set to
// false and Error set to the email.ErrNoContent diagnostic, with whatever
// fields were recovered still populated.
func Parse(raw string) *email.ParsedEmail {
	lines := strings.Split(raw, "\n")
	s := scanHeaders(lines)

	at := detectBoundary(s)

	headers := strings.TrimSpace(strings.Join(lines[:at.headerEnd], "\n"))
	body := collapseBlankLines(lines[at.bodyStart:])
	if body == "" {
		// The body is never left empty while the input has content.
		headers = ""
		body = collapseBlankLines(lines)
	}

	sender := s.sender
	if sender == "" {
		sender = findLooseAddress(lines)
	}

	result := &email.ParsedEmail{
		Sender:  sender,
		Subject: s.subject,
		Headers: headers,
		Body:    body,
	}
	result.Success = result.Sender != "" ||
		result.Subject != "" ||
		utf8.RuneCountInString(result.Body) > minBodyLength
	if !result.Success {
		result.Error = email.ErrNoContent.Error()
	}

	return result
}

// headerScan records the first sender and subject header lines of a paste.
type headerScan struct {
	lines []string

	sender   string
	senderAt int // -1 when no sender header was found

	subject   string
	subjectAt int // -1 when no subject header was found
}

// scanHeaders walks lines top to bottom. The first From/Sender line and the
// first Subject line win; later occurrences are ignored.
func scanHeaders(lines []string) *headerScan {
	s := &headerScan{lines: lines, senderAt: -1, subjectAt: -1}

	for i, line := range lines {
		if s.senderAt >= 0 && s.subjectAt >= 0 {
			break
		}

		if s.senderAt < 0 {
			if m := senderLine.FindStringSubmatch(line); m != nil {
				s.sender = normalizeSender(m[1])
				s.senderAt = i
				continue
			}
		}

		if s.subjectAt < 0 {
			if m := subjectLine.FindStringSubmatch(line); m != nil {
				s.subject = foldSubject(strings.TrimSpace(m[1]), lines[i+1:])
				s.subjectAt = i
			}
		}
	}

	return s
}

// normalizeSender reduces a From/Sender header value to a bare address when
// one can be found, falling back to the trimmed value itself.
func normalizeSender(value string) string {
	value = strings.TrimSpace(value)

	if addr, err := mail.ParseAddress(value); err == nil && addr.Address != "" {
		return addr.Address
	}
	if m := angleAddress.FindStringSubmatch(value); m != nil {
		return m[1]
	}
	if addr := bareAddress.FindString(value); addr != "" {
		return addr
	}
	return value
}

// foldSubject appends the indented continuation lines that directly follow
// the subject header, joined by single spaces.
func foldSubject(first string, rest []string) string {
	parts := []string{first}
	for _, line := range rest {
		if isBlank(line) || !isContinuation(line) {
			break
		}
		parts = append(parts, strings.TrimSpace(line))
	}
	return strings.Join(parts, " ")
}

// collapseBlankLines joins lines, replacing every run of blankRunLimit or more
// blank lines with a single empty line, and trims the result.
func collapseBlankLines(lines []string) string {
	out := make([]string, 0, len(lines))
	runStart := -1

	flush := func(end int) {
		if runStart < 0 {
			return
		}
		if end-runStart >= blankRunLimit {
			out = append(out, "")
		} else {
			out = append(out, lines[runStart:end]...)
		}
		runStart = -1
	}

	for i, line := range lines {
		if isBlank(line) {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		flush(i)
		out = append(out, line)
	}
	flush(len(lines))

	return strings.TrimSpace(strings.Join(out, "\n"))
}

// findLooseAddress returns the first address-shaped substring within the
// first senderScanLimit lines.
func findLooseAddress(lines []string) string {
	for i, line := range lines {
		if i >= senderScanLimit {
			break
		}
		if addr := looseAddress.FindString(line); addr != "" {
			return addr
		}
	}
	return ""
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// isContinuation reports whether line is a folded header continuation.
func isContinuation(line string) bool {
	return line != "" && (line[0] == ' ' || line[0] == '\t')
}
