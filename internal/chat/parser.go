package chat

import (
	"bufio"
	"io"
	"regexp"
	"strings"
	"time"
)

// headerPattern matches the start of a regular exported message:
// [DD.MM.YYYY, HH:MM:SS] Author: Text
var headerPattern = regexp.MustCompile(`^\[(\d{2}\.\d{2}\.\d{4}),\s*(\d{2}:\d{2}:\d{2})\]\s*([^:]+):\s*(.*)$`)

// systemPattern is a more permissive variant for system and media notices,
// tolerating stray invisible characters and whitespace around the separators.
var systemPattern = regexp.MustCompile(`^[\x{200E}\x{200F}\s]*\[(\d{2}\.\d{2}\.\d{4}),\s*(\d{2}:\d{2}:\d{2})\]\s*([^:]+):\s*[\x{200E}\x{200F}\s]*(.*)$`)

// timestampLayout is the day-month-year, zero-padded 24-hour format used by
// the export tool.
const timestampLayout = "02.01.2006 15:04:05"

const maxLineSize = 1024 * 1024

// ParseReader reads transcript lines from r and returns the parsed messages in
// file order. The only error it can return is a read failure; malformed
// content never fails, it degrades to continuation text or is discarded.
func ParseReader(r io.Reader) ([]Message, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ParseLines(lines), nil
}

// ParseLines converts physical transcript lines into an ordered sequence of
// Message records. A line matching the header pattern starts a new message;
// anything else continues the message currently being assembled, joined by a
// single space. Lines that are blank after invisible-character stripping are
// skipped. The output order is file order, which is not guaranteed to be
// sorted by timestamp.
func ParseLines(lines []string) []Message {
	var (
		messages []Message
		current  *Message
		parts    []string
	)

	finalize := func() {
		if current == nil {
			return
		}
		current.Text = strings.TrimSpace(strings.Join(parts, " "))
		messages = append(messages, *current)
		current = nil
		parts = nil
	}

	for _, raw := range lines {
		line := strings.TrimSpace(stripInvisible(raw))
		if line == "" {
			continue
		}

		if m := headerPattern.FindStringSubmatch(line); m != nil {
			ts, err := time.Parse(timestampLayout, m[1]+" "+m[2])
			if err != nil {
				// Header-shaped but not a valid calendar date: treat it
				// as continuation text of the message in progress.
				if current != nil {
					parts = append(parts, line)
				}
				continue
			}

			finalize()

			msg := NewMessage(ts, strings.TrimSpace(m[3]), strings.TrimSpace(m[4]))
			current = &msg
			parts = nil
			if msg.Text != "" {
				parts = append(parts, msg.Text)
			}
			continue
		}

		if current != nil {
			parts = append(parts, line)
			continue
		}

		// No message in progress: the permissive pattern may still recover a
		// system or media notice. Anything else is discarded.
		if m := systemPattern.FindStringSubmatch(line); m != nil {
			ts, err := time.Parse(timestampLayout, m[1]+" "+m[2])
			if err != nil {
				continue
			}
			text := strings.TrimSpace(m[4])
			if text == "" {
				text = line
			}
			msg := NewMessage(ts, strings.TrimSpace(m[3]), text)
			current = &msg
			parts = append(parts, text)
		}
	}

	finalize()
	return messages
}

// stripInvisible removes leading bidi and invisible control characters
// (U+200E, U+200F, U+202A-U+202E, U+2066-U+2069) that export tools prepend to
// some lines.
func stripInvisible(s string) string {
	return strings.TrimLeftFunc(s, func(r rune) bool {
		switch {
		case r == '‎' || r == '‏':
			return true
		case r >= '‪' && r <= '‮':
			return true
		case r >= '⁦' && r <= '⁩':
			return true
		}
		return false
	})
}
