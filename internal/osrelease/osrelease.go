// Package osrelease reads os-release(5) files.
package osrelease

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/conn-castle/kup/internal/messages"
)

// Release holds the KEY=VALUE pairs of an os-release file.
type Release map[string]string

// Read parses the os-release file at path.
// path is usually /etc/os-release; read errors are returned unwrapped.
func Read(path string) (Release, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// Parse reads os-release content. Blank lines and # comments are skipped;
// values may be bare, double-quoted with backslash escapes, or single-quoted.
// content is the raw file content; returns parsed key/value pairs or an error.
func Parse(content string) (Release, error) {
	release := make(Release)
	scanner := bufio.NewScanner(strings.NewReader(content))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		key, value, ok, err := parseLine(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf(messages.OSReleaseLineErrorFmt, lineNo, err)
		}
		if ok {
			release[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf(messages.OSReleaseReadFailedFmt, err)
	}
	return release, nil
}

// PrettyName returns PRETTY_NAME, falling back to NAME and then fallback.
func (r Release) PrettyName(fallback string) string {
	if name := strings.TrimSpace(r["PRETTY_NAME"]); name != "" {
		return name
	}
	if name := strings.TrimSpace(r["NAME"]); name != "" {
		return name
	}
	return fallback
}

func parseLine(line string) (string, string, bool, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", "", false, nil
	}
	idx := strings.Index(trimmed, "=")
	if idx <= 0 {
		return "", "", false, fmt.Errorf(messages.OSReleaseExpectedKeyValue)
	}
	key := strings.TrimSpace(trimmed[:idx])
	value := strings.TrimSpace(trimmed[idx+1:])
	switch {
	case strings.HasPrefix(value, `"`):
		closing := closingDoubleQuote(value)
		if closing < 0 {
			return "", "", false, fmt.Errorf(messages.OSReleaseUnterminatedQuote)
		}
		value = unescape(value[1:closing])
	case strings.HasPrefix(value, `'`):
		closing := strings.IndexByte(value[1:], '\'')
		if closing < 0 {
			return "", "", false, fmt.Errorf(messages.OSReleaseUnterminatedQuote)
		}
		value = value[1 : closing+1]
	}
	return key, value, true, nil
}

// closingDoubleQuote returns the index of the first unescaped quote after value[0].
func closingDoubleQuote(value string) int {
	escaped := false
	for i := 1; i < len(value); i++ {
		if escaped {
			escaped = false
			continue
		}
		switch value[i] {
		case '\\':
			escaped = true
		case '"':
			return i
		}
	}
	return -1
}

// unescape handles the shell escapes os-release allows inside double quotes.
func unescape(escaped string) string {
	var b strings.Builder
	b.Grow(len(escaped))
	for i := 0; i < len(escaped); i++ {
		if escaped[i] == '\\' && i+1 < len(escaped) {
			switch escaped[i+1] {
			case '\\', '"', '$', '`':
				b.WriteByte(escaped[i+1])
				i++
				continue
			}
		}
		b.WriteByte(escaped[i])
	}
	return b.String()
}
