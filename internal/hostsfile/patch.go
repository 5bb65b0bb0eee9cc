package hostsfile

import "strings"

// Sentinel lines delimiting the managed section. These are compared after
// trimming, so indented markers in a hand-edited file still count.
const (
	StartMarker = "## docker-hosts-sync-start"
	EndMarker   = "## docker-hosts-sync-end"
)

// Patch splices the managed section into a file's lines. Lines outside the
// section are preserved verbatim and in order.
//
// With a valid marker pair, the section (markers included) is replaced by the
// new entries, or removed entirely when entries is empty. Without one, the
// entries are appended at the end behind a single blank separator line; an
// empty entry set leaves the file untouched.
func Patch(lines []string, entries []string) []string {
	startIdx, endIdx := -1, -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if startIdx < 0 && trimmed == StartMarker {
			startIdx = i
		}
		if endIdx < 0 && trimmed == EndMarker {
			endIdx = i
		}
	}

	var out []string

	if startIdx >= 0 && endIdx >= 0 && startIdx < endIdx {
		out = append(out, lines[:startIdx]...)
		if len(entries) > 0 {
			out = append(out, StartMarker)
			out = append(out, entries...)
			out = append(out, EndMarker)
		}
		out = append(out, lines[endIdx+1:]...)
		return out
	}

	out = append(out, lines...)
	if len(entries) > 0 {
		if len(out) > 0 && out[len(out)-1] != "" {
			out = append(out, "")
		}
		out = append(out, StartMarker)
		out = append(out, entries...)
		out = append(out, EndMarker)
	}
	return out
}

// Serialize joins lines with exactly one trailing newline.
func Serialize(lines []string) string {
	return strings.Join(lines, "\n") + "\n"
}

// SplitLines is the inverse of Serialize for file content read from disk.
func SplitLines(content string) []string {
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}
