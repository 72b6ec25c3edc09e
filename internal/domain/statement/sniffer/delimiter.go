package sniffer

import (
	"strings"
)

// maxProbeLines bounds how far DetectDelimiter reads into a file.
const maxProbeLines = 20

// DetectDelimiter picks the field delimiter of a CSV/TSV export from the line
// with the most separators among the first lines. It returns ',' when nothing
// better is found.
func DetectDelimiter(data []byte) rune {
	lines := strings.Split(string(data), "\n")

	best, bestCount := ',', 0
	for i, line := range lines {
		if i >= maxProbeLines {
			break
		}
		line = CleanLine(line, i == 0)
		if line == "" {
			continue
		}
		if d, count := detectDelimiter(line); count > bestCount {
			best, bestCount = d, count
		}
	}
	return best
}

// CleanLine strips the trailing CR, surrounding whitespace and, on the first
// line, a UTF-8 BOM.
func CleanLine(line string, firstLine bool) string {
	line = strings.TrimRight(line, "\r")
	if firstLine {
		line = strings.TrimPrefix(line, "\uFEFF")
	}
	return strings.TrimSpace(line)
}

func detectDelimiter(line string) (rune, int) {
	delimiters := []rune{';', '\t', ',', '|'}
	bestDelimiter := rune(0)
	bestCount := 0
	for _, d := range delimiters {
		count := strings.Count(line, string(d))
		if count > bestCount {
			bestCount = count
			bestDelimiter = d
		}
	}
	return bestDelimiter, bestCount
}
