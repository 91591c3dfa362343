package services

import (
	"regexp"
	"strconv"
	"strings"
)

const defaultConfidence = 0.8

var (
	confidencePattern   = regexp.MustCompile(`(?i)confidence[:\s]*(\d+)%`)
	numberedLinePattern = regexp.MustCompile(`^\d+\.`)
)

// extractSection returns the block of text that starts at the first line
// mentioning keyword and runs until the next numbered line that does not.
func extractSection(text, keyword string) string {
	lines := strings.Split(text, "\n")
	keyword = strings.ToLower(keyword)

	start := -1
	for i, line := range lines {
		if strings.Contains(strings.ToLower(line), keyword) {
			start = i
			break
		}
	}
	if start == -1 {
		return ""
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if numberedLinePattern.MatchString(lines[i]) && !strings.Contains(strings.ToLower(lines[i]), keyword) {
			end = i
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines[start:end], "\n"))
}

// extractConfidence reads the first "confidence: NN%" as a fraction
func extractConfidence(text string) float64 {
	m := confidencePattern.FindStringSubmatch(text)
	if m == nil {
		return defaultConfidence
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return defaultConfidence
	}
	return float64(n) / 100
}
