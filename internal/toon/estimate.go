package toon

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/threadtoon/pkg/models"
)

// charsPerToken is the rough chars-to-tokens conversion used throughout
// the estimators. An approximation, not a tokenizer.
const charsPerToken = 4

// Per-record metadata overhead assumed for the un-serialized baseline.
const (
	threadMetaChars  = 50
	commentMetaChars = 30
)

// Savings compares the estimated token cost of the raw thread content
// against the serialized output.
type Savings struct {
	OriginalTokens int
	ToonTokens     int
	SavingsPercent int
}

// EstimateSavings approximates the token reduction achieved by the TOON
// serialization of threads. Percentages are rounded; callers should treat
// them as estimates.
func EstimateSavings(threads []models.Thread, toonContent string) Savings {
	originalChars := 0
	for _, t := range threads {
		originalChars += len(t.Title) + threadMetaChars
		originalChars += len(t.Selftext)
		originalChars += commentChars(t.Comments)
	}

	originalTokens := ceilDiv(originalChars, charsPerToken)
	toonTokens := ceilDiv(len(toonContent), charsPerToken)

	savings := 0
	if originalTokens > 0 {
		savings = int(math.Round(float64(originalTokens-toonTokens) / float64(originalTokens) * 100))
	}

	return Savings{
		OriginalTokens: originalTokens,
		ToonTokens:     toonTokens,
		SavingsPercent: savings,
	}
}

// EstimateThreadTokens approximates the token cost of one thread's title,
// body and full comment tree.
func EstimateThreadTokens(t models.Thread) int {
	chars := len(t.Title) + len(t.Selftext)
	chars += bodyChars(t.Comments)
	return ceilDiv(chars, charsPerToken)
}

func commentChars(comments []models.Comment) int {
	sum := 0
	for _, c := range comments {
		sum += len(c.Body) + commentMetaChars + commentChars(c.Replies)
	}
	return sum
}

func bodyChars(comments []models.Comment) int {
	sum := 0
	for _, c := range comments {
		sum += len(c.Body) + bodyChars(c.Replies)
	}
	return sum
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Filename derives the export artifact name from the query:
// <slugified-query>-<date>.toon, slug capped at 30 characters.
func Filename(query string, now time.Time) string {
	slug := strings.ToLower(query)
	slug = slugStrip.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 30 {
		slug = slug[:30]
	}
	return slug + "-" + now.UTC().Format("2006-01-02") + ".toon"
}
