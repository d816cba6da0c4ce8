package toon

import (
	"regexp"
	"strings"
)

// elision marks truncated middles of long bodies.
const elision = " [...] "

var (
	excessNewlines  = regexp.MustCompile(`\n{3,}`)
	excessSpacing   = regexp.MustCompile(`[ \t]{2,}`)
	boldMarkup      = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	underlineMarkup = regexp.MustCompile(`__([^_]+)__`)
	italicStar      = regexp.MustCompile(`\*([^*]+)\*`)
	italicUnder     = regexp.MustCompile(`_([^_]+)_`)
	strikeMarkup    = regexp.MustCompile(`~~([^~]+)~~`)
)

// Truncation thresholds per level: bodies longer than the limit are cut to
// a head plus tail excerpt around an elision marker.
var truncation = map[Level]struct{ limit, head, tail int }{
	LevelAggressive: {limit: 500, head: 400, tail: 80},
	LevelBalanced:   {limit: 800, head: 650, tail: 100},
	LevelMaximum:    {limit: 1500, head: 1200, tail: 200},
}

// compressContent applies the lossy text pipeline: phrase substitutions,
// whitespace collapsing, then level-specific markup stripping and
// truncation.
func compressContent(text string, opts Options) string {
	if text == "" {
		return ""
	}

	compressed := text
	for _, sub := range opts.Substitutions {
		compressed = sub.Pattern.ReplaceAllString(compressed, sub.Token)
	}

	compressed = excessNewlines.ReplaceAllString(compressed, "\n\n")
	compressed = excessSpacing.ReplaceAllString(compressed, " ")

	switch opts.Level {
	case LevelAggressive:
		compressed = boldMarkup.ReplaceAllString(compressed, "$1")
		compressed = underlineMarkup.ReplaceAllString(compressed, "$1")
		compressed = italicStar.ReplaceAllString(compressed, "$1")
		compressed = italicUnder.ReplaceAllString(compressed, "$1")
		compressed = strikeMarkup.ReplaceAllString(compressed, "$1")
	case LevelBalanced:
		compressed = boldMarkup.ReplaceAllString(compressed, "$1")
	}

	compressed = truncate(compressed, opts.Level)

	return strings.TrimSpace(compressed)
}

// truncate cuts bodies over the level's limit to head + elision + tail,
// counted in runes so multi-byte text is never split mid-character.
func truncate(text string, level Level) string {
	t, ok := truncation[level]
	if !ok {
		t = truncation[LevelBalanced]
	}

	runes := []rune(text)
	if len(runes) <= t.limit {
		return text
	}
	return string(runes[:t.head]) + elision + string(runes[len(runes)-t.tail:])
}
