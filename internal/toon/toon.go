package toon

import (
	"fmt"
	"strings"
	"time"

	"github.com/threadtoon/pkg/models"
)

// Per-thread caps on serialized comments.
const (
	maxTopLevelComments = 20
	maxRepliesPerNode   = 5
)

// Generate serializes the selected threads into the TOON text format. It
// is total over its input: missing fields degrade gracefully and never
// fail. Output is deterministic for fixed Options.Now.
func Generate(threads []models.Thread, query string, opts Options) string {
	var subreddits []string
	seen := map[string]struct{}{}
	for _, t := range threads {
		if _, ok := seen[t.Subreddit]; ok {
			continue
		}
		seen[t.Subreddit] = struct{}{}
		subreddits = append(subreddits, t.Subreddit)
	}

	totalComments := 0
	filtered := make([][]models.Comment, len(threads))
	for i, t := range threads {
		filtered[i] = FilterComments(t.Comments, opts, 0)
		totalComments += CountComments(t.Comments, opts)
	}

	var b strings.Builder
	b.WriteString(header())
	b.WriteString(metadata(query, subreddits, len(threads), totalComments, opts))

	for i, t := range threads {
		writeThreadBlock(&b, t, filtered[i], i+1, opts)
	}

	b.WriteString(footer(opts))
	return b.String()
}

// FilterComments prunes a comment tree the same way serialization walks
// it: bot authors out, below-threshold comments out unless they are
// top-level or carry an above-threshold child, levels beyond MaxDepth
// truncated, and the per-node caps applied.
func FilterComments(comments []models.Comment, opts Options, depth int) []models.Comment {
	if depth > opts.MaxDepth {
		return nil
	}

	limit := maxRepliesPerNode
	if depth == 0 {
		limit = maxTopLevelComments
	}

	var out []models.Comment
	for _, c := range comments {
		if len(out) >= limit {
			break
		}
		if opts.isBot(c.Author) {
			continue
		}
		if c.Score < opts.MinScore {
			if depth > 0 {
				continue
			}
			if !anyAboveThreshold(c.Replies, opts.MinScore) {
				continue
			}
		}
		c.Replies = FilterComments(c.Replies, opts, depth+1)
		out = append(out, c)
	}
	return out
}

// CountComments reports how many comment nodes survive the serialization
// filters. It counts the same pruned tree the serializer walks, so count
// and output can never drift.
func CountComments(comments []models.Comment, opts Options) int {
	return countNodes(FilterComments(comments, opts, 0))
}

func countNodes(comments []models.Comment) int {
	n := 0
	for _, c := range comments {
		n += 1 + countNodes(c.Replies)
	}
	return n
}

func anyAboveThreshold(comments []models.Comment, minScore int) bool {
	for _, c := range comments {
		if c.Score >= minScore {
			return true
		}
	}
	return false
}

func header() string {
	return `/*TOON v1.0 - Token Optimized Object Notation
Read instructions:
- @META = metadata, @T = thread, @C = comment
- Format @C[T.C.R] where T=thread#, C=comment#, R=reply depth
- ts:2d = "2 days ago", up:892 = 892 upvotes
- ~ = deleted, - = removed
- Numbered structure shows hierarchy (no indent needed)
*/

`
}

func metadata(query string, subreddits []string, threadCount, commentCount int, opts Options) string {
	quoted := make([]string, len(subreddits))
	for i, s := range subreddits {
		quoted[i] = `"` + s + `"`
	}
	date := opts.now().UTC().Format("2006-01-02")
	return fmt.Sprintf("@META\nq:\"%s\"\nsr:[%s]\ndt:%s\ntc:%d|cc:%d\n\n",
		cleanText(query), strings.Join(quoted, ","), date, threadCount, commentCount)
}

func writeThreadBlock(b *strings.Builder, t models.Thread, comments []models.Comment, threadNum int, opts Options) {
	fmt.Fprintf(b, "@T%d\n", threadNum)
	fmt.Fprintf(b, "t:\"%s\"\n", cleanText(t.Title))
	fmt.Fprintf(b, "sr:%s|ts:%s|up:%d", t.Subreddit, abbreviateTime(t.CreatedUTC, opts.now()), t.Score)
	if t.Awards > 0 {
		fmt.Fprintf(b, "|aw:%d", t.Awards)
	}
	b.WriteString("\n\n")

	if t.Selftext != "" {
		if content := compressContent(t.Selftext, opts); content != "" {
			b.WriteString(content)
			b.WriteString("\n\n")
		}
	}

	for i, c := range comments {
		writeCommentBlock(b, c, threadNum, i+1, 0, opts)
	}

	b.WriteString("\n")
}

// writeCommentBlock emits one comment and its surviving replies, numbered
// thread#.comment# with the reply depth appended for nested levels.
func writeCommentBlock(b *strings.Builder, c models.Comment, threadNum, commentNum, depth int, opts Options) {
	fmt.Fprintf(b, "@C%d.%d", threadNum, commentNum)
	if depth > 0 {
		fmt.Fprintf(b, ".%d", depth)
	}
	fmt.Fprintf(b, "|u:%s|up:%d", c.Author, c.Score)
	if c.CreatedUTC != 0 {
		fmt.Fprintf(b, "|ts:%s", abbreviateTime(c.CreatedUTC, opts.now()))
	}
	b.WriteString("\n")

	if content := compressContent(c.Body, opts); content != "" {
		b.WriteString(content)
		b.WriteString("\n\n")
	}

	for _, reply := range c.Replies {
		writeCommentBlock(b, reply, threadNum, commentNum, depth+1, opts)
	}
}

func footer(opts Options) string {
	return fmt.Sprintf("@END\ngen:threadtoon|ts:%s\n", opts.now().UTC().Format("2006-01-02T15:04:05Z"))
}

// abbreviateTime renders an epoch-seconds timestamp as a compact age
// relative to now: 5m, 3h, 2d, 1w, 4mo.
func abbreviateTime(createdUTC float64, now time.Time) string {
	diff := float64(now.Unix()) - createdUTC
	hours := diff / 3600

	switch {
	case hours < 1:
		mins := int(diff / 60)
		if mins < 1 {
			mins = 1
		}
		return fmt.Sprintf("%dm", mins)
	case hours < 24:
		return fmt.Sprintf("%dh", int(hours))
	case hours < 168:
		return fmt.Sprintf("%dd", int(hours/24))
	case hours < 720:
		return fmt.Sprintf("%dw", int(hours/168))
	default:
		return fmt.Sprintf("%dmo", int(hours/720))
	}
}

// cleanText flattens a string for inline metadata fields.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, `"`, "'")
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.TrimSpace(text)
}
