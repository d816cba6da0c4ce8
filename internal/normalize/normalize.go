package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/threadtoon/internal/extract"
	"github.com/threadtoon/pkg/models"
)

// ErrUnusableResponse marks a response that matched no known shape. It is
// always handled inside the orchestrator (the candidate loses its race or
// sequential slot) and never reaches the caller directly.
var ErrUnusableResponse = errors.New("unusable response")

// Kind distinguishes the two canonical payload shapes.
type Kind int

const (
	// KindListing is a forum content list (search results, front page).
	KindListing Kind = iota
	// KindDetail is a single thread with its comment tree.
	KindDetail
)

// Result is the canonical payload every route must produce before it can
// win a race: either a listing of threads or one thread with comments.
type Result struct {
	Kind    Kind
	Threads []models.Thread
	Thread  *models.Thread
}

// minHTMLLength is the shortest body worth handing to the HTML extractor;
// real listing pages are never this small, block pages often are.
const minHTMLLength = 500

// denialPhrases identify block/denial pages that must be rejected before
// any extraction attempt.
var denialPhrases = []string{
	"access denied",
	"you've been blocked",
	"request blocked",
	"just a moment",
	"attention required",
	"verify you are a human",
}

// Normalize converts a raw response body into the canonical payload.
// Decision order: JSON (with one-level envelope unwrap and a repair pass),
// then the flat posts shape used by alternate frontends, then HTML
// extraction. Anything else fails with ErrUnusableResponse.
func Normalize(body []byte, contentType, source string) (*Result, error) {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return nil, fmt.Errorf("%w: empty body from %s", ErrUnusableResponse, source)
	}

	switch {
	case isJSON(contentType, text):
		return normalizeJSON(text, source)
	case isHTML(contentType, text):
		return normalizeHTML(text, source)
	}

	return nil, fmt.Errorf("%w: unrecognized content type %q from %s", ErrUnusableResponse, contentType, source)
}

func isJSON(contentType, text string) bool {
	if strings.Contains(contentType, "json") {
		return true
	}
	// Some intermediaries relay JSON under text/plain or no content type.
	return !strings.Contains(contentType, "html") &&
		(strings.HasPrefix(text, "{") || strings.HasPrefix(text, "["))
}

func isHTML(contentType, text string) bool {
	return strings.Contains(contentType, "html") ||
		strings.HasPrefix(text, "<") ||
		strings.Contains(text, "<!DOCTYPE")
}

func normalizeJSON(text, source string) (*Result, error) {
	if !gjson.Valid(text) {
		// Proxies truncate and mangle bodies; try a repair pass before
		// giving up on the candidate.
		repaired, err := jsonrepair.JSONRepair(text)
		if err != nil || !gjson.Valid(repaired) {
			return nil, fmt.Errorf("%w: invalid JSON from %s", ErrUnusableResponse, source)
		}
		log.Debug().Str("source", source).Msg("salvaged malformed JSON body")
		text = repaired
	}

	val := gjson.Parse(text)

	// Wrapped envelope (e.g. an aggregating proxy's {"contents": "..."}):
	// unwrap exactly one level.
	if contents := val.Get("contents"); contents.Exists() {
		inner := contents.Raw
		if contents.Type == gjson.String {
			inner = contents.String()
		}
		if !gjson.Valid(inner) {
			repaired, err := jsonrepair.JSONRepair(inner)
			if err != nil || !gjson.Valid(repaired) {
				return nil, fmt.Errorf("%w: unparseable envelope contents from %s", ErrUnusableResponse, source)
			}
			inner = repaired
		}
		val = gjson.Parse(inner)
	}

	// Detail shape: [item-with-metadata, comment-tree-container].
	if val.IsArray() {
		arr := val.Array()
		if len(arr) < 2 {
			return nil, fmt.Errorf("%w: detail array from %s has %d elements", ErrUnusableResponse, source, len(arr))
		}
		thread, err := ParseDetail(arr[0], arr[1], models.MaxCommentDepth)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnusableResponse, err)
		}
		return &Result{Kind: KindDetail, Thread: thread}, nil
	}

	// Canonical listing shape: a typed-children container.
	if children := val.Get("data.children"); children.IsArray() {
		return &Result{Kind: KindListing, Threads: ParseThreads(children)}, nil
	}

	// Alternate mirror shape: a flat posts list re-mapped into the
	// canonical records.
	if posts := val.Get("posts"); posts.IsArray() {
		return &Result{Kind: KindListing, Threads: parsePostsList(posts)}, nil
	}

	return nil, fmt.Errorf("%w: JSON from %s matches no known shape", ErrUnusableResponse, source)
}

func normalizeHTML(text, source string) (*Result, error) {
	lower := strings.ToLower(text)
	for _, phrase := range denialPhrases {
		if strings.Contains(lower, phrase) {
			return nil, fmt.Errorf("%w: denial page from %s", ErrUnusableResponse, source)
		}
	}
	if len(text) < minHTMLLength {
		return nil, fmt.Errorf("%w: implausibly short HTML (%d bytes) from %s", ErrUnusableResponse, len(text), source)
	}

	threads, err := extract.Extract(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnusableResponse, err)
	}
	return &Result{Kind: KindListing, Threads: threads}, nil
}
