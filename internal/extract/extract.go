package extract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/threadtoon/pkg/models"
)

// ErrExtractionFailed marks HTML from which neither extraction pattern
// recovered a single record. Upstream markup is adversarial and unstable,
// so this is an ordinary typed error, never a crash.
var ErrExtractionFailed = errors.New("html extraction failed")

// stateMarker is the inline-script assignment carrying the page's
// embedded JSON state on script-rendered listing pages.
const stateMarker = "window.___r"

// placeholderTitle stands in for records whose title could not be
// recovered; such records are kept, not dropped.
const placeholderTitle = "[untitled]"

// Extract attempts best-effort recovery of thread records from a listing
// page. The embedded-state pattern is tried first, then the structural
// markup pattern; the first pattern producing at least one record wins.
func Extract(html string) ([]models.Thread, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	if threads := extractEmbeddedState(doc); len(threads) > 0 {
		log.Debug().Int("threads", len(threads)).Msg("extracted via embedded state")
		return threads, nil
	}

	if threads := extractStructural(doc); len(threads) > 0 {
		log.Debug().Int("threads", len(threads)).Msg("extracted via structural markup")
		return threads, nil
	}

	return nil, fmt.Errorf("%w: no recognizable records", ErrExtractionFailed)
}

// extractEmbeddedState locates the inline-script state assignment, parses
// its JSON payload and maps its post collection into thread records.
func extractEmbeddedState(doc *goquery.Document) []models.Thread {
	var state string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		idx := strings.Index(text, stateMarker)
		if idx < 0 {
			return true
		}
		eq := strings.Index(text[idx:], "=")
		if eq < 0 {
			return true
		}
		state = strings.TrimSpace(text[idx+eq+1:])
		state = strings.TrimSuffix(state, ";")
		return false
	})
	if state == "" || !gjson.Valid(state) {
		return nil
	}

	posts := gjson.Parse(state).Get("posts.models")
	if !posts.Exists() {
		return nil
	}

	var threads []models.Thread
	posts.ForEach(func(key, post gjson.Result) bool {
		id := strings.TrimPrefix(key.String(), "t3_")
		if id == "" {
			return true
		}
		title := post.Get("title").String()
		if title == "" {
			title = placeholderTitle
		}
		threads = append(threads, models.Thread{
			ID:          id,
			Title:       title,
			Subreddit:   post.Get("subreddit").String(),
			Author:      post.Get("author").String(),
			URL:         post.Get("url").String(),
			Permalink:   post.Get("permalink").String(),
			Score:       int(post.Get("score").Int()),
			UpvoteRatio: post.Get("upvote_ratio").Float(),
			NumComments: int(post.Get("num_comments").Int()),
			CreatedUTC:  post.Get("created_utc").Float(),
			Comments:    []models.Comment{},
		})
		return true
	})
	return threads
}

// extractStructural scans for repeated item containers carrying the known
// data attributes. A container is skipped only when the outer identifier,
// author or forum attributes are absent; missing inner fields degrade to
// zero values or the placeholder title.
func extractStructural(doc *goquery.Document) []models.Thread {
	var threads []models.Thread

	doc.Find("div.thing").Each(func(_ int, s *goquery.Selection) {
		fullname, okID := s.Attr("data-fullname")
		author, okAuthor := s.Attr("data-author")
		subreddit, okSub := s.Attr("data-subreddit")
		if !okID || !okAuthor || !okSub {
			return
		}

		title := strings.TrimSpace(s.Find("a.title").First().Text())
		if title == "" {
			title = placeholderTitle
		}

		score := 0
		if raw, ok := s.Attr("data-score"); ok {
			score, _ = strconv.Atoi(raw)
		} else if text := s.Find(".score.unvoted").First().Text(); text != "" {
			score, _ = strconv.Atoi(strings.Fields(text)[0])
		}

		permalink, _ := s.Attr("data-permalink")
		url, _ := s.Attr("data-url")

		numComments := 0
		if text := s.Find("a.comments").First().Text(); text != "" {
			fields := strings.Fields(text)
			if len(fields) > 0 {
				numComments, _ = strconv.Atoi(fields[0])
			}
		}

		threads = append(threads, models.Thread{
			ID:          strings.TrimPrefix(fullname, "t3_"),
			Title:       title,
			Subreddit:   subreddit,
			Author:      author,
			URL:         url,
			Permalink:   permalink,
			Score:       score,
			UpvoteRatio: 1.0,
			NumComments: numComments,
			Comments:    []models.Comment{},
		})
	})

	return threads
}
