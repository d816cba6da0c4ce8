package normalize

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/threadtoon/pkg/models"
)

// ParseThreads maps a typed-children container onto thread records,
// keeping only "t3" (link) children.
func ParseThreads(children gjson.Result) []models.Thread {
	threads := []models.Thread{}
	children.ForEach(func(_, child gjson.Result) bool {
		if child.Get("kind").String() != "t3" {
			return true
		}
		data := child.Get("data")
		if !data.Exists() {
			return true
		}
		threads = append(threads, parseThread(data))
		return true
	})
	return threads
}

// ParseDetail maps the two-element detail payload (thread container,
// comment container) onto one thread with its comment tree populated.
func ParseDetail(threadContainer, commentContainer gjson.Result, maxDepth int) (*models.Thread, error) {
	data := threadContainer.Get("data.children.0.data")
	if !data.Exists() {
		return nil, fmt.Errorf("detail payload has no thread record")
	}
	thread := parseThread(data)
	thread.Comments = ParseComments(commentContainer.Get("data.children"), 0, maxDepth)
	return &thread, nil
}

// ParseComments maps a typed-children container onto a comment tree.
// depth is the nesting level assigned to these comments; maxDepth bounds
// the recursion, with deeper levels truncated rather than errored.
// Deleted comments survive only when they still carry live replies.
func ParseComments(children gjson.Result, depth, maxDepth int) []models.Comment {
	if !children.IsArray() || depth > maxDepth {
		return []models.Comment{}
	}

	comments := []models.Comment{}
	children.ForEach(func(_, child gjson.Result) bool {
		if child.Get("kind").String() != "t1" {
			return true
		}
		data := child.Get("data")
		if !data.Exists() {
			return true
		}

		author := stringOr(data.Get("author"), models.DeletedPlaceholder)
		body := stringOr(data.Get("body"), models.DeletedPlaceholder)

		comment := models.Comment{
			ID:         data.Get("id").String(),
			Author:     author,
			Body:       body,
			Score:      int(data.Get("score").Int()),
			Created:    data.Get("created").Float(),
			CreatedUTC: data.Get("created_utc").Float(),
			Depth:      depth,
			IsDeleted:  author == models.DeletedPlaceholder || body == models.DeletedPlaceholder,
			Replies:    ParseComments(data.Get("replies.data.children"), depth+1, maxDepth),
		}

		if comment.IsDeleted && len(comment.Replies) == 0 {
			return true
		}
		comments = append(comments, comment)
		return true
	})
	return comments
}

func parseThread(data gjson.Result) models.Thread {
	return models.Thread{
		ID:          data.Get("id").String(),
		Title:       data.Get("title").String(),
		Subreddit:   data.Get("subreddit").String(),
		Author:      data.Get("author").String(),
		Selftext:    data.Get("selftext").String(),
		URL:         data.Get("url").String(),
		Permalink:   data.Get("permalink").String(),
		Score:       int(data.Get("score").Int()),
		UpvoteRatio: data.Get("upvote_ratio").Float(),
		NumComments: int(data.Get("num_comments").Int()),
		Created:     data.Get("created").Float(),
		CreatedUTC:  data.Get("created_utc").Float(),
		Awards:      int(data.Get("total_awards_received").Int()),
		Flair:       data.Get("link_flair_text").String(),
		IsNSFW:      data.Get("over_18").Bool(),
		Comments:    []models.Comment{},
	}
}

// parsePostsList re-maps the alternate mirror's flat posts entries into
// canonical thread records. Field names vary slightly across instances, so
// a few aliases are tolerated.
func parsePostsList(posts gjson.Result) []models.Thread {
	threads := []models.Thread{}
	posts.ForEach(func(_, post gjson.Result) bool {
		id := firstOf(post, "id", "name")
		if id == "" {
			return true
		}
		threads = append(threads, models.Thread{
			ID:          id,
			Title:       firstOf(post, "title"),
			Subreddit:   firstOf(post, "subreddit", "community", "sub"),
			Author:      firstOf(post, "author", "user"),
			Selftext:    firstOf(post, "selftext", "body", "text"),
			URL:         firstOf(post, "url", "link"),
			Permalink:   firstOf(post, "permalink"),
			Score:       int(post.Get("score").Int()),
			UpvoteRatio: floatOr(post.Get("upvote_ratio"), 1.0),
			NumComments: int(firstNum(post, "num_comments", "comments")),
			Created:     post.Get("created").Float(),
			CreatedUTC:  firstNum(post, "created_utc", "created"),
			Awards:      int(post.Get("total_awards_received").Int()),
			IsNSFW:      post.Get("over_18").Bool(),
			Comments:    []models.Comment{},
		})
		return true
	})
	return threads
}

func stringOr(val gjson.Result, fallback string) string {
	if s := val.String(); s != "" {
		return s
	}
	return fallback
}

func floatOr(val gjson.Result, fallback float64) float64 {
	if val.Exists() {
		return val.Float()
	}
	return fallback
}

func firstOf(val gjson.Result, keys ...string) string {
	for _, key := range keys {
		if s := val.Get(key).String(); s != "" {
			return s
		}
	}
	return ""
}

func firstNum(val gjson.Result, keys ...string) float64 {
	for _, key := range keys {
		if v := val.Get(key); v.Exists() {
			return v.Float()
		}
	}
	return 0
}
