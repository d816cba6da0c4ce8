package models

// Reddit content models

// Thread represents a single discussion thread as returned by the content API.
// Comments is empty until a detail fetch populates it.
type Thread struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Subreddit   string    `json:"subreddit"`
	Author      string    `json:"author"`
	Selftext    string    `json:"selftext"`
	URL         string    `json:"url"`
	Permalink   string    `json:"permalink"`
	Score       int       `json:"score"`
	UpvoteRatio float64   `json:"upvoteRatio"`
	NumComments int       `json:"numComments"`
	Created     float64   `json:"created"`
	CreatedUTC  float64   `json:"createdUtc"`
	Awards      int       `json:"awards"`
	Flair       string    `json:"flair,omitempty"`
	IsNSFW      bool      `json:"isNsfw"`
	Comments    []Comment `json:"comments"`
}

// Comment is one node of a thread's comment tree. Depth is 0 for top-level
// comments and exactly parent depth + 1 for replies.
type Comment struct {
	ID         string    `json:"id"`
	Author     string    `json:"author"`
	Body       string    `json:"body"`
	Score      int       `json:"score"`
	Created    float64   `json:"created"`
	CreatedUTC float64   `json:"createdUtc"`
	Depth      int       `json:"depth"`
	IsDeleted  bool      `json:"isDeleted"`
	Replies    []Comment `json:"replies"`
}

// RelevanceScore is the ranking key used when merging search results:
// raw popularity weighted by community approval.
func (t Thread) RelevanceScore() float64 {
	return float64(t.Score) * t.UpvoteRatio
}

// SubredditMatch is a candidate forum produced by the topic matcher.
// Weight is a 0-100 confidence value.
type SubredditMatch struct {
	Name        string `json:"name"`
	Weight      int    `json:"weight"`
	Description string `json:"description,omitempty"`
	Subscribers int    `json:"subscribers,omitempty"`
}

// SortOption selects the content API's result ordering.
type SortOption string

const (
	SortRelevance SortOption = "relevance"
	SortTop       SortOption = "top"
	SortNew       SortOption = "new"
	SortComments  SortOption = "comments"
)

// TimeFilter bounds search results to a recency window.
type TimeFilter string

const (
	TimeHour  TimeFilter = "hour"
	TimeDay   TimeFilter = "day"
	TimeWeek  TimeFilter = "week"
	TimeMonth TimeFilter = "month"
	TimeYear  TimeFilter = "year"
	TimeAll   TimeFilter = "all"
)

// MaxCommentDepth is the deepest reply level retained when parsing comment
// trees; levels below it are truncated, not errored.
const MaxCommentDepth = 5

// DeletedPlaceholder is the sentinel the content API substitutes for
// removed authors and bodies.
const DeletedPlaceholder = "[deleted]"
