package forums

import (
	"math"
	"sort"
	"strings"

	"github.com/threadtoon/pkg/models"
)

// Category groups forums reachable from a set of topic keywords.
type Category struct {
	Keywords []string
	Forums   []models.SubredditMatch
}

// Matcher scores a free-text topic against a keyword table and suggests
// forums to search. It is a plain table lookup; the heavy lifting lives in
// the fetch layer.
type Matcher struct {
	categories map[string]Category
}

// NewMatcher builds a matcher over the default curated table.
func NewMatcher() *Matcher {
	return NewMatcherWithTable(defaultCategories())
}

// NewMatcherWithTable builds a matcher over a caller-supplied table.
func NewMatcherWithTable(categories map[string]Category) *Matcher {
	return &Matcher{categories: categories}
}

// Match returns up to five forums ranked by keyword affinity with the
// query. Weight is normalized to 0-100.
func (m *Matcher) Match(query string) []models.SubredditMatch {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return nil
	}

	type scored struct {
		match models.SubredditMatch
		score float64
	}
	best := map[string]scored{}

	for _, category := range m.categories {
		categoryScore := 0.0

		for _, keyword := range category.Keywords {
			kw := strings.ToLower(keyword)
			switch {
			case strings.Contains(normalized, kw):
				categoryScore += 100
			case strings.Contains(kw, normalized):
				categoryScore += 50
			default:
				for _, qWord := range strings.Fields(normalized) {
					if len(qWord) <= 2 {
						continue
					}
					for _, kWord := range strings.Fields(kw) {
						if strings.Contains(kWord, qWord) {
							categoryScore += 25
						}
					}
				}
			}
		}

		if categoryScore == 0 {
			continue
		}
		for _, forum := range category.Forums {
			score := categoryScore * float64(forum.Weight) / 100
			if existing, ok := best[forum.Name]; ok && existing.score >= score {
				continue
			}
			best[forum.Name] = scored{match: forum, score: score}
		}
	}

	if len(best) == 0 {
		return fallbackForums()
	}

	ranked := make([]scored, 0, len(best))
	for _, s := range best {
		ranked = append(ranked, s)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].match.Name < ranked[j].match.Name
	})

	if len(ranked) > 5 {
		ranked = ranked[:5]
	}

	out := make([]models.SubredditMatch, len(ranked))
	for i, s := range ranked {
		match := s.match
		weight := int(math.Round(s.score / 2))
		if weight > 100 {
			weight = 100
		}
		match.Weight = weight
		out[i] = match
	}
	return out
}

// fallbackForums covers queries the keyword table knows nothing about:
// broad general-discussion forums where almost any topic gets traction.
func fallbackForums() []models.SubredditMatch {
	return []models.SubredditMatch{
		{Name: "AskReddit", Weight: 80, Description: "General questions and discussions"},
		{Name: "todayilearned", Weight: 75, Description: "Interesting facts and stories"},
		{Name: "explainlikeimfive", Weight: 70, Description: "Simple explanations for complex topics"},
		{Name: "NoStupidQuestions", Weight: 65, Description: "Questions that might seem stupid"},
		{Name: "random", Weight: 60, Description: "Random subreddit"},
	}
}

// PopularTopics returns starter queries surfaced by the CLI.
func PopularTopics() []string {
	return []string{
		"AI news",
		"startup ideas",
		"tech product reviews",
		"cooking tips",
		"investment strategies",
		"productivity hacks",
		"gaming releases",
		"movie recommendations",
	}
}
