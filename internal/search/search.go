package search

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/threadtoon/internal/normalize"
	"github.com/threadtoon/pkg/models"
)

// Retriever is the orchestrator surface the search layer depends on.
type Retriever interface {
	Retrieve(ctx context.Context, logicalPath string, query url.Values) (*normalize.Result, error)
}

// Service issues content API searches and detail fetches through the
// fetch orchestrator.
type Service struct {
	retriever     Retriever
	perForumLimit int
}

// maxConcurrentSearches bounds the fan-out of a multi-forum search.
const maxConcurrentSearches = 8

func NewService(retriever Retriever, perForumLimit int) *Service {
	if perForumLimit <= 0 {
		perForumLimit = 10
	}
	return &Service{retriever: retriever, perForumLimit: perForumLimit}
}

// Search queries a single subreddit, bounded to limit results.
func (s *Service) Search(ctx context.Context, subreddit, query string, sortBy models.SortOption, window models.TimeFilter, limit int) ([]models.Thread, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("sort", string(sortBy))
	q.Set("t", string(window))
	q.Set("limit", strconv.Itoa(limit))
	q.Set("restrict_sr", "1")

	result, err := s.retriever.Retrieve(ctx, "/r/"+subreddit+"/search", q)
	if err != nil {
		return nil, err
	}
	if result.Kind != normalize.KindListing {
		return nil, fmt.Errorf("unexpected payload shape for search in r/%s", subreddit)
	}
	threads := result.Threads
	if len(threads) > limit {
		threads = threads[:limit]
	}
	return threads, nil
}

// SearchMany searches every subreddit concurrently and merges the results:
// a single forum's failure contributes nothing, duplicates are dropped
// first-seen-wins, and the union is ranked by score weighted with the
// approval ratio. Only when every forum fails is the last error surfaced.
func (s *Service) SearchMany(ctx context.Context, subreddits []string, query string, sortBy models.SortOption, window models.TimeFilter) ([]models.Thread, error) {
	perForum := make([][]models.Thread, len(subreddits))

	var mu sync.Mutex
	var lastErr error

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSearches)
	for i, sub := range subreddits {
		i, sub := i, sub
		g.Go(func() error {
			threads, err := s.Search(gctx, sub, query, sortBy, window, s.perForumLimit)
			if err != nil {
				log.Warn().Str("subreddit", sub).Err(err).Msg("forum search failed, contributing no results")
				mu.Lock()
				lastErr = err
				mu.Unlock()
				return nil
			}
			perForum[i] = threads
			return nil
		})
	}
	g.Wait()

	seen := make(map[string]struct{})
	var merged []models.Thread
	for _, threads := range perForum {
		for _, t := range threads {
			if _, ok := seen[t.ID]; ok {
				continue
			}
			seen[t.ID] = struct{}{}
			merged = append(merged, t)
		}
	}

	if len(merged) == 0 && lastErr != nil {
		return nil, lastErr
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].RelevanceScore() > merged[j].RelevanceScore()
	})
	return merged, nil
}

// FetchThread retrieves one thread's detail view with its comment tree
// populated.
func (s *Service) FetchThread(ctx context.Context, subreddit, threadID string) (*models.Thread, error) {
	q := url.Values{}
	q.Set("limit", "100")
	q.Set("depth", strconv.Itoa(models.MaxCommentDepth))

	result, err := s.retriever.Retrieve(ctx, "/r/"+subreddit+"/comments/"+threadID, q)
	if err != nil {
		return nil, err
	}
	if result.Kind != normalize.KindDetail || result.Thread == nil {
		return nil, fmt.Errorf("unexpected payload shape for thread %s", threadID)
	}
	return result.Thread, nil
}
