package proxies

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	calls   int
	healthy []string
}

func (s *stubChecker) FilterHealthy(_ context.Context, _ []string) []string {
	s.calls++
	return s.healthy
}

func TestRefresh_FiltersAndDeduplicates(t *testing.T) {
	listA := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("1.2.3.4:8080\n\n# updated daily\n5.6.7.8:3128\nnot-an-address\n"))
	}))
	defer listA.Close()
	listB := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("5.6.7.8:3128\n9.9.9.9:1080\n"))
	}))
	defer listB.Close()

	r := NewRegistry([]string{listA.URL, listB.URL}, time.Hour, nil, nil)
	pool, err := r.Refresh(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, []string{"1.2.3.4:8080", "5.6.7.8:3128", "9.9.9.9:1080"}, pool)
	require.Equal(t, pool, r.Pool())
}

func TestRefresh_FailingSourceSkipped(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("1.2.3.4:8080\n"))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer bad.Close()

	r := NewRegistry([]string{bad.URL, good.URL, "http://127.0.0.1:1/unreachable"}, time.Hour, &http.Client{Timeout: time.Second}, nil)
	pool, err := r.Refresh(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, []string{"1.2.3.4:8080"}, pool)
}

func TestRefresh_ValidatedPoolCached(t *testing.T) {
	hits := 0
	list := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.Write([]byte("1.2.3.4:8080\n5.6.7.8:3128\n"))
	}))
	defer list.Close()

	checker := &stubChecker{healthy: []string{"5.6.7.8:3128"}}
	r := NewRegistry([]string{list.URL}, time.Hour, nil, checker)

	pool, err := r.Refresh(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, []string{"5.6.7.8:3128"}, pool)
	require.Equal(t, 1, checker.calls)

	// Second validated refresh within the window reuses the cached set
	// without refetching or re-testing.
	pool, err = r.Refresh(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, []string{"5.6.7.8:3128"}, pool)
	require.Equal(t, 1, checker.calls)
	require.Equal(t, 1, hits)
}

func TestRefresh_ExpiredValidationRetests(t *testing.T) {
	list := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("1.2.3.4:8080\n"))
	}))
	defer list.Close()

	checker := &stubChecker{healthy: []string{"1.2.3.4:8080"}}
	r := NewRegistry([]string{list.URL}, 10*time.Millisecond, nil, checker)

	_, err := r.Refresh(context.Background(), true)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	_, err = r.Refresh(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, 2, checker.calls)
}

func TestRefresh_UnvalidatedSkipsChecker(t *testing.T) {
	list := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("1.2.3.4:8080\n"))
	}))
	defer list.Close()

	checker := &stubChecker{healthy: []string{"1.2.3.4:8080"}}
	r := NewRegistry([]string{list.URL}, time.Hour, nil, checker)

	_, err := r.Refresh(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 0, checker.calls)
}

func TestRefresh_UnvalidatedPreservesValidatedGeneration(t *testing.T) {
	list := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("1.2.3.4:8080\n5.6.7.8:3128\n"))
	}))
	defer list.Close()

	checker := &stubChecker{healthy: []string{"5.6.7.8:3128"}}
	r := NewRegistry([]string{list.URL}, time.Hour, nil, checker)

	_, err := r.Refresh(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, 1, checker.calls)

	// A background-style raw refresh replaces the working pool only.
	pool, err := r.Refresh(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, []string{"1.2.3.4:8080", "5.6.7.8:3128"}, pool)
	require.Equal(t, pool, r.Pool())

	// Still within the validity window the validated generation survives:
	// no re-test, and the validated set becomes the working pool again.
	pool, err = r.Refresh(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, []string{"5.6.7.8:3128"}, pool)
	require.Equal(t, 1, checker.calls)
	require.Equal(t, []string{"5.6.7.8:3128"}, r.Pool())
}
