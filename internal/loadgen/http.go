package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/ben/internal/domain/types"
	"github.com/okian/ben/pkg/logger"
)

// HTTPClient wraps http.Client with timeout. Redirects are not followed so
// the submit outcome can be read from the Location header.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// PostForm performs a form-encoded POST request.
func (c *HTTPClient) PostForm(ctx context.Context, u string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.client.Do(req)
}

func closeBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	if err := resp.Body.Close(); err != nil {
		logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
	}
}

// result is the server's answer to one submission.
type result struct {
	outcome   Outcome
	canonical string
}

// classify reads the outcome of POST /submit from the redirect target.
func classify(resp *http.Response) result {
	if resp.StatusCode != StatusFound {
		return result{outcome: OutcomeFailed}
	}
	loc, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		return result{outcome: OutcomeFailed}
	}
	switch loc.Path {
	case "/":
		return result{outcome: OutcomeRejected}
	case "/results":
		return result{outcome: OutcomeAccepted, canonical: loc.Query().Get("highlight")}
	default:
		return result{outcome: OutcomeFailed}
	}
}

func submitSingleGuess(ctx context.Context, client *HTTPClient, u string, g Guess) result {
	resp, err := client.PostForm(ctx, u, url.Values{"surname": {g.Raw}})
	if err != nil {
		logger.Get().Debug(ctx, "submit failed", logger.String("id", g.ID), logger.Error(err))
		return result{outcome: OutcomeFailed}
	}
	defer closeBody(resp)
	return classify(resp)
}

// submitGuesses posts every guess through a worker pool and returns the
// per-guess results in input order.
func submitGuesses(ctx context.Context, cfg *Config, guesses []Guess, stats *Stats) []result {
	logger.Get().Info(ctx, "submitting guesses",
		logger.Int("guesses", len(guesses)),
		logger.Int("workers", cfg.Workers))

	client := newHTTPClient(cfg.Timeout)
	u := cfg.BaseURL + "/submit"
	results := make([]result, len(guesses))

	var (
		submitted atomic.Int64
		accepted  atomic.Int64
		rejected  atomic.Int64
		failed    atomic.Int64
		lastMu    sync.Mutex
		last      time.Time
	)

	idx := make(chan int, cfg.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				if ctx.Err() != nil {
					continue
				}
				res := submitSingleGuess(ctx, client, u, guesses[i])
				results[i] = res

				submitted.Add(1)
				switch res.outcome {
				case OutcomeAccepted:
					accepted.Add(1)
				case OutcomeRejected:
					rejected.Add(1)
				default:
					failed.Add(1)
				}

				lastMu.Lock()
				report := time.Since(last) >= progressInterval
				if report {
					last = time.Now()
				}
				lastMu.Unlock()
				if report && cfg.Verbose {
					logger.Get().Info(ctx, "progress",
						logger.Int64("submitted", submitted.Load()),
						logger.Int("total", len(guesses)),
						logger.Int64("accepted", accepted.Load()),
						logger.Int64("rejected", rejected.Load()),
						logger.Int64("failed", failed.Load()))
				}
			}
		}()
	}

	go func() {
		defer close(idx)
		for i := range guesses {
			select {
			case <-ctx.Done():
				return
			case idx <- i:
			}
		}
	}()

	wg.Wait()

	stats.Submitted = int(submitted.Load())
	stats.Accepted = int(accepted.Load())
	stats.Rejected = int(rejected.Load())
	stats.Failed = int(failed.Load())

	logger.Get().Info(ctx, "submission completed",
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed))
	return results
}

// getLeaderboard fetches GET /api/leaderboard.
func getLeaderboard(ctx context.Context, cfg *Config) (types.Leaderboard, error) {
	var lb types.Leaderboard

	resp, err := newHTTPClient(cfg.Timeout).Get(ctx, cfg.BaseURL+"/api/leaderboard")
	if err != nil {
		return lb, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	defer closeBody(resp)

	if resp.StatusCode != StatusOK {
		return lb, fmt.Errorf("%w: leaderboard returned %d", ErrStatus, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&lb); err != nil {
		return lb, fmt.Errorf("failed to decode leaderboard: %w", err)
	}
	return lb, nil
}

// checkServiceHealth verifies the service answers GET /health with 200.
func checkServiceHealth(ctx context.Context, cfg *Config) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := newHTTPClient(cfg.Timeout).Get(ctx, cfg.BaseURL+"/health")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer closeBody(resp)

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}
