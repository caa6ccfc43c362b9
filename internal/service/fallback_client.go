package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"care-advisor/internal/cache"
	"care-advisor/internal/metrics"
	"care-advisor/internal/models"
	"care-advisor/pkg/config"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// FallbackErrorKind classifies why no generative proposal is available.
type FallbackErrorKind string

const (
	ProviderUnavailable FallbackErrorKind = "provider_unavailable"
	InvalidPayload      FallbackErrorKind = "invalid_payload"
	Timeout             FallbackErrorKind = "timeout"
)

var (
	ErrEmptyQuery       = errors.New("query is empty")
	ErrProviderDisabled = errors.New("no LLM provider configured")
	ErrMissingField     = errors.New("required field missing")
)

// FallbackError is the only error Propose returns. Callers treat it as "no
// proposal", never as a request failure.
type FallbackError struct {
	Kind FallbackErrorKind
	Err  error
}

func (e *FallbackError) Error() string {
	return fmt.Sprintf("generative fallback %s: %v", e.Kind, e.Err)
}

func (e *FallbackError) Unwrap() error {
	return e.Err
}

// FallbackKind returns the kind of a *FallbackError in err's chain, or "".
func FallbackKind(err error) FallbackErrorKind {
	var fe *FallbackError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// AdvisorySolution is a validated, canonicalized generative proposal.
type AdvisorySolution struct {
	Product    string   `json:"product"`
	Features   []string `json:"features"`
	HowItWorks string   `json:"how_it_works"`
	Benefits   []string `json:"benefits"`
	ROI        string   `json:"roi,omitempty"`
	Disclaimer string   `json:"disclaimer,omitempty"`

	PromptTokens     int  `json:"-"`
	CompletionTokens int  `json:"-"`
	Cached           bool `json:"-"`
}

// Render is the flat text form written to the audit log.
func (s *AdvisorySolution) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Product: %s\nFeatures: %s\n%s", s.Product, strings.Join(s.Features, ", "), s.HowItWorks)
	for _, benefit := range s.Benefits {
		b.WriteString("\n- ")
		b.WriteString(benefit)
	}
	if s.ROI != "" {
		b.WriteString("\nROI: ")
		b.WriteString(s.ROI)
	}
	return b.String()
}

// rawProposal accepts the shapes providers actually return: "feature" as a
// string or list, the plural "features", and benefits as a list or
// newline-joined string.
type rawProposal struct {
	Product    string          `json:"product"`
	Feature    models.TextList `json:"feature"`
	Features   models.TextList `json:"features"`
	HowItWorks string          `json:"how_it_works"`
	Benefits   models.TextList `json:"benefits"`
	ROI        json.RawMessage `json:"roi"`
	Disclaimer string          `json:"disclaimer"`
}

// ParseProposal recovers and validates a proposal from a completion.
func ParseProposal(text string) (*AdvisorySolution, error) {
	data, err := ExtractJSONObject(text)
	if err != nil {
		return nil, err
	}

	var raw rawProposal
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode proposal: %w", err)
	}

	entries := append(append([]string{}, raw.Feature...), raw.Features...)
	switch {
	case strings.TrimSpace(raw.Product) == "":
		return nil, fmt.Errorf("%w: product", ErrMissingField)
	case len(entries) == 0:
		return nil, fmt.Errorf("%w: feature", ErrMissingField)
	case strings.TrimSpace(raw.HowItWorks) == "":
		return nil, fmt.Errorf("%w: how_it_works", ErrMissingField)
	case len(raw.Benefits) == 0:
		return nil, fmt.Errorf("%w: benefits", ErrMissingField)
	}

	features, _ := CanonicalFeatures(entries)
	if len(features) == 0 {
		return nil, fmt.Errorf("no known feature in %q", strings.Join(entries, " | "))
	}

	product, ok := CanonicalProduct(raw.Product)
	if !ok {
		product = ProductForFeatures(features)
	}

	return &AdvisorySolution{
		Product:    product,
		Features:   features,
		HowItWorks: strings.TrimSpace(raw.HowItWorks),
		Benefits:   raw.Benefits,
		ROI:        roiText(raw.ROI),
		Disclaimer: strings.TrimSpace(raw.Disclaimer),
	}, nil
}

func roiText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

// RetryConfig bounds transport retries inside the fallback timeout.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// FallbackClient asks the completion provider for a proposal when the
// catalog alone cannot answer.
type FallbackClient struct {
	completer Completer
	cache     cache.Client
	cacheTTL  time.Duration
	timeout   time.Duration
	retry     RetryConfig
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewFallbackClient wires a client. completer and cacheClient may be nil.
func NewFallbackClient(
	completer Completer,
	cacheClient cache.Client,
	cfg config.LLMConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) *FallbackClient {
	return &FallbackClient{
		completer: completer,
		cache:     cacheClient,
		cacheTTL:  cfg.CacheTTL,
		timeout:   cfg.Timeout,
		retry: RetryConfig{
			MaxRetries:     cfg.Retries,
			InitialBackoff: 500 * time.Millisecond,
			MaxBackoff:     2 * time.Second,
		},
		metrics: m,
		logger:  logger,
	}
}

// Propose returns a proposal or a *FallbackError.
func (c *FallbackClient) Propose(ctx context.Context, query string) (*AdvisorySolution, error) {
	start := time.Now()
	solution, err := c.propose(ctx, query)
	c.metrics.ObserveFallback(time.Since(start), string(FallbackKind(err)))
	if err != nil {
		c.logger.Warn("Generative fallback failed",
			zap.String("kind", string(FallbackKind(err))),
			zap.Error(err),
		)
	}
	return solution, err
}

func (c *FallbackClient) propose(ctx context.Context, query string) (*AdvisorySolution, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &FallbackError{Kind: InvalidPayload, Err: ErrEmptyQuery}
	}
	if c.completer == nil {
		return nil, &FallbackError{Kind: ProviderUnavailable, Err: ErrProviderDisabled}
	}

	key := proposalCacheKey(query)
	if cached, ok := c.lookup(ctx, key); ok {
		return cached, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	completion, err := c.complete(callCtx, BuildPrompt(query))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, &FallbackError{Kind: Timeout, Err: err}
		}
		return nil, &FallbackError{Kind: ProviderUnavailable, Err: err}
	}

	solution, err := ParseProposal(completion.Text)
	if err != nil {
		c.logger.Debug("Unparseable completion", zap.String("completion", completion.Text))
		return nil, &FallbackError{Kind: InvalidPayload, Err: err}
	}
	solution.PromptTokens = completion.PromptTokens
	solution.CompletionTokens = completion.CompletionTokens

	c.store(ctx, key, solution)
	return solution, nil
}

// complete calls the provider, retrying transient failures with exponential
// backoff until the retry budget or ctx runs out.
func (c *FallbackClient) complete(ctx context.Context, prompt string) (*Completion, error) {
	for attempt := 0; ; attempt++ {
		completion, err := c.completer.Complete(ctx, prompt)
		if err == nil {
			return completion, nil
		}

		if attempt >= c.retry.MaxRetries || !isTransient(err) || ctx.Err() != nil {
			return nil, err
		}

		backoff := calculateBackoff(attempt, c.retry)
		c.logger.Warn("LLM request failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w (last attempt: %v)", ctx.Err(), err)
		case <-timer.C:
		}
	}
}

func (c *FallbackClient) lookup(ctx context.Context, key string) (*AdvisorySolution, bool) {
	if c.cache == nil {
		return nil, false
	}

	data, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn("Proposal cache read failed", zap.Error(err))
		}
		c.metrics.ObserveCache(false)
		return nil, false
	}

	var solution AdvisorySolution
	if err := json.Unmarshal(data, &solution); err != nil {
		c.logger.Warn("Discarding corrupt cached proposal", zap.Error(err))
		if err := c.cache.Delete(ctx, key); err != nil {
			c.logger.Warn("Failed to delete corrupt cached proposal", zap.Error(err))
		}
		c.metrics.ObserveCache(false)
		return nil, false
	}

	c.metrics.ObserveCache(true)
	solution.Cached = true
	return &solution, true
}

func (c *FallbackClient) store(ctx context.Context, key string, solution *AdvisorySolution) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}

	data, err := json.Marshal(solution)
	if err != nil {
		c.logger.Warn("Failed to encode proposal for cache", zap.Error(err))
		return
	}
	if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
		c.logger.Warn("Proposal cache write failed", zap.Error(err))
	}
}

func proposalCacheKey(query string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return cache.Key("proposal", hex.EncodeToString(sum[:]))
}

// isTransient reports whether a provider error is worth another attempt.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return shouldRetry(apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return shouldRetry(reqErr.HTTPStatusCode)
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func shouldRetry(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// calculateBackoff returns InitialBackoff * 2^attempt, capped at MaxBackoff.
func calculateBackoff(attempt int, cfg RetryConfig) time.Duration {
	backoff := float64(cfg.InitialBackoff) * math.Pow(2, float64(attempt))
	if cfg.MaxBackoff > 0 && backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}
	return time.Duration(backoff)
}
