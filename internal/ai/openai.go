package ai

import (
	"context"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// OpenAIOptions configures the hosted-model client.
type OpenAIOptions struct {
	APIKey  string
	BaseURL string // empty for the default endpoint
	Model   string
	Timeout time.Duration
	// Requests per second against the completion endpoint; zero disables
	// client-side limiting.
	RateRPS float64
}

// OpenAIClient implements Completer against an OpenAI-compatible chat
// completion endpoint.
type OpenAIClient struct {
	client  openai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
}

// NewOpenAIClient builds a Completer from options. The API key must be set;
// key discovery happens in config, not here.
func NewOpenAIClient(opts OpenAIOptions) *OpenAIClient {
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	var limiter *rate.Limiter
	if opts.RateRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateRPS), 1)
	}
	return &OpenAIClient{
		client:  openai.NewClient(reqOpts...),
		model:   opts.Model,
		timeout: opts.Timeout,
		limiter: limiter,
	}
}

// Locate sends the hypothesis and page snapshot to the model and decodes the
// reply. A model that answers in neither expected shape surfaces as
// ErrMalformedCompletion; transport and quota errors pass through untouched.
func (c *OpenAIClient) Locate(ctx context.Context, req LocateRequest) (Completion, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildUserPrompt(req)),
		},
		MaxCompletionTokens: openai.Int(1024),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, ErrMalformedCompletion
	}

	raw := resp.Choices[0].Message.Content
	log.Debug().
		Str("model", c.model).
		Dur("elapsed", time.Since(start)).
		Int("reply_len", len(raw)).
		Msg("completion received")

	return Decode(raw)
}
