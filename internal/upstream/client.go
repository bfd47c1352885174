// Copyright Ollama Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/ollamagw/gateway/internal/correlation"
	"github.com/ollamagw/gateway/internal/errs"
	"github.com/ollamagw/gateway/internal/logging"
)

// chatStream is the subset of the SDK's streaming response this package
// needs, kept as a local interface so the generic stream type never leaks
// past this file.
type chatStream interface {
	Next() bool
	Current() openai.ChatCompletionChunk
	Err() error
	Close() error
}

// Client is the capability interface the rest of the gateway depends on.
// The Router and Translator never see an HTTP type; tests substitute
// *MockClient for this interface.
type Client interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
	Chat(ctx context.Context, params ChatParams) (*ChatResult, error)
	ChatStream(ctx context.Context, params ChatParams) (<-chan ChatChunk, error)
	Embed(ctx context.Context, params EmbedParams) (*EmbedResult, error)
}

// Config configures an OpenAIClient.
type Config struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	StreamTimeout  time.Duration
	MaxConnections int
	MaxIdleConns   int
	MaxRetries     int
	Logger         *logging.Logger
}

// OpenAIClient implements Client against an OpenAI-compatible backend using
// the official SDK, with retry-with-backoff and a dedicated connection pool.
type OpenAIClient struct {
	sdk            openai.Client
	requestTimeout time.Duration
	streamTimeout  time.Duration
	maxRetries     int
	logger         *logging.Logger
}

// NewOpenAIClient builds a Client from cfg. The HTTP transport's connection
// pool is sized from cfg.MaxConnections/MaxIdleConns (spec.md §4.4); it is
// shared across every request handled by the process.
func NewOpenAIClient(cfg Config) *OpenAIClient {
	transport := &http.Transport{
		MaxConnsPerHost:     cfg.MaxConnections,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConns,
	}
	httpClient := &http.Client{Transport: transport}

	opts := []option.RequestOption{
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0), // this package owns retry policy, not the SDK
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.New(logging.Config{})
	}

	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	streamTimeout := cfg.StreamTimeout
	if streamTimeout <= 0 {
		streamTimeout = DefaultStreamTimeout
	}

	return &OpenAIClient{
		sdk:            openai.NewClient(opts...),
		requestTimeout: requestTimeout,
		streamTimeout:  streamTimeout,
		maxRetries:     cfg.MaxRetries,
		logger:         logger,
	}
}

// ListModels implements Client.
func (c *OpenAIClient) ListModels(ctx context.Context) ([]ModelInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	var out []ModelInfo
	err := c.withRetry(ctx, "models", classifyContext{}, func(ctx context.Context) error {
		page, err := c.sdk.Models.List(ctx)
		if err != nil {
			return err
		}
		out = make([]ModelInfo, 0, len(page.Data))
		for _, m := range page.Data {
			out = append(out, ModelInfo{ID: m.ID, Created: m.Created})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Chat implements Client's unary path.
func (c *OpenAIClient) Chat(ctx context.Context, params ChatParams) (*ChatResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	sdkParams := buildChatParams(params)
	cc := classifyContext{model: params.Model, hadImages: paramsHadImages(params)}

	var result *ChatResult
	err := c.withRetry(ctx, "chat", cc, func(ctx context.Context) error {
		completion, err := c.sdk.Chat.Completions.New(ctx, sdkParams)
		if err != nil {
			return err
		}
		if len(completion.Choices) == 0 {
			return errs.New(errs.KindUpstreamFatal, "upstream returned no choices")
		}
		choice := completion.Choices[0]
		result = &ChatResult{
			Content:      choice.Message.Content,
			ToolCalls:    convertSDKToolCalls(choice.Message.ToolCalls),
			FinishReason: string(choice.FinishReason),
			Usage: Usage{
				PromptTokens:     int(completion.Usage.PromptTokens),
				CompletionTokens: int(completion.Usage.CompletionTokens),
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ChatStream implements Client's streaming path. Retries (per spec.md §4.4)
// only apply to establishing the stream; once the first chunk has been
// observed, an upstream failure is surfaced on the channel as a terminal
// error rather than retried.
func (c *OpenAIClient) ChatStream(ctx context.Context, params ChatParams) (<-chan ChatChunk, error) {
	ctx, cancel := context.WithTimeout(ctx, c.streamTimeout)
	sdkParams := buildChatParams(params)
	cc := classifyContext{model: params.Model, hadImages: paramsHadImages(params)}

	var stream chatStream
	err := c.withRetry(ctx, "chat_stream", cc, func(ctx context.Context) error {
		s := c.sdk.Chat.Completions.NewStreaming(ctx, sdkParams)
		if err := s.Err(); err != nil {
			return err
		}
		stream = s
		return nil
	})
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan ChatChunk, 1)
	go func() {
		defer cancel()
		defer close(out)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			choice := chunk.Choices[0]
			outChunk := ChatChunk{
				DeltaContent: choice.Delta.Content,
				ToolCalls:    convertSDKToolCallDeltas(choice.Delta.ToolCalls),
			}
			if choice.FinishReason != "" {
				outChunk.FinishReason = string(choice.FinishReason)
			}
			if chunk.Usage.TotalTokens > 0 {
				outChunk.HasUsage = true
				outChunk.Usage = Usage{
					PromptTokens:     int(chunk.Usage.PromptTokens),
					CompletionTokens: int(chunk.Usage.CompletionTokens),
				}
			}

			select {
			case out <- outChunk:
			case <-ctx.Done():
				return
			}
		}

		if err := stream.Err(); err != nil {
			select {
			case out <- ChatChunk{Err: classify(err, cc).err}:
			case <-ctx.Done():
			}
		}
	}()

	return out, nil
}

// Embed implements Client.
func (c *OpenAIClient) Embed(ctx context.Context, params EmbedParams) (*EmbedResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	var result *EmbedResult
	err := c.withRetry(ctx, "embeddings", classifyContext{model: params.Model}, func(ctx context.Context) error {
		resp, err := c.sdk.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Model: openai.EmbeddingModel(params.Model),
			Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(params.Input)},
		})
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 {
			return errs.New(errs.KindUpstreamFatal, "upstream returned no embedding data")
		}
		vec := make([]float32, len(resp.Data[0].Embedding))
		for i, v := range resp.Data[0].Embedding {
			vec[i] = float32(v)
		}
		result = &EmbedResult{Embedding: vec}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// paramsHadImages reports whether any message in p carried images, so a
// resulting upstream 4xx can be classified as the spec's required
// "images not supported for this model" error (spec.md §4.2.3) instead of
// the generic request-shape message.
func paramsHadImages(p ChatParams) bool {
	for _, m := range p.Messages {
		if len(m.Images) > 0 {
			return true
		}
	}
	return false
}

func buildChatParams(p ChatParams) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(p.Messages))
	for _, m := range p.Messages {
		switch m.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(m.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		case "tool":
			messages = append(messages, openai.ToolMessage(m.Content, ""))
		default:
			if len(m.Images) > 0 {
				parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(m.Images)+1)
				if m.Content != "" {
					parts = append(parts, openai.TextContentPart(m.Content))
				}
				for _, img := range m.Images {
					parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
						URL: "data:image/png;base64," + img,
					}))
				}
				messages = append(messages, openai.UserMessage(parts))
			} else {
				messages = append(messages, openai.UserMessage(m.Content))
			}
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.Model),
		Messages: messages,
	}
	if p.Temperature != nil {
		params.Temperature = openai.Float(*p.Temperature)
	}
	if p.TopP != nil {
		params.TopP = openai.Float(*p.TopP)
	}
	if p.Seed != nil {
		params.Seed = openai.Int(*p.Seed)
	}
	if p.MaxTokens != nil {
		params.MaxTokens = openai.Int(*p.MaxTokens)
	}
	if len(p.Stop) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: p.Stop}
	}
	if p.FrequencyPenalty != nil {
		params.FrequencyPenalty = openai.Float(*p.FrequencyPenalty)
	}
	if p.PresencePenalty != nil {
		params.PresencePenalty = openai.Float(*p.PresencePenalty)
	}
	if p.JSONMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	if p.JSONSchema != nil {
		if rf := buildJSONSchemaFormat(p.JSONSchema); rf != nil {
			params.ResponseFormat = *rf
		}
	}
	if len(p.Tools) > 0 {
		tools := make([]openai.ChatCompletionToolParam, 0, len(p.Tools))
		for _, t := range p.Tools {
			fn := shared.FunctionDefinitionParam{Name: t.Name}
			if t.Description != "" {
				fn.Description = openai.String(t.Description)
			}
			if t.Parameters != nil {
				fn.Parameters = shared.FunctionParameters(t.Parameters)
			}
			tools = append(tools, openai.ChatCompletionToolParam{Function: fn})
		}
		params.Tools = tools
	}
	return params
}

// buildJSONSchemaFormat converts the Translator's loosely-typed JSON schema
// map (forwarded from an Ollama request's "format" field, spec.md §4.2.2)
// into the upstream structured-output response format. Accepts either
// {"name":..., "schema": {...}, "strict": bool} or a bare schema object,
// in which case a default name is used.
func buildJSONSchemaFormat(m map[string]any) *openai.ChatCompletionNewParamsResponseFormatUnion {
	name, _ := m["name"].(string)
	if name == "" {
		name = "response"
	}
	schema, ok := m["schema"].(map[string]any)
	if !ok {
		schema = m
	}

	schemaParam := shared.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:   name,
		Schema: schema,
	}
	if desc, ok := m["description"].(string); ok && desc != "" {
		schemaParam.Description = openai.String(desc)
	}
	if strict, ok := m["strict"].(bool); ok {
		schemaParam.Strict = openai.Bool(strict)
	}

	return &openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
	}
}

func convertSDKToolCalls(tcs []openai.ChatCompletionMessageToolCall) []ToolCall {
	if len(tcs) == 0 {
		return nil
	}
	out := make([]ToolCall, 0, len(tcs))
	for _, tc := range tcs {
		out = append(out, ToolCall{ID: tc.ID, Name: tc.Function.Name})
	}
	return out
}

func convertSDKToolCallDeltas(tcs []openai.ChatCompletionChunkChoiceDeltaToolCall) []ToolCall {
	if len(tcs) == 0 {
		return nil
	}
	out := make([]ToolCall, 0, len(tcs))
	for _, tc := range tcs {
		out = append(out, ToolCall{ID: tc.ID, Name: tc.Function.Name})
	}
	return out
}

// withRetry runs op under the retry policy of spec.md §4.4: 1 initial
// attempt plus up to 3 retries, delay_n = min(1s*2^n, 30s), retrying only
// upstream 5xx/429/connect/read-timeout failures. Every attempt is logged
// with the endpoint, attempt number and correlation id, never the request
// body (I7).
func (c *OpenAIClient) withRetry(ctx context.Context, endpoint string, cc classifyContext, op func(context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 1 * time.Second
	b.Multiplier = 2
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	bctx := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries)), ctx)

	cid := correlation.FromContext(ctx)
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		c.logger.Debug("upstream request", "endpoint", endpoint, "attempt", attempt, "correlation_id", cid)
		err := op(ctx)
		if err == nil {
			return nil
		}
		classified := classify(err, cc)
		c.logger.Warn("upstream request failed", "endpoint", endpoint, "attempt", attempt,
			"correlation_id", cid, "kind", classified.err.Kind, "retryable", classified.retryable)
		if !classified.retryable {
			return backoff.Permanent(classified.err)
		}
		return classified.err
	}, bctx)

	if err == nil {
		return nil
	}
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	return classify(err, cc).err
}

type classified struct {
	err       *errs.Error
	retryable bool
}

// classifyContext carries the request-scoped facts classify needs to produce
// the exact spec-mandated messages: the model id for a not-found error
// (spec.md §4.6) and whether the outgoing request carried images, for the
// "images not supported for this model" case (spec.md §4.2.3).
type classifyContext struct {
	model     string
	hadImages bool
}

// classify maps a raw SDK/transport error onto the gateway's typed failure
// taxonomy and decides retryability per spec.md §4.4's table.
func classify(err error, cc classifyContext) classified {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized:
			return classified{err: errs.Wrap(errs.KindAuthentication, "unauthorized", err), retryable: false}
		case apiErr.StatusCode == http.StatusNotFound:
			e := errs.Wrap(errs.KindNotFound, "not found", err)
			e.Model = cc.model
			return classified{err: e, retryable: false}
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return classified{err: errs.Wrap(errs.KindRateLimit, "rate limited", err), retryable: true}
		case apiErr.StatusCode >= 500:
			return classified{err: errs.Wrap(errs.KindUpstreamTransient, "upstream error", err), retryable: true}
		case apiErr.StatusCode >= 400:
			if cc.hadImages {
				return classified{err: errs.Wrap(errs.KindRequestShape, "images not supported for this model", err), retryable: false}
			}
			return classified{err: errs.Wrap(errs.KindRequestShape, "upstream rejected request", err), retryable: false}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return classified{err: errs.Wrap(errs.KindTimeout, "upstream timeout", err), retryable: true}
	}
	if errors.Is(err, context.Canceled) {
		return classified{err: errs.Wrap(errs.KindCancellation, "client closed request", err), retryable: false}
	}

	var gwErr *errs.Error
	if errors.As(err, &gwErr) {
		return classified{err: gwErr, retryable: false}
	}

	return classified{err: errs.Wrap(errs.KindUpstreamTransient, fmt.Sprintf("upstream connection error: %v", err), err), retryable: true}
}
