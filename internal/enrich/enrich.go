// Package enrich provides optional LLM-backed address extraction from HTML
// snippets. It is a best-effort layer on top of the heuristic location
// parser: every failure mode is surfaced as a distinguishable error kind and
// callers proceed with their heuristic fields.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"

	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/logger"
)

var (
	// ErrAPI indicates a transport-level failure talking to the LLM API.
	ErrAPI = errors.New("llm api request failed")
	// ErrContent indicates the LLM refused or returned unusable content.
	ErrContent = errors.New("llm content error")
	// ErrJSONParsing indicates the LLM response was not the expected JSON.
	ErrJSONParsing = errors.New("llm response parsing failed")
)

// Address is the structured result of one extraction. Empty fields were not
// found in the snippet.
type Address struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
}

// completionClient is the slice of the OpenAI client the extractor needs.
// Tests substitute a stub.
type completionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client extracts addresses from HTML snippets via an LLM, retrying
// transport failures a fixed number of times with a fixed delay.
type Client struct {
	api        completionClient
	model      string
	maxRetries uint64
	retryDelay time.Duration
	log        *logger.Logger
}

// NewClient builds a Client. An empty API key returns an error; callers
// treat that as enrichment disabled.
func NewClient(apiKey, model string, maxRetries int, retryDelay time.Duration, log *logger.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: no API key configured", ErrAPI)
	}
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Client{
		api:        openai.NewClient(apiKey),
		model:      model,
		maxRetries: uint64(maxRetries),
		retryDelay: retryDelay,
		log:        log,
	}, nil
}

const promptTemplate = `Extract the address information (address, city, state, zip_code) from the following HTML snippet.
Return the result as a JSON object with the following structure:
{"address": "string | null", "city": "string | null", "state": "string | null", "zip_code": "string | null"}
If a field cannot be found, use null for its value. Only return the JSON object, nothing else.

HTML Snippet:
%s
`

// ExtractAddress sends an HTML snippet to the LLM and parses the structured
// address out of the response. Transport failures are retried with a
// constant delay; content and parsing failures are not retried. All errors
// wrap one of ErrAPI, ErrContent or ErrJSONParsing.
func (c *Client) ExtractAddress(ctx context.Context, htmlSnippet string) (*Address, error) {
	var addr *Address

	operation := func() error {
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.model,
			Temperature: 0.2,
			MaxTokens:   1024,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: fmt.Sprintf(promptTemplate, htmlSnippet),
				},
			},
		})
		if err != nil {
			// Retryable transport failure.
			return fmt.Errorf("%w: %v", ErrAPI, err)
		}

		if len(resp.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("%w: empty response", ErrContent))
		}
		if reason := resp.Choices[0].FinishReason; reason == openai.FinishReasonContentFilter {
			return backoff.Permanent(fmt.Errorf("%w: response blocked by content filter", ErrContent))
		}

		parsed, err := parseAddressResponse(resp.Choices[0].Message.Content)
		if err != nil {
			return backoff.Permanent(err)
		}
		addr = parsed
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryDelay), c.maxRetries-1),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		if c.log != nil {
			c.log.Warn("address enrichment failed", logger.Fields{"error": err.Error()})
		}
		return nil, err
	}
	return addr, nil
}

// parseAddressResponse decodes the LLM output into an Address, tolerating
// markdown code fences and normalizing explicit nulls to empty strings.
func parseAddressResponse(raw string) (*Address, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var fields map[string]*string
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJSONParsing, err)
	}

	for _, key := range []string{"address", "city", "state", "zip_code"} {
		if _, ok := fields[key]; !ok {
			return nil, fmt.Errorf("%w: missing expected key %q", ErrJSONParsing, key)
		}
	}

	get := func(key string) string {
		if v := fields[key]; v != nil {
			return strings.TrimSpace(*v)
		}
		return ""
	}

	return &Address{
		Address: get("address"),
		City:    get("city"),
		State:   get("state"),
		ZipCode: get("zip_code"),
	}, nil
}
