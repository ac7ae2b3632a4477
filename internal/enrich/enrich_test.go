package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type stubAPI struct {
	responses []string
	errs      []error
	calls     int
}

func (s *stubAPI) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return openai.ChatCompletionResponse{}, s.errs[i]
	}
	content := ""
	if i < len(s.responses) {
		content = s.responses[i]
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}, nil
}

func newTestClient(api completionClient) *Client {
	return &Client{
		api:        api,
		model:      "gpt-4o-mini",
		maxRetries: 3,
		retryDelay: time.Millisecond,
	}
}

func TestExtractAddress(t *testing.T) {
	api := &stubAPI{responses: []string{
		`{"address": "123 Main St", "city": "Wickenburg", "state": "AZ", "zip_code": "85390"}`,
	}}

	addr, err := newTestClient(api).ExtractAddress(context.Background(), "<div>123 Main St, Wickenburg AZ 85390</div>")
	if err != nil {
		t.Fatalf("ExtractAddress failed: %v", err)
	}
	if addr.City != "Wickenburg" || addr.State != "AZ" || addr.ZipCode != "85390" {
		t.Errorf("unexpected address: %+v", addr)
	}
}

func TestExtractAddressMarkdownFences(t *testing.T) {
	api := &stubAPI{responses: []string{
		"```json\n{\"address\": null, \"city\": \"Durham\", \"state\": \"ON\", \"zip_code\": null}\n```",
	}}

	addr, err := newTestClient(api).ExtractAddress(context.Background(), "<td>Durham Forest</td>")
	if err != nil {
		t.Fatalf("ExtractAddress failed: %v", err)
	}
	if addr.Address != "" || addr.ZipCode != "" {
		t.Errorf("null fields should normalize to empty strings: %+v", addr)
	}
	if addr.City != "Durham" {
		t.Errorf("expected city Durham, got %q", addr.City)
	}
}

func TestExtractAddressRetriesTransportErrors(t *testing.T) {
	api := &stubAPI{
		errs: []error{errors.New("connection reset"), errors.New("timeout"), nil},
		responses: []string{"", "",
			`{"address": null, "city": "Sonoita", "state": "AZ", "zip_code": null}`,
		},
	}

	addr, err := newTestClient(api).ExtractAddress(context.Background(), "<div></div>")
	if err != nil {
		t.Fatalf("expected retries to recover, got %v", err)
	}
	if api.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", api.calls)
	}
	if addr.City != "Sonoita" {
		t.Errorf("unexpected address: %+v", addr)
	}
}

func TestExtractAddressExhaustsRetries(t *testing.T) {
	api := &stubAPI{
		errs: []error{errors.New("down"), errors.New("down"), errors.New("down")},
	}

	_, err := newTestClient(api).ExtractAddress(context.Background(), "<div></div>")
	if err == nil {
		t.Fatal("expected failure after exhausting retries")
	}
	if !errors.Is(err, ErrAPI) {
		t.Errorf("expected ErrAPI, got %v", err)
	}
	if api.calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", api.calls)
	}
}

func TestExtractAddressBadJSONIsNotRetried(t *testing.T) {
	api := &stubAPI{responses: []string{"this is not json"}}

	_, err := newTestClient(api).ExtractAddress(context.Background(), "<div></div>")
	if err == nil {
		t.Fatal("expected parsing failure")
	}
	if !errors.Is(err, ErrJSONParsing) {
		t.Errorf("expected ErrJSONParsing, got %v", err)
	}
	if api.calls != 1 {
		t.Errorf("parsing failures must not be retried, got %d attempts", api.calls)
	}
}

func TestParseAddressResponseMissingKeys(t *testing.T) {
	_, err := parseAddressResponse(`{"address": "x", "city": "y"}`)
	if !errors.Is(err, ErrJSONParsing) {
		t.Errorf("missing keys should be a parsing error, got %v", err)
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient("", "gpt-4o-mini", 3, time.Second, nil)
	if !errors.Is(err, ErrAPI) {
		t.Errorf("expected ErrAPI for missing key, got %v", err)
	}
}
