package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	OpenAIName              = "openai"
	openAIDefaultImageModel = "gpt-image-1"
	openAIDefaultTextModel  = "gpt-4o"
)

// OpenAIConfig holds configuration for the OpenAI client.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string // Optional (tests)
	ImageModel string // "gpt-image-1" (default)
	TextModel  string // "gpt-4o" (default)
	Timeout    time.Duration
	RPM        int
	HTTPClient *http.Client // Optional (tests)
}

// OpenAIClient implements GenerationClient using the official OpenAI SDK.
// Extract and Audit go through chat completions with vision input; Redraw
// goes through the image edit endpoint.
type OpenAIClient struct {
	apiKey     string
	imageModel string
	textModel  string
	rpm        int
	client     openai.Client
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.ImageModel == "" {
		cfg.ImageModel = openAIDefaultImageModel
	}
	if cfg.TextModel == "" {
		cfg.TextModel = openAIDefaultTextModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 300 * time.Second
	}
	if cfg.RPM == 0 {
		cfg.RPM = 60
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0), // retries are owned by the retry controller
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		apiKey:     cfg.APIKey,
		imageModel: cfg.ImageModel,
		textModel:  cfg.TextModel,
		rpm:        cfg.RPM,
		client:     openai.NewClient(opts...),
	}
}

// Name returns the client identifier.
func (c *OpenAIClient) Name() string {
	return OpenAIName
}

// Model returns the redraw model identifier.
func (c *OpenAIClient) Model() string {
	return c.imageModel
}

// RequestsPerMinute returns the configured rate limit.
func (c *OpenAIClient) RequestsPerMinute() int {
	return c.rpm
}

// Extract performs structured OCR+translation on a page image.
func (c *OpenAIClient) Extract(ctx context.Context, req *ExtractRequest) (*ExtractResult, error) {
	prompt := extractionPrompt(req)

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.textModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL(req.MimeType, req.Image),
				}),
				openai.TextContentPart(prompt),
			}),
		},
	})
	if err != nil {
		return nil, c.mapError("extract", err)
	}
	if len(resp.Choices) == 0 {
		return nil, &CallError{
			Provider: OpenAIName,
			Op:       "extract",
			Kind:     ErrKindServer,
			Message:  "no choices in response",
		}
	}

	result := &ExtractResult{
		Usage: RawUsage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
		ModelUsed: c.textModel,
		Prompt:    prompt,
	}

	segments, parseErr := decodeExtraction(resp.Choices[0].Message.Content)
	if parseErr != nil {
		return result, nil
	}
	result.Segments = segments
	return result, nil
}

// Redraw produces a translated page image via the image edit endpoint.
// The edit endpoint keeps the input image's canvas, so AspectRatio is
// accepted but not forwarded.
func (c *OpenAIClient) Redraw(ctx context.Context, req *RedrawRequest) (*RedrawResult, error) {
	resp, err := c.client.Images.Edit(ctx, openai.ImageEditParams{
		Image: openai.ImageEditParamsImageUnion{
			OfFile: openai.File(bytes.NewReader(req.Image), "page.png", mimeOrPNG(req.MimeType)),
		},
		Prompt: req.Instructions,
		Model:  openai.ImageModel(c.imageModel),
	})
	if err != nil {
		return nil, c.mapError("redraw", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, &CallError{
			Provider: OpenAIName,
			Op:       "redraw",
			Kind:     ErrKindServer,
			Message:  "no image in redraw response",
		}
	}

	decoded, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, &CallError{
			Provider: OpenAIName,
			Op:       "redraw",
			Kind:     ErrKindParse,
			Message:  fmt.Sprintf("invalid base64 image payload: %v", err),
		}
	}

	return &RedrawResult{
		Image:    decoded,
		MimeType: "image/png",
		Usage: RawUsage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
		ModelUsed: c.imageModel,
	}, nil
}

// Audit scores a translated page against the original.
func (c *OpenAIClient) Audit(ctx context.Context, req *AuditRequest) (*AuditResult, error) {
	prompt := auditPrompt(req)

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.textModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL(req.MimeType, req.OriginalImage),
				}),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL(req.MimeType, req.TranslatedImage),
				}),
				openai.TextContentPart(prompt),
			}),
		},
	})
	if err != nil {
		return nil, c.mapError("audit", err)
	}
	if len(resp.Choices) == 0 {
		return nil, &CallError{
			Provider: OpenAIName,
			Op:       "audit",
			Kind:     ErrKindServer,
			Message:  "no choices in response",
		}
	}

	scores, reason, suggestions, parseErr := decodeAudit(resp.Choices[0].Message.Content)
	if parseErr != nil {
		return nil, &CallError{
			Provider: OpenAIName,
			Op:       "audit",
			Kind:     ErrKindParse,
			Message:  fmt.Sprintf("audit response unparseable: %v", parseErr),
		}
	}

	return &AuditResult{
		Scores:      scores,
		Reason:      reason,
		Suggestions: suggestions,
		Usage: RawUsage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
		ModelUsed: c.textModel,
	}, nil
}

// mapError converts SDK errors to CallError with verbatim messages.
func (c *OpenAIClient) mapError(op string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = fmt.Sprintf("OpenAI error (status %d)", apiErr.StatusCode)
		}
		return &CallError{
			Provider:   OpenAIName,
			Op:         op,
			StatusCode: apiErr.StatusCode,
			Kind:       kindForStatus(apiErr.StatusCode),
			Message:    msg,
		}
	}
	return fmt.Errorf("openai %s request failed: %w", op, err)
}

func dataURL(mime string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeOrPNG(mime), base64.StdEncoding.EncodeToString(data))
}

// Verify interface
var _ GenerationClient = (*OpenAIClient)(nil)
