package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	GeminiName    = "gemini"
	GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	GeminiDefaultImageModel = "gemini-2.5-flash-image"
	GeminiDefaultTextModel  = "gemini-2.5-flash"
)

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey     string
	BaseURL    string
	ImageModel string // image-to-image redraw model
	TextModel  string // structured extraction/audit model
	Timeout    time.Duration
	RPM        int // requests per minute (default: 10)
}

// GeminiClient implements GenerationClient against the Gemini REST API.
// Redraw uses the image model; Extract and Audit use the text model with
// vision input and JSON output.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	imageModel string
	textModel  string
	rpm        int
	client     *http.Client
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = GeminiBaseURL
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = GeminiDefaultImageModel
	}
	if cfg.TextModel == "" {
		cfg.TextModel = GeminiDefaultTextModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 180 * time.Second
	}
	if cfg.RPM == 0 {
		cfg.RPM = 10
	}

	return &GeminiClient{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		imageModel: cfg.ImageModel,
		textModel:  cfg.TextModel,
		rpm:        cfg.RPM,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name returns the client identifier.
func (c *GeminiClient) Name() string {
	return GeminiName
}

// Model returns the redraw model identifier.
func (c *GeminiClient) Model() string {
	return c.imageModel
}

// RequestsPerMinute returns the configured rate limit.
func (c *GeminiClient) RequestsPerMinute() int {
	return c.rpm
}

// Extract performs structured OCR+translation on a page image.
func (c *GeminiClient) Extract(ctx context.Context, req *ExtractRequest) (*ExtractResult, error) {
	prompt := extractionPrompt(req)

	gReq := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{InlineData: &geminiInlineData{MimeType: mimeOrPNG(req.MimeType), Data: base64.StdEncoding.EncodeToString(req.Image)}},
				{Text: prompt},
			},
		}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseMimeType: "application/json",
		},
	}

	resp, err := c.doGenerate(ctx, "extract", c.textModel, &gReq)
	if err != nil {
		return nil, err
	}

	result := &ExtractResult{
		Usage:     resp.usage(),
		ModelUsed: c.textModel,
		Prompt:    prompt,
	}

	segments, parseErr := decodeExtraction(resp.text())
	if parseErr != nil {
		// Malformed structured output degrades to an empty extraction;
		// the pipeline decides whether to fall back to direct mode.
		return result, nil
	}
	result.Segments = segments
	return result, nil
}

// Redraw produces a translated page image.
func (c *GeminiClient) Redraw(ctx context.Context, req *RedrawRequest) (*RedrawResult, error) {
	gReq := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{InlineData: &geminiInlineData{MimeType: mimeOrPNG(req.MimeType), Data: base64.StdEncoding.EncodeToString(req.Image)}},
				{Text: req.Instructions},
			},
		}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"IMAGE"},
		},
	}
	if req.AspectRatio != "" {
		gReq.GenerationConfig.ImageConfig = &geminiImageConfig{AspectRatio: req.AspectRatio}
	}

	resp, err := c.doGenerate(ctx, "redraw", c.imageModel, &gReq)
	if err != nil {
		return nil, err
	}

	mime, data := resp.inlineImage()
	if len(data) == 0 {
		return nil, &CallError{
			Provider: GeminiName,
			Op:       "redraw",
			Kind:     ErrKindServer,
			Message:  "no image in redraw response",
		}
	}

	return &RedrawResult{
		Image:     data,
		MimeType:  mime,
		Usage:     resp.usage(),
		ModelUsed: c.imageModel,
	}, nil
}

// Audit scores a translated page against the original.
func (c *GeminiClient) Audit(ctx context.Context, req *AuditRequest) (*AuditResult, error) {
	prompt := auditPrompt(req)

	gReq := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{InlineData: &geminiInlineData{MimeType: mimeOrPNG(req.MimeType), Data: base64.StdEncoding.EncodeToString(req.OriginalImage)}},
				{InlineData: &geminiInlineData{MimeType: mimeOrPNG(req.MimeType), Data: base64.StdEncoding.EncodeToString(req.TranslatedImage)}},
				{Text: prompt},
			},
		}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseMimeType: "application/json",
		},
	}

	resp, err := c.doGenerate(ctx, "audit", c.textModel, &gReq)
	if err != nil {
		return nil, err
	}

	scores, reason, suggestions, parseErr := decodeAudit(resp.text())
	if parseErr != nil {
		return nil, &CallError{
			Provider: GeminiName,
			Op:       "audit",
			Kind:     ErrKindParse,
			Message:  fmt.Sprintf("audit response unparseable: %v", parseErr),
		}
	}

	return &AuditResult{
		Scores:      scores,
		Reason:      reason,
		Suggestions: suggestions,
		Usage:       resp.usage(),
		ModelUsed:   c.textModel,
	}, nil
}

// doGenerate makes a generateContent call and maps failures to CallError.
func (c *GeminiClient) doGenerate(ctx context.Context, op, model string, body *geminiRequest) (*geminiResponse, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("x-request-id", uuid.New().String())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(respBody)
		var errResp geminiErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			msg = errResp.Error.Message
		}
		return nil, &CallError{
			Provider:   GeminiName,
			Op:         op,
			StatusCode: resp.StatusCode,
			Kind:       kindForStatus(resp.StatusCode),
			Message:    fmt.Sprintf("Gemini error (status %d): %s", resp.StatusCode, msg),
		}
	}

	var gResp geminiResponse
	if err := json.Unmarshal(respBody, &gResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(gResp.Candidates) == 0 {
		return nil, &CallError{
			Provider: GeminiName,
			Op:       op,
			Kind:     ErrKindServer,
			Message:  "no candidates in response",
		}
	}
	return &gResp, nil
}

func mimeOrPNG(mime string) string {
	if mime == "" {
		return "image/png"
	}
	return mime
}

// extractionPrompt builds the structured extraction instruction text.
func extractionPrompt(req *ExtractRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Identify every piece of %s text on this document page and translate it to %s.\n",
		sourceOrAuto(req.SourceLang), req.TargetLang)
	b.WriteString("Return JSON: {\"segments\": [{\"original\": string, \"translated\": string, \"flags\": [string]}]}\n")
	b.WriteString("Preserve reading order. Flag brand or trademark text with \"trademark\" and leave it untranslated. ")
	b.WriteString("Flag text that already appears in both languages with \"redundant\" and translate it once.\n")
	if req.Glossary != "" {
		fmt.Fprintf(&b, "Use this glossary for terminology:\n%s\n", req.Glossary)
	}
	if req.Feedback != "" {
		fmt.Fprintf(&b, "A previous attempt received this correction feedback; account for it:\n%s\n", req.Feedback)
	}
	return b.String()
}

func sourceOrAuto(lang string) string {
	if lang == "" || strings.EqualFold(lang, "auto") || strings.EqualFold(lang, "auto-detect") {
		return "source-language"
	}
	return lang
}

// auditPrompt builds the audit instruction text around the caller's criteria.
func auditPrompt(req *AuditRequest) string {
	var b strings.Builder
	b.WriteString("The first image is an original document page; the second is its translated rendition. ")
	b.WriteString("Score the translation on each criterion from 0 to 10.\n")
	b.WriteString(req.Criteria)
	b.WriteString("\nReturn JSON: {\"scores\": {criterion: number}, \"reason\": string, \"suggestions\": string}\n")
	if req.Glossary != "" {
		fmt.Fprintf(&b, "Terminology glossary in effect:\n%s\n", req.Glossary)
	}
	return b.String()
}

// Gemini API types

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	ResponseMimeType   string             `json:"responseMimeType,omitempty"`
	ResponseModalities []string           `json:"responseModalities,omitempty"`
	ImageConfig        *geminiImageConfig `json:"imageConfig,omitempty"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason,omitempty"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

func (r *geminiResponse) usage() RawUsage {
	return RawUsage{
		InputTokens:  r.UsageMetadata.PromptTokenCount,
		OutputTokens: r.UsageMetadata.CandidatesTokenCount,
	}
}

// text returns the concatenated text parts of the first candidate.
func (r *geminiResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

// inlineImage returns the first inline image part of the first candidate.
func (r *geminiResponse) inlineImage() (mime string, data []byte) {
	if len(r.Candidates) == 0 {
		return "", nil
	}
	for _, part := range r.Candidates[0].Content.Parts {
		if part.InlineData == nil {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
		if err != nil {
			continue
		}
		return part.InlineData.MimeType, decoded
	}
	return "", nil
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Verify interface
var _ GenerationClient = (*GeminiClient)(nil)
