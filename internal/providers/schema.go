package providers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// extractionSchema validates the structured extraction payload at the
// provider boundary. Anything that fails this maps to an empty result.
const extractionSchema = `{
	"type": "object",
	"required": ["segments"],
	"properties": {
		"segments": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["original", "translated"],
				"properties": {
					"original": {"type": "string"},
					"translated": {"type": "string"},
					"flags": {"type": "array", "items": {"type": "string"}}
				}
			}
		}
	}
}`

// auditSchema validates the structured audit payload. Score bounds are
// clamped after validation rather than rejected, since evaluators
// occasionally emit 10.0 as "10".
const auditSchema = `{
	"type": "object",
	"required": ["scores"],
	"properties": {
		"scores": {
			"type": "object",
			"additionalProperties": {"type": "number"}
		},
		"reason": {"type": "string"},
		"suggestions": {"type": "string"}
	}
}`

var (
	compiledExtractionSchema = mustCompileSchema("extraction.json", extractionSchema)
	compiledAuditSchema      = mustCompileSchema("audit.json", auditSchema)
)

func mustCompileSchema(name, schema string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader([]byte(schema))); err != nil {
		panic(fmt.Sprintf("invalid embedded schema %s: %v", name, err))
	}
	return compiler.MustCompile(name)
}

// parseStructuredJSON parses JSON from model output, with lightweight
// recovery for markdown code fences and surrounding prose.
func parseStructuredJSON(content string) (json.RawMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty structured output")
	}

	candidates := []string{content}
	if stripped := stripCodeFences(content); stripped != "" && stripped != content {
		candidates = append(candidates, stripped)
	}
	if extracted := extractJSONCandidate(content); extracted != "" && extracted != content {
		candidates = append(candidates, extracted)
	}

	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		var parsed any
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			normalized, mErr := json.Marshal(parsed)
			if mErr != nil {
				return nil, fmt.Errorf("failed to normalize structured output: %w", mErr)
			}
			return normalized, nil
		}
	}

	return nil, fmt.Errorf("failed to parse structured JSON")
}

func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return ""
	}

	lines = lines[1:]
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func extractJSONCandidate(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return ""
	}

	start := strings.Index(trimmed, "{")
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(trimmed, "}")
	if end < start {
		return ""
	}
	return strings.TrimSpace(trimmed[start : end+1])
}

// decodeExtraction parses and validates extraction output.
// Any parse or validation failure yields (nil, error); callers map that to
// an empty segment list rather than propagating.
func decodeExtraction(content string) ([]Segment, error) {
	raw, err := parseStructuredJSON(content)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode extraction JSON: %w", err)
	}
	if err := compiledExtractionSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("extraction output does not match schema: %w", err)
	}

	var payload struct {
		Segments []Segment `json:"segments"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode extraction segments: %w", err)
	}
	return payload.Segments, nil
}

// decodeAudit parses and validates audit output, clamping scores to [0,10].
func decodeAudit(content string) (scores map[string]float64, reason, suggestions string, err error) {
	raw, err := parseStructuredJSON(content)
	if err != nil {
		return nil, "", "", err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, "", "", fmt.Errorf("failed to decode audit JSON: %w", err)
	}
	if err := compiledAuditSchema.Validate(doc); err != nil {
		return nil, "", "", fmt.Errorf("audit output does not match schema: %w", err)
	}

	var payload struct {
		Scores      map[string]float64 `json:"scores"`
		Reason      string             `json:"reason"`
		Suggestions string             `json:"suggestions"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, "", "", fmt.Errorf("failed to decode audit payload: %w", err)
	}

	for dim, score := range payload.Scores {
		if score < 0 {
			payload.Scores[dim] = 0
		} else if score > 10 {
			payload.Scores[dim] = 10
		}
	}
	return payload.Scores, payload.Reason, payload.Suggestions, nil
}
