package classify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sells-group/payee-cli/internal/model"
	"github.com/sells-group/payee-cli/pkg/anthropic"
)

const classifySystemPrompt = `You classify payee names from financial records as either a business entity or an individual person. Respond with a valid JSON object and nothing else: {"classification": "Business"|"Individual", "confidence": <integer 0-100>, "reasoning": "<one sentence>"}

Guidance:
- Legal designators (LLC, Inc, Corp, Ltd, GmbH, etc.) indicate Business.
- Government entities, agencies, and departments are Business.
- Sole proprietors doing business under a trade name are Business.
- Names in "Last, First" or "First Middle Last" form without commercial markers are usually Individual.
- When uncertain, pick the more likely label and reflect the uncertainty in the confidence score.`

const classifyUserPrompt = `Payee name: %s`

// ParseError indicates a malformed AI response or persisted record. A single
// ParseError drops that record only; it never aborts the surrounding
// operation.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %v (input: %.80s)", e.Err, e.Input)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// aiResponse is the JSON shape the model is instructed to return.
type aiResponse struct {
	Classification string `json:"classification"`
	Confidence     int    `json:"confidence"`
	Reasoning      string `json:"reasoning"`
}

// BuildAIRequest assembles the standard classification request for one payee
// name, with the shared system prompt marked for caching. Synchronous calls
// and batch submission build identical requests so results stay comparable.
func BuildAIRequest(modelID string, maxTokens int64, name string) anthropic.MessageRequest {
	return anthropic.MessageRequest{
		Model:     modelID,
		MaxTokens: maxTokens,
		System:    anthropic.BuildCachedSystemBlocks(classifySystemPrompt),
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(classifyUserPrompt, name)},
		},
	}
}

// ParseAIResponse decodes a model response into a ClassificationResult with
// tier AIConsensus. Markdown code fences around the JSON are tolerated.
func ParseAIResponse(text string) (model.ClassificationResult, error) {
	cleaned := cleanJSON(text)

	var resp aiResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return model.ClassificationResult{}, &ParseError{Input: text, Err: err}
	}

	var label model.Label
	switch strings.ToLower(strings.TrimSpace(resp.Classification)) {
	case "business":
		label = model.LabelBusiness
	case "individual":
		label = model.LabelIndividual
	default:
		return model.ClassificationResult{}, &ParseError{
			Input: text,
			Err:   fmt.Errorf("unknown classification %q", resp.Classification),
		}
	}

	reasoning := resp.Reasoning
	if reasoning == "" {
		reasoning = "AI classification"
	}

	return model.NewClassificationResult(label, resp.Confidence, model.TierAIConsensus, reasoning), nil
}

// cleanJSON strips markdown code fences and surrounding prose so the payload
// can be unmarshalled. Models occasionally wrap JSON in ```json blocks despite
// instructions.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx >= 0 {
			text = text[idx+1:]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	// Salvage the first JSON object embedded in prose.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}
