package advisor

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"fintel/internal/errs"
	"fintel/internal/logging"
)

// Model responses arrive fenced or prose-wrapped more often than as
// clean JSON. Decoding peels Markdown code fences first and falls back
// to the outermost brace pair before giving up.

var (
	fenceOpen  = regexp.MustCompile("(?m)^```(?:json)?\\s*")
	fenceClose = regexp.MustCompile("(?m)\\s*```\\s*$")
)

func stripFences(text string) string {
	text = fenceOpen.ReplaceAllString(text, "")
	text = fenceClose.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// decodeModelJSON parses a model response into out. Unparseable text is
// a request failure naming the model.
func decodeModelJSON(model, text string, out any) error {
	cleaned := stripFences(text)
	if json.Unmarshal([]byte(cleaned), out) == nil {
		return nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if json.Unmarshal([]byte(cleaned[start:end+1]), out) == nil {
			return nil
		}
	}

	logging.AdvisorWarn("Failed to parse JSON from %s response", model)
	return &errs.RequestFailedError{
		Endpoint: "genai:" + model,
		Cause:    errors.New("model response is not valid JSON"),
	}
}
