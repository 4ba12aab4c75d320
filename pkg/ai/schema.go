package ai

import (
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// Generated payloads are schema-checked before normalization so malformed
// completions fail fast as ErrParse instead of surfacing as zero values.

const questionArraySchema = `{
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["question"],
    "properties": {
      "question": {"type": "string", "minLength": 1},
      "type": {"type": "string"},
      "options": {"type": "array", "items": {"type": "string"}},
      "correctAnswer": {},
      "topic": {"type": "string"},
      "difficulty": {"type": "string"},
      "explanation": {"type": "string"}
    }
  }
}`

const predictionSchema = `{
  "type": "object",
  "required": ["level"],
  "properties": {
    "level": {"type": "string"},
    "confidence": {"type": "number"},
    "skillGaps": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "skill": {"type": "string"},
          "gapType": {"type": "string"},
          "priority": {"type": "string"}
        }
      }
    },
    "recommendations": {"type": "array", "items": {"type": "string"}},
    "estimatedReadinessWeeks": {"type": "number"}
  }
}`

var (
	compiledQuestionArray = jsonschema.MustCompileString("questions.json", questionArraySchema)
	compiledPrediction    = jsonschema.MustCompileString("prediction.json", predictionSchema)
)

// ValidateQuestionArray checks a raw generated question payload.
func ValidateQuestionArray(raw []byte) error {
	return validateAgainst(compiledQuestionArray, raw)
}

// ValidatePrediction checks a raw prediction payload.
func ValidatePrediction(raw []byte) error {
	return validateAgainst(compiledPrediction, raw)
}

func validateAgainst(schema *jsonschema.Schema, raw []byte) error {
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	if err := schema.Validate(decoded); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nil
}
