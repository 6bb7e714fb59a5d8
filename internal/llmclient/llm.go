package llmclient

import (
	"context"
	"encoding/json"
	"errors"

	genai "google.golang.org/genai"
)

var (
	ErrEmptyResponse = errors.New("llmclient: empty response from model")
)

// ImagePart is one inline image payload attached to a request.
type ImagePart struct {
	MIMEType string
	Data     []byte
}

// Request is a single structured-output generation call: an instruction,
// optional inline images and an optional response schema the service is
// contracted to honor.
type Request struct {
	Prompt string
	Images []ImagePart
	Schema *genai.Schema
}

// LLMClient is the minimal surface the analysis pipeline needs. The concrete
// client owns only the API call itself; the pipeline owns validation and
// failure mapping.
type LLMClient interface {
	Name() string
	GenerateJSON(ctx context.Context, req Request) (json.RawMessage, error)
	Close() error
}
