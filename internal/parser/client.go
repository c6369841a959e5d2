// internal/parser/client.go

// Package parser is the client for the external CV parse service. The
// service turns an uploaded document into structured fields; parsing itself
// is an opaque external call, so the client only validates the shape of
// what comes back before handing it to the merge engine.
package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"talent-engine/internal/common/errors"
	"talent-engine/internal/common/logger"
	"talent-engine/internal/engine/cvmerge"
)

// documentSchema is the contract on the parse response. Unknown top-level
// fields are tolerated; items missing their identity fields are not, since
// dedup keys off them.
const documentSchema = `{
	"type": "object",
	"properties": {
		"experience": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"company": {"type": "string"},
					"role": {"type": "string"}
				},
				"required": ["company", "role"]
			}
		},
		"education": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"institution": {"type": "string"},
					"degree": {"type": "string"}
				},
				"required": ["institution", "degree"]
			}
		},
		"certifications": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {"name": {"type": "string"}},
				"required": ["name"]
			}
		},
		"languages": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {"name": {"type": "string"}},
				"required": ["name"]
			}
		},
		"skills": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"name": {"type": "string"},
					"level": {"type": "integer", "minimum": 0, "maximum": 5}
				},
				"required": ["name"]
			}
		}
	}
}`

type Client struct {
	baseURL    string
	httpClient *http.Client
	schema     *gojsonschema.Schema
	logger     logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, log logger.Logger) (*Client, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(documentSchema))
	if err != nil {
		return nil, fmt.Errorf("compile document schema: %w", err)
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		schema: schema,
		logger: log.WithFields(map[string]interface{}{"component": "parser-client"}),
	}, nil
}

type parseRequest struct {
	FileRef string `json:"fileRef"`
}

// ParseDocument sends the stored file reference to the parse service and
// returns the structured document. Service failures are collaborator
// errors; a response that violates the schema is an invalid document, not
// a transient failure.
func (c *Client) ParseDocument(ctx context.Context, fileRef string) (*cvmerge.ParsedDocument, error) {
	payload, err := json.Marshal(parseRequest{FileRef: fileRef})
	if err != nil {
		return nil, fmt.Errorf("marshal parse request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/parse", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build parse request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewCollaboratorError(errors.ErrCodeDocumentParseFailed, "parse service unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewCollaboratorError(errors.ErrCodeDocumentParseFailed, "read parse response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewCollaboratorError(errors.ErrCodeDocumentParseFailed,
			fmt.Sprintf("parse service returned %d", resp.StatusCode), nil)
	}

	if err := c.validate(body); err != nil {
		return nil, err
	}

	var doc cvmerge.ParsedDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, errors.NewInvalidDocumentError(fmt.Sprintf("malformed parse response: %v", err))
	}

	c.logger.Info("document parsed", map[string]interface{}{
		"fileRef":    fileRef,
		"experience": len(doc.Experience),
		"education":  len(doc.Education),
		"skills":     len(doc.Skills),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return &doc, nil
}

func (c *Client) validate(body []byte) error {
	result, err := c.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return errors.NewInvalidDocumentError(fmt.Sprintf("response is not valid JSON: %v", err))
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return errors.NewInvalidDocumentError(fmt.Sprintf("document validation failed: %v", errs))
	}
	return nil
}
