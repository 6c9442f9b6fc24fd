// Package vectorizer is the boundary to the semantic indexing service.
// Indexing is best-effort: a failure is reported as a warning on the
// decision result and never rolls back the document it refers to.
package vectorizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/docintake/internal/config"
	"github.com/google/uuid"
)

type Indexer interface {
	Index(ctx context.Context, documentID uuid.UUID, text string) error
}

// HTTPIndexer posts documents to the external vectorization endpoint.
type HTTPIndexer struct {
	endpoint string
	client   *http.Client
}

func NewHTTPIndexer(cfg config.VectorizerConfig) *HTTPIndexer {
	return &HTTPIndexer{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

type indexRequest struct {
	DocumentID string `json:"document_id"`
	Text       string `json:"text"`
}

func (v *HTTPIndexer) Index(ctx context.Context, documentID uuid.UUID, text string) error {
	body, err := json.Marshal(indexRequest{DocumentID: documentID.String(), Text: text})
	if err != nil {
		return fmt.Errorf("encoding index request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building index request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling vectorizer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("vectorizer returned status %d", resp.StatusCode)
	}
	return nil
}

// Disabled is the no-op indexer used when vectorization is turned off.
type Disabled struct{}

func (Disabled) Index(ctx context.Context, documentID uuid.UUID, text string) error {
	return nil
}
