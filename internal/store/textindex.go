// internal/store/textindex.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"talent-engine/internal/common/logger"
)

// maxTextHits caps the id set handed back to the Tier-1 fetch. A free-text
// query matching more profiles than this is too broad to rank usefully.
const maxTextHits = 1000

// TextIndexStore resolves free-text queries against the elasticsearch
// profile index. Optional; when the index is disabled the pipeline pushes
// the text predicate to postgres instead.
type TextIndexStore struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewTextIndexStore(client *elasticsearch.Client, index string, log logger.Logger) *TextIndexStore {
	return &TextIndexStore{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "text-index"}),
	}
}

// SearchProfileIDs returns ids of profiles whose indexed text matches the
// query. Only ids come back; the row fetch stays with postgres so the index
// never becomes a second source of truth for profile fields.
func (t *TextIndexStore) SearchProfileIDs(ctx context.Context, query string) ([]string, error) {
	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"firstName", "lastName", "email", "headline", "location"},
			},
		},
		"_source": false,
		"size":    maxTextHits,
	}

	body, err := json.Marshal(queryBody)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{t.index},
		Body:  strings.NewReader(string(body)),
	}

	res, err := req.Do(ctx, t.client)
	if err != nil {
		return nil, fmt.Errorf("text search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("text search failed: %s", res.String())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode text search response: %w", err)
	}

	ids := make([]string, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		ids = append(ids, hit.ID)
	}

	t.logger.Debug("text query resolved", map[string]interface{}{
		"query": query,
		"hits":  len(ids),
	})
	return ids, nil
}
