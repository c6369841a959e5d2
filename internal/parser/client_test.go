// internal/parser/client_test.go
package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent-engine/internal/common/errors"
	"talent-engine/internal/common/logger"
)

func createTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c, err := NewClient(server.URL, 5*time.Second, logger.NewTestLogger(t))
	require.NoError(t, err)
	return c
}

func TestParseDocument(t *testing.T) {
	c := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/parse", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"experience": [{"company": "Acme", "role": "Engineer", "startDate": "2019-01"}],
			"education": [{"institution": "TU Berlin", "degree": "BSc"}],
			"certifications": [{"name": "CKA"}],
			"languages": [{"name": "German", "level": "C2"}],
			"skills": [{"name": "Go", "level": 5}]
		}`))
	})

	doc, err := c.ParseDocument(context.Background(), "uploads/cv-1.pdf")
	require.NoError(t, err)

	require.Len(t, doc.Experience, 1)
	assert.Equal(t, "Acme", doc.Experience[0].Company)
	require.Len(t, doc.Skills, 1)
	assert.Equal(t, "Go", doc.Skills[0].Name)
	assert.Equal(t, 5, doc.Skills[0].Level)
}

func TestParseDocument_EmptySections(t *testing.T) {
	c := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	doc, err := c.ParseDocument(context.Background(), "uploads/cv-2.pdf")
	require.NoError(t, err)
	assert.Empty(t, doc.Experience)
	assert.Empty(t, doc.Skills)
}

func TestParseDocument_SchemaViolation(t *testing.T) {
	c := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Experience item missing its role, which dedup keys off.
		w.Write([]byte(`{"experience": [{"company": "Acme"}]}`))
	})

	_, err := c.ParseDocument(context.Background(), "uploads/cv-3.pdf")
	require.Error(t, err)
	assert.True(t, errors.IsInput(err), "schema violations are document errors, not transient failures")
}

func TestParseDocument_ServiceError(t *testing.T) {
	c := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.ParseDocument(context.Background(), "uploads/cv-4.pdf")
	require.Error(t, err)
	assert.True(t, errors.IsCollaborator(err))
}

func TestParseDocument_ServiceUnreachable(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:1", time.Second, logger.NewTestLogger(t))
	require.NoError(t, err)

	_, err = c.ParseDocument(context.Background(), "uploads/cv-5.pdf")
	require.Error(t, err)
	assert.True(t, errors.IsCollaborator(err))
}
