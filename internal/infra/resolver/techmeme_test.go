package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTechmeme_FromDescription(t *testing.T) {
	r := New(5 * time.Second)
	description := `<a href="https://techmeme.com/internal">internal</a> <a href="https://example.com/story">the story</a>`

	result, err := r.resolveTechmeme(context.Background(), "https://www.techmeme.com/x", description)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/story", result.SourceURL)
	assert.Equal(t, 0.9, result.Confidence)
}

func TestResolveTechmeme_FetchesPageForCluster(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`<html><body>
			<a name="a250101p1"></a>
			<div class="clus">
				<div class="ii"><a href="https://publisher.example.com/article">link</a></div>
			</div>
		</body></html>`))
	}))
	defer server.Close()

	r := New(5 * time.Second)
	result, err := r.resolveTechmeme(context.Background(), server.URL+"#a250101p1", "")
	require.NoError(t, err)

	assert.Equal(t, "https://publisher.example.com/article", result.SourceURL)
	assert.Equal(t, 0.95, result.Confidence)
}

func TestResolveTechmeme_NoSourceFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`<html><body><p>nothing here</p></body></html>`))
	}))
	defer server.Close()

	r := New(5 * time.Second)
	result, err := r.resolveTechmeme(context.Background(), server.URL, "")
	require.NoError(t, err)

	assert.Empty(t, result.SourceURL)
}
