package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstackExtractor_CanHandle(t *testing.T) {
	ex := SubstackExtractor{}
	assert.True(t, ex.CanHandle("example.substack.com"))
	assert.False(t, ex.CanHandle("example.com"))
}

func TestSubstackExtractor_Extract(t *testing.T) {
	html := `<html><body>
		<div class="publication-name">The Newsletter</div>
		<h1 class="post-title">Weekly Update</h1>
		<div class="author-name">Jane Author</div>
		<div class="post-content">
			<p>Body text that is reasonably long for word counting purposes here.</p>
			<img src="https://example.com/a.png">
			<img src="data:image/png;base64,AAA">
			<div class="subscribe-widget">Subscribe now!</div>
		</div>
		</body></html>`

	ex := SubstackExtractor{}
	result, err := ex.Extract("https://example.substack.com/p/weekly-update", []byte(html))
	require.NoError(t, err)

	assert.Equal(t, "Weekly Update", result.Title)
	assert.Equal(t, "The Newsletter", result.SiteName)
	assert.Equal(t, "Jane Author", result.Author)
	assert.Contains(t, result.Images, "https://example.com/a.png")
	assert.NotContains(t, result.Content, "Subscribe now!")
	assert.Equal(t, "substack", result.ExtractorID)
}
