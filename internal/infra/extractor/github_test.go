package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitHubExtractor_CanHandle(t *testing.T) {
	ex := GitHubExtractor{}
	assert.True(t, ex.CanHandle("github.com"))
	assert.False(t, ex.CanHandle("gitlab.com"))
}

func TestGitHubExtractor_ClassifiesReleaseAndExtractsBody(t *testing.T) {
	html := `<html><body>
		<div class="release-header"><span class="f1">v1.2.0</span></div>
		<relative-time datetime="2024-03-01T10:00:00Z"></relative-time>
		<div class="markdown-body"><p>Release notes go here.</p></div>
		<span class="css-truncate-target">v1.2.0</span>
		</body></html>`

	ex := GitHubExtractor{}
	result, err := ex.Extract("https://github.com/acme/widget/releases/tag/v1.2.0", []byte(html))
	require.NoError(t, err)

	assert.Equal(t, "v1.2.0", result.Title)
	assert.Equal(t, "acme/widget", result.SiteName)
	assert.Equal(t, "github_release", result.ExtractorID)
	assert.Contains(t, result.Content, "Release notes")
	assert.Equal(t, []string{"v1.2.0"}, result.Tags)
	require.NotNil(t, result.PublishedAt)
}

func TestGitHubExtractor_RepositoryFallsBackToReadme(t *testing.T) {
	html := `<html><body>
		<h1>widget</h1>
		<div id="readme"><div class="markdown-body"><p>Project readme content.</p></div></div>
		</body></html>`

	ex := GitHubExtractor{}
	result, err := ex.Extract("https://github.com/acme/widget", []byte(html))
	require.NoError(t, err)

	assert.Equal(t, "github_repository", result.ExtractorID)
	assert.Contains(t, result.Content, "Project readme content")
}
