package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML("# Title\n\nhello **bold**\n\n![pic](a.png)")
	require.NoError(t, err)

	assert.Contains(t, html, `<h1 id="title">Title</h1>`)
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.Contains(t, html, `<img src="a.png" alt="pic">`)
}
