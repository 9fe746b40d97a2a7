package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessHTMLContentExternalLinks(t *testing.T) {
	in := `<p>Read <a href="https://go.dev/doc">the docs</a>.</p>`
	out := ProcessHTMLContent(in)

	assert.Contains(t, out, `target="_blank"`)
	assert.Contains(t, out, `rel="noopener"`)
	assert.Contains(t, out, `href="https://go.dev/doc"`)
}

func TestProcessHTMLContentKeepsExistingAttributes(t *testing.T) {
	in := `<a href="https://example.com" target="_self" rel="nofollow">x</a>`
	out := ProcessHTMLContent(in)

	assert.Equal(t, 1, strings.Count(out, "target="))
	assert.Equal(t, 1, strings.Count(out, "rel="))
	assert.Contains(t, out, `rel="nofollow"`)
}

func TestProcessHTMLContentInternalLinksUntouched(t *testing.T) {
	in := `<a href="/courses/go-basics">Go basics</a>`
	assert.Equal(t, in, ProcessHTMLContent(in))
}

func TestProcessHTMLContentLazyImages(t *testing.T) {
	in := `<img src="/img/cover.png" alt="cover">`
	out := ProcessHTMLContent(in)

	assert.Contains(t, out, `loading="lazy"`)
	assert.Equal(t, 1, strings.Count(out, "loading="))

	eager := `<img src="/img/hero.png" loading="eager">`
	assert.Equal(t, eager, ProcessHTMLContent(eager))
}
