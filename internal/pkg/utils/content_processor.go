package utils

import (
	"regexp"
	"strings"
)

var (
	anchorRe = regexp.MustCompile(`<a\s+([^>]*href="https?://[^"]*"[^>]*)>`)
	imgRe    = regexp.MustCompile(`<img\s+([^>]*)>`)
)

// ProcessHTMLContent normalizes post HTML before rendering: external links
// get target="_blank" with rel="noopener" and images are lazy-loaded.
// Content comes from the admin editor, so it is trusted but not normalized.
func ProcessHTMLContent(content string) string {
	content = anchorRe.ReplaceAllStringFunc(content, func(tag string) string {
		attrs := anchorRe.FindStringSubmatch(tag)[1]
		if !strings.Contains(attrs, "target=") {
			attrs += ` target="_blank"`
		}
		if !strings.Contains(attrs, "rel=") {
			attrs += ` rel="noopener"`
		}
		return "<a " + attrs + ">"
	})

	content = imgRe.ReplaceAllStringFunc(content, func(tag string) string {
		attrs := imgRe.FindStringSubmatch(tag)[1]
		if !strings.Contains(attrs, "loading=") {
			attrs += ` loading="lazy"`
		}
		return "<img " + attrs + ">"
	})

	return content
}
