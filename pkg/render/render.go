// Package render turns assistant output into display markup. Markdown
// prose is converted with goldmark; pre-built preview blocks wrapped in
// <HTML>...</HTML> are lifted out first and reinserted untouched, so
// markdown escaping can never corrupt them.
package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
)

var htmlBlockRe = regexp.MustCompile(`(?s)<HTML>(.*?)</HTML>`)
var linkCardRe = regexp.MustCompile(`link_card\("([^"]+)",\s*"([^"]+)",\s*"([^"]+)"\)`)
var youtubeRe = regexp.MustCompile(`youtube_embed\("([^"]+)"\)`)

var md = goldmark.New()

// FormatAssistantHTML renders assistant text to markup. <HTML> blocks are
// extracted to placeholders, the remaining prose is markdown-formatted,
// then the blocks are reinserted byte-for-byte (directives expanded, raw
// markup untouched).
func FormatAssistantHTML(text string) (string, error) {
	var blocks []string
	withPlaceholders := htmlBlockRe.ReplaceAllStringFunc(text, func(match string) string {
		inner := htmlBlockRe.FindStringSubmatch(match)[1]
		blocks = append(blocks, expandDirective(inner))
		return placeholder(len(blocks) - 1)
	})

	var buf bytes.Buffer
	if err := md.Convert([]byte(withPlaceholders), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	out := buf.String()
	for i, block := range blocks {
		out = strings.Replace(out, placeholder(i), block, 1)
	}
	return out, nil
}

// placeholder must survive markdown conversion unaltered, so it is plain
// alphanumeric text.
func placeholder(i int) string {
	return fmt.Sprintf("SGBLOCKTOKEN%dX", i)
}

// expandDirective turns link_card / youtube_embed directives into preview
// markup. Anything else is pre-built markup and passes through verbatim.
func expandDirective(content string) string {
	if m := linkCardRe.FindStringSubmatch(content); m != nil {
		return LinkCard(m[1], m[2], m[3])
	}
	if m := youtubeRe.FindStringSubmatch(content); m != nil {
		return YouTubeEmbed(m[1])
	}
	return content
}

// LinkCard builds the link-preview markup for a resource.
func LinkCard(title, description, url string) string {
	return fmt.Sprintf(`<a href="%s" target="_blank" class="link-preview"><div class="link-title">%s</div><div class="link-description">%s</div><div class="link-url">%s</div></a>`,
		url, title, description, url)
}

// YouTubeEmbed builds the video-embed markup for a YouTube id.
func YouTubeEmbed(videoID string) string {
	return fmt.Sprintf(`<div class="video-embed"><iframe width="300" height="169" src="https://www.youtube.com/embed/%s" frameborder="0" allowfullscreen></iframe></div>`,
		videoID)
}
