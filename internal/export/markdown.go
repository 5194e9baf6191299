// Package export renders stored notebooks to portable formats. The marker
// vocabulary used during generation never leaks into exports.
package export

import (
	"fmt"
	"strings"

	"noteforge/quill/internal/pipeline"
)

// Markdown renders a notebook as a Markdown document. Invalid images are
// skipped; valid ones are embedded via their data URIs.
func Markdown(nb *pipeline.Notebook) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", nb.Title)

	for _, item := range nb.Content {
		switch item.Type {
		case pipeline.ItemHeading:
			fmt.Fprintf(&sb, "## %s\n\n", item.Content)
		case pipeline.ItemSubheading:
			fmt.Fprintf(&sb, "### %s\n\n", item.Content)
		case pipeline.ItemPoints:
			for _, point := range item.Points {
				fmt.Fprintf(&sb, "- %s\n", point)
			}
			sb.WriteString("\n")
		case pipeline.ItemCode:
			fmt.Fprintf(&sb, "```%s\n%s\n```\n\n", item.Language, item.Content)
		case pipeline.ItemImage:
			if imageItemValid(item) {
				fmt.Fprintf(&sb, "![%s](%s)\n\n", item.Content, item.ImageData)
			}
		default:
			fmt.Fprintf(&sb, "%s\n\n", item.Content)
		}
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// imageItemValid applies the valid-image predicate to a content item.
func imageItemValid(item pipeline.ContentItem) bool {
	return item.MIMEType != pipeline.PlaceholderMIME &&
		strings.HasPrefix(item.ImageData, "data:")
}
