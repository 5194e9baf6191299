package pipeline

import (
	"regexp"
	"strings"
)

var (
	legacyNumberedRe = regexp.MustCompile(`^\d+\.\s+`)
	codeFenceRe      = regexp.MustCompile("^```(\\w*)\\s*$")
)

// StructureContent parses a marker-annotated body into the ordered sequence
// of typed content blocks. Images are filtered to valid ones, interleaved
// deterministically after every interval-th plain text block, and any still
// unused are appended at the end. Each valid image appears exactly once,
// order preserved.
func StructureContent(text string, images []GeneratedImage, outline Outline, interval int) []ContentItem {
	valid := ValidImages(images)

	var items []ContentItem
	order := 0
	imageIndex := 0
	textCount := 0

	emit := func(item ContentItem) {
		item.Order = order
		order++
		items = append(items, item)
	}
	emitImage := func(img GeneratedImage) {
		emit(ContentItem{
			Type:      ItemImage,
			Content:   img.Prompt,
			ImageData: img.Base64Data,
			MIMEType:  img.MIMEType,
		})
	}

	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		// Code blocks consume everything up to their end marker verbatim;
		// lines inside are never reclassified.
		if lang, ok := codeBlockStart(line); ok {
			var body []string
			j := i + 1
			for ; j < len(lines); j++ {
				if isCodeBlockEnd(strings.TrimSpace(lines[j])) {
					break
				}
				body = append(body, lines[j])
			}
			emit(ContentItem{Type: ItemCode, Content: strings.Join(body, "\n"), Language: lang})
			i = j
			continue
		}

		// A bullet/numbered marker opens a run of contiguous matching lines.
		// Blank lines inside the run are skipped but do not terminate it.
		if isPointLine(line) {
			var points []string
			j := i
			for ; j < len(lines); j++ {
				candidate := strings.TrimSpace(lines[j])
				if candidate == "" {
					continue
				}
				if !isPointLine(candidate) {
					break
				}
				points = append(points, stripPointMarker(candidate))
			}
			emit(ContentItem{Type: ItemPoints, Content: strings.Join(points, "\n"), Points: points})
			i = j - 1
			continue
		}

		switch classifyLine(line, outline) {
		case ItemHeading:
			emit(ContentItem{Type: ItemHeading, Content: line})
		case ItemSubheading:
			emit(ContentItem{Type: ItemSubheading, Content: line})
		default:
			emit(ContentItem{Type: ItemText, Content: line})
			textCount++
			if interval > 0 && textCount%interval == 0 && imageIndex < len(valid) {
				emitImage(valid[imageIndex])
				imageIndex++
			}
		}
	}

	for ; imageIndex < len(valid); imageIndex++ {
		emitImage(valid[imageIndex])
	}

	return items
}

func codeBlockStart(line string) (lang string, ok bool) {
	if rest, found := strings.CutPrefix(line, "CODE_BLOCK_START:"); found {
		lang = strings.TrimSpace(rest)
		if lang == "" {
			lang = "text"
		}
		return lang, true
	}
	if m := codeFenceRe.FindStringSubmatch(line); m != nil {
		lang = m[1]
		if lang == "" {
			lang = "text"
		}
		return lang, true
	}
	return "", false
}

func isCodeBlockEnd(line string) bool {
	return line == "CODE_BLOCK_END" || strings.HasPrefix(line, "```")
}

func isPointLine(line string) bool {
	return strings.HasPrefix(line, "BULLET_POINT:") ||
		strings.HasPrefix(line, "NUMBERED_POINT:") ||
		strings.HasPrefix(line, "• ") ||
		strings.HasPrefix(line, "- ") ||
		strings.HasPrefix(line, "* ") ||
		legacyNumberedRe.MatchString(line)
}

func stripPointMarker(line string) string {
	if rest, ok := strings.CutPrefix(line, "BULLET_POINT:"); ok {
		return strings.TrimSpace(rest)
	}
	if rest, ok := strings.CutPrefix(line, "NUMBERED_POINT:"); ok {
		rest = strings.TrimSpace(rest)
		return strings.TrimSpace(legacyNumberedRe.ReplaceAllString(rest, ""))
	}
	for _, prefix := range []string{"• ", "- ", "* "} {
		if rest, ok := strings.CutPrefix(line, prefix); ok {
			return strings.TrimSpace(rest)
		}
	}
	return strings.TrimSpace(legacyNumberedRe.ReplaceAllString(line, ""))
}

// classifyLine tags a plain line as a heading or subheading when it contains
// one of the outline's headings. Containment rather than exact match
// tolerates the model rephrasing headings slightly.
func classifyLine(line string, outline Outline) ItemType {
	lower := strings.ToLower(line)
	for _, section := range outline.Sections {
		if heading := strings.ToLower(strings.TrimSpace(section.Heading)); heading != "" && strings.Contains(lower, heading) {
			return ItemHeading
		}
	}
	for _, section := range outline.Sections {
		for _, sub := range section.Subsections {
			if name := strings.ToLower(strings.TrimSpace(sub)); name != "" && strings.Contains(lower, name) {
				return ItemSubheading
			}
		}
	}
	return ItemText
}
