package export

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"noteforge/quill/internal/pipeline"
)

// onePixelPNG is a 1x1 transparent PNG, enough for image registration.
const onePixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func sampleNotebook() *pipeline.Notebook {
	return &pipeline.Notebook{
		ID:    "aaaa1111-0000-0000-0000-000000000001",
		Title: "Graph Algorithms",
		Content: []pipeline.ContentItem{
			{Type: pipeline.ItemHeading, Content: "Traversal", Order: 0},
			{Type: pipeline.ItemText, Content: "Breadth first search visits levels in order.", Order: 1},
			{Type: pipeline.ItemPoints, Content: "queue\nvisited set", Points: []string{"queue", "visited set"}, Order: 2},
			{Type: pipeline.ItemCode, Content: "def bfs(g, s):\n    pass", Language: "python", Order: 3},
			{
				Type:      pipeline.ItemImage,
				Content:   "BFS frontier diagram",
				ImageData: "data:image/png;base64," + onePixelPNG,
				MIMEType:  "image/png",
				Order:     4,
			},
			{
				Type:      pipeline.ItemImage,
				Content:   "failed figure",
				ImageData: "placeholder",
				MIMEType:  pipeline.PlaceholderMIME,
				Order:     5,
			},
		},
		CreatedAt:   time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		TotalImages: 1,
		WordCount:   10,
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleNotebook())

	for _, want := range []string{
		"# Graph Algorithms",
		"## Traversal",
		"- queue",
		"- visited set",
		"```python\ndef bfs(g, s):\n    pass\n```",
		"![BFS frontier diagram](data:image/png;base64," + onePixelPNG + ")",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown() missing %q\ngot:\n%s", want, md)
		}
	}
	if strings.Contains(md, "failed figure") {
		t.Error("Markdown() rendered an invalid image")
	}
	if strings.Contains(md, "BULLET_POINT") {
		t.Error("Markdown() leaked a generation marker")
	}
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := HTML(sampleNotebook(), &buf); err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<title>Graph Algorithms</title>",
		"<h2>Traversal</h2>",
		"<li>queue</li>",
		`<code class="language-python">`,
		`src="data:image/png;base64,` + onePixelPNG + `"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML() missing %q", want)
		}
	}
	// html/template replaces URLs it deems unsafe with this sentinel.
	if strings.Contains(out, "ZgotmplZ") {
		t.Error("HTML() sanitized the image data URI")
	}
	if strings.Contains(out, "failed figure") {
		t.Error("HTML() rendered an invalid image")
	}
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	if err := PDF(sampleNotebook(), &buf); err != nil {
		t.Fatalf("PDF() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("PDF() wrote no bytes")
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF header: %q", buf.Bytes()[:8])
	}
}

func TestDecodeDataURI(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		wantType string
		wantErr  bool
	}{
		{"png", "data:image/png;base64," + onePixelPNG, "PNG", false},
		{"jpeg", "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("x")), "JPG", false},
		{"no payload", "data:image/png", "", true},
		{"unknown mime", "data:image/webp;base64,AAAA", "", true},
		{"bad base64", "data:image/png;base64,!!!", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, imageType, err := decodeDataURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeDataURI() error = %v, wantErr %v", err, tt.wantErr)
			}
			if imageType != tt.wantType {
				t.Errorf("imageType = %q, want %q", imageType, tt.wantType)
			}
		})
	}
}
