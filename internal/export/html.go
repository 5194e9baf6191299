package export

import (
	"fmt"
	"html/template"
	"io"

	"noteforge/quill/internal/pipeline"
)

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Georgia, serif; max-width: 46rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.6; color: #222; }
h1 { border-bottom: 2px solid #222; padding-bottom: .3rem; }
h2 { margin-top: 2rem; }
pre { background: #f5f5f5; padding: 1rem; overflow-x: auto; border-radius: 4px; }
img { max-width: 100%; margin: 1rem 0; }
footer { margin-top: 3rem; font-size: .8rem; color: #888; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Items}}{{if eq .Kind "heading"}}<h2>{{.Text}}</h2>
{{else if eq .Kind "subheading"}}<h3>{{.Text}}</h3>
{{else if eq .Kind "points"}}<ul>
{{range .Points}}<li>{{.}}</li>
{{end}}</ul>
{{else if eq .Kind "code"}}<pre><code class="language-{{.Language}}">{{.Text}}</code></pre>
{{else if eq .Kind "image"}}<figure><img src="{{.Src}}" alt="{{.Text}}"><figcaption>{{.Text}}</figcaption></figure>
{{else}}<p>{{.Text}}</p>
{{end}}{{end}}
<footer>{{.WordCount}} words &middot; generated {{.Created}}</footer>
</body>
</html>
`

var htmlTemplate = template.Must(template.New("notebook").Parse(htmlPage))

type htmlItem struct {
	Kind     string
	Text     string
	Points   []string
	Language string
	// Src is a data URI; typed so the template does not sanitize it away.
	Src template.URL
}

type htmlPageData struct {
	Title     string
	Items     []htmlItem
	WordCount int
	Created   string
}

// HTML renders a notebook as a standalone HTML page with images inlined.
func HTML(nb *pipeline.Notebook, w io.Writer) error {
	data := htmlPageData{
		Title:     nb.Title,
		WordCount: nb.WordCount,
		Created:   nb.CreatedAt.Format("2006-01-02 15:04"),
	}

	for _, item := range nb.Content {
		switch item.Type {
		case pipeline.ItemImage:
			if !imageItemValid(item) {
				continue
			}
			data.Items = append(data.Items, htmlItem{
				Kind: "image",
				Text: item.Content,
				Src:  template.URL(item.ImageData),
			})
		case pipeline.ItemPoints:
			data.Items = append(data.Items, htmlItem{Kind: "points", Points: item.Points})
		case pipeline.ItemCode:
			data.Items = append(data.Items, htmlItem{Kind: "code", Text: item.Content, Language: item.Language})
		default:
			data.Items = append(data.Items, htmlItem{Kind: string(item.Type), Text: item.Content})
		}
	}

	if err := htmlTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("rendering html: %w", err)
	}
	return nil
}
