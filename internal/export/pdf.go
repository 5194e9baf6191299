package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"

	"noteforge/quill/internal/pipeline"
)

const tsFormat = "2006-01-02 15:04"

// PDF renders a notebook to a PDF document with valid images embedded.
func PDF(nb *pipeline.Notebook, w io.Writer) error {
	pdf := setupPDF(nb)
	pdf.AddPage()

	writePDFTitle(pdf, nb.Title)

	for _, item := range nb.Content {
		switch item.Type {
		case pipeline.ItemHeading:
			pdf.Ln(8)
			pdf.SetFont("helvetica", "B", 15)
			pdf.SetTextColor(20, 20, 20)
			pdf.MultiCell(0, 8, item.Content, "", "L", false)
			pdf.Ln(2)
		case pipeline.ItemSubheading:
			pdf.Ln(4)
			pdf.SetFont("helvetica", "B", 12)
			pdf.SetTextColor(60, 60, 60)
			pdf.MultiCell(0, 7, item.Content, "", "L", false)
			pdf.Ln(1)
		case pipeline.ItemPoints:
			pdf.SetFont("helvetica", "", 11)
			pdf.SetTextColor(20, 20, 20)
			for _, point := range item.Points {
				pdf.MultiCell(0, 6, "• "+point, "", "L", false)
			}
			pdf.Ln(3)
		case pipeline.ItemCode:
			pdf.SetFont("courier", "", 9)
			pdf.SetFillColor(245, 245, 245)
			pdf.SetTextColor(40, 40, 40)
			pdf.MultiCell(0, 5, item.Content, "", "L", true)
			pdf.Ln(3)
		case pipeline.ItemImage:
			if err := embedImage(pdf, item); err != nil {
				// A bad payload ruins one figure, not the document.
				continue
			}
		default:
			pdf.SetFont("helvetica", "", 11)
			pdf.SetTextColor(20, 20, 20)
			pdf.MultiCell(0, 6, item.Content, "", "L", false)
			pdf.Ln(3)
		}
	}

	return pdf.Output(w)
}

func setupPDF(nb *pipeline.Notebook) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AliasNbPages("{totalPages}")
	pdf.SetTitle(nb.Title, true)
	pdf.SetCreationDate(nb.CreatedAt.UTC())
	pdf.SetProducer("quill", true)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("helvetica", "", 8)
		pdf.SetTextColor(127, 127, 127)
		pdf.Cellf(0, 10, "%d / {totalPages}  |  %s  |  %s",
			pdf.PageNo(), nb.Title, nb.CreatedAt.Local().Format(tsFormat))
	})

	return pdf
}

func writePDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("helvetica", "B", 20)
	pdf.SetTextColor(20, 20, 20)
	pdf.MultiCell(0, 10, title, "", "L", false)
	pdf.Ln(4)
}

// embedImage decodes an item's data URI and places it scaled to a portion
// of the usable page width.
func embedImage(pdf *gofpdf.Fpdf, item pipeline.ContentItem) error {
	if !imageItemValid(item) {
		return fmt.Errorf("image item has no usable payload")
	}

	data, imageType, err := decodeDataURI(item.ImageData)
	if err != nil {
		return err
	}

	name := uuid.New().String()
	opts := gofpdf.ImageOptions{ImageType: imageType, ReadDpi: true}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if pdf.Err() {
		return pdf.Error()
	}

	wPage, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	w := (wPage - left - right) * 0.7

	pdf.ImageOptions(name, left, 0, w, 0, true, opts, 0, "")
	pdf.Ln(4)
	return nil
}

// decodeDataURI splits a data URI into raw bytes and a gofpdf image type.
func decodeDataURI(uri string) ([]byte, string, error) {
	header, payload, found := strings.Cut(uri, ";base64,")
	if !found {
		return nil, "", fmt.Errorf("not a base64 data uri")
	}

	var imageType string
	switch {
	case strings.Contains(header, "png"):
		imageType = "PNG"
	case strings.Contains(header, "jpeg"), strings.Contains(header, "jpg"):
		imageType = "JPG"
	case strings.Contains(header, "gif"):
		imageType = "GIF"
	default:
		return nil, "", fmt.Errorf("unsupported image mime in %q", header)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decoding image payload: %w", err)
	}
	return data, imageType, nil
}
