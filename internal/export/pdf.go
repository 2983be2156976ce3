package export

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
)

const (
	pageMargin = 10.0 // mm
	titleSize  = 16.0
)

// PageTitle is the heading printed above a board page.
func PageTitle(page int) string {
	return fmt.Sprintf("Digital Board - Page %d", page)
}

// WritePrintPDF writes a one-page A4 document with the board image fitted
// to the page width below a title.
func WritePrintPDF(w io.Writer, page int, img image.Image) error {
	var png bytes.Buffer
	if err := EncodePNG(&png, img); err != nil {
		return err
	}

	p := gofpdf.New("P", "mm", "A4", "")
	p.SetTitle(PageTitle(page), true)
	p.SetMargins(pageMargin, pageMargin, pageMargin)
	p.AddPage()

	p.SetFont("Helvetica", "B", titleSize)
	p.CellFormat(0, 10, PageTitle(page), "", 1, "C", false, 0, "")
	p.Ln(4)

	name := fmt.Sprintf("board-page-%d", page)
	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	p.RegisterImageOptionsReader(name, opts, &png)

	pageW, _ := p.GetPageSize()
	width := pageW - 2*pageMargin
	p.ImageOptions(name, pageMargin, p.GetY(), width, 0, false, opts, 0, "")

	if err := p.Output(w); err != nil {
		return errors.Wrap(err, "write pdf")
	}
	return nil
}
