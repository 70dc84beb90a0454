package labels

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
	"github.com/xelth-com/fabtrack/internal/models"
	"github.com/xelth-com/fabtrack/internal/workflow"
)

// Sheet holds the grid layout of a label sheet, in millimetres
type Sheet struct {
	Cols       int
	Rows       int
	MarginTop  float64
	MarginLeft float64
	GapX       float64
	GapY       float64
}

// A4Sheet is the 3 x 7 sticker sheet used on the shop floor
var A4Sheet = Sheet{Cols: 3, Rows: 7, MarginTop: 10, MarginLeft: 7, GapX: 2.5, GapY: 0}

// pngSize is the rendered QR edge in pixels
const pngSize = 256

// Payload is the text encoded on a piece's label
func Payload(p models.Piece) string {
	return workflow.ScanPayload{Code: p.Code, Number: p.Number}.String()
}

// PiecePNG renders a single piece label QR code
func PiecePNG(p models.Piece) ([]byte, error) {
	if p.Code == "" || p.Number <= 0 {
		return nil, fmt.Errorf("piece %s has no code/number to encode", p.ID)
	}
	return qrcode.Encode(Payload(p), qrcode.Medium, pngSize)
}

// OrderSheetPDF creates a PDF with one label per piece, laid out on
// A4 sheets. Code and number are printed under each QR code.
func OrderSheetPDF(order models.Order, pieces []models.Piece) ([]byte, error) {
	return SheetPDF(A4Sheet, order.ProjectName, pieces)
}

// SheetPDF lays labels out on the given sheet
func SheetPDF(cfg Sheet, title string, pieces []models.Piece) ([]byte, error) {
	if len(pieces) == 0 {
		return nil, errors.New("no pieces to label")
	}
	if cfg.Cols <= 0 || cfg.Rows <= 0 {
		return nil, errors.New("sheet needs at least one row and column")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(title, true)
	pdf.SetFont("Arial", "B", 10)

	pageWidth, pageHeight := 210.0, 297.0
	totalGapX := float64(cfg.Cols-1) * cfg.GapX
	totalGapY := float64(cfg.Rows-1) * cfg.GapY
	labelW := (pageWidth - cfg.MarginLeft*2 - totalGapX) / float64(cfg.Cols)
	labelH := (pageHeight - cfg.MarginTop*2 - totalGapY) / float64(cfg.Rows)

	labelsPerPage := cfg.Cols * cfg.Rows
	imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}

	for i, p := range pieces {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}
		indexOnPage := i % labelsPerPage
		col := indexOnPage % cfg.Cols
		row := indexOnPage / cfg.Cols

		// Top-left of the label
		x := cfg.MarginLeft + float64(col)*(labelW+cfg.GapX)
		y := cfg.MarginTop + float64(row)*(labelH+cfg.GapY)

		qrPng, err := PiecePNG(p)
		if err != nil {
			return nil, err
		}
		imgName := fmt.Sprintf("qr_%d", i)
		pdf.RegisterImageOptionsReader(imgName, imgOptions, bytes.NewReader(qrPng))

		// QR takes 70% of the label height, shifted up for the caption
		qrSize := labelH * 0.7
		if qrSize > labelW {
			qrSize = labelW * 0.9
		}
		qrX := x + (labelW-qrSize)/2
		qrY := y + (labelH-qrSize)/2 - 2
		pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, imgOptions, 0, "")

		pdf.SetXY(x, y+labelH-6)
		pdf.SetFontSize(8)
		pdf.CellFormat(labelW, 5, fmt.Sprintf("%s #%d", p.Code, p.Number), "", 0, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
