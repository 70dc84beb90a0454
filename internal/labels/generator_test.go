package labels

import (
	"bytes"
	"testing"

	"github.com/xelth-com/fabtrack/internal/models"
	"github.com/xelth-com/fabtrack/internal/workflow"
)

func TestPayloadRoundTrip(t *testing.T) {
	p := models.Piece{ID: "p1", Code: "BEAM-7", Number: 3}
	got, err := workflow.ParseScanPayload(Payload(p))
	if err != nil {
		t.Fatalf("label payload does not parse: %v", err)
	}
	if got.Code != "BEAM-7" || got.Number != 3 {
		t.Errorf("parsed %+v", got)
	}
}

func TestPiecePNG(t *testing.T) {
	png, err := PiecePNG(models.Piece{Code: "A", Number: 1})
	if err != nil {
		t.Fatalf("PiecePNG: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Errorf("not a PNG")
	}
	if _, err := PiecePNG(models.Piece{ID: "x"}); err == nil {
		t.Error("piece without code accepted")
	}
}

func TestOrderSheetPDF(t *testing.T) {
	var pieces []models.Piece
	for i := 1; i <= 22; i++ {
		pieces = append(pieces, models.Piece{Code: "COL", Number: i})
	}
	pdf, err := OrderSheetPDF(models.Order{ProjectName: "Hall B"}, pieces)
	if err != nil {
		t.Fatalf("OrderSheetPDF: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("not a PDF")
	}

	if _, err := OrderSheetPDF(models.Order{}, nil); err == nil {
		t.Error("empty order produced a sheet")
	}
}
