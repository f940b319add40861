package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/limaJavier/coursetabling/pkg/model"
)

var scheduleHeaders = []string{"Course", "Teacher", "Room", "Day", "Period", "Slot"}

// PDFRenderer renders a schedule into a single-table PDF
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render creates a PDF document with an optional title and one row per entry
func (r *PDFRenderer) Render(entries []model.ScheduleEntry, title string) ([]byte, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("pdf requires at least one schedule entry")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetTitle(title, true)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(scheduleHeaders))
	for _, header := range scheduleHeaders {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	translate := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "", 9)
	for _, entry := range entries {
		cells := []string{
			entry.CourseName,
			entry.TeacherName,
			entry.RoomName,
			strconv.FormatUint(entry.Day, 10),
			strconv.FormatUint(entry.Period, 10),
			entry.SlotLabel,
		}
		for _, cell := range cells {
			pdf.CellFormat(colWidth, 7, translate(cell), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
