package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"carereviews/core/review"
)

// SheetName is the worksheet holding exported reviews.
const SheetName = "Reviews"

// ReviewExportHeader lists the exported columns in order. Only de-identified
// fields exist on PatientReview, so nothing here can carry a name or dob.
var ReviewExportHeader = []string{
	"Review ID",
	"Initials",
	"Age",
	"Condition",
	"Rating",
	"Review",
	"Verified Purchase",
	"Date",
	"Helpful",
}

var columnWidths = []float64{38, 10, 8, 20, 8, 80, 18, 12, 10}

// GenerateReviewExport renders reviews as an XLSX workbook.
func GenerateReviewExport(reviews []review.PatientReview) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteReviewExport(&buf, reviews); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteReviewExport writes the workbook to w.
func WriteReviewExport(w io.Writer, reviews []review.PatientReview) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range ReviewExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(SheetName, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, name, name, columnWidths[col]); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, rec := range reviews {
		row := i + 2 // row 1 is the header
		verified := "No"
		if rec.VerifiedPurchase {
			verified = "Yes"
		}
		values := []interface{}{
			rec.ReviewID,
			rec.PatientInitials,
			rec.Age,
			rec.Condition,
			rec.Rating,
			rec.Review,
			verified,
			rec.Date,
			rec.HelpfulCount,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
