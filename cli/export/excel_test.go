package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"carereviews/core/review"
)

func TestGenerateReviewExport(t *testing.T) {
	reviews := []review.PatientReview{
		{
			ReviewID:         "rev-1",
			PatientInitials:  "J.W.",
			Age:              "30-39",
			Condition:        "Asthma",
			Rating:           5,
			Review:           "Call me at [PHONE] about the inhaler.",
			VerifiedPurchase: true,
			Date:             "2024-06-15",
			HelpfulCount:     3,
		},
		{
			ReviewID:        "rev-2",
			PatientInitials: "A.",
			Age:             "65+",
			Condition:       "Diabetes",
			Rating:          2,
			Review:          "The monitor stopped working after a week.",
			Date:            "2024-05-01",
		},
	}

	raw, err := GenerateReviewExport(reviews)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, ReviewExportHeader, rows[0])
	assert.Equal(t, []string{"rev-1", "J.W.", "30-39", "Asthma", "5", "Call me at [PHONE] about the inhaler.", "Yes", "2024-06-15", "3"}, rows[1])
	assert.Equal(t, "No", rows[2][6])
}

func TestGenerateReviewExport_HeaderOnly(t *testing.T) {
	raw, err := GenerateReviewExport(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
