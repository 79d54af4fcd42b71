// Package export builds spreadsheet reports of submission records for
// administrators.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/models"
)

const sheetName = "Submissions"

// SubmissionsWorkbook renders submission records into an XLSX workbook.
func SubmissionsWorkbook(records []models.SubmissionRecordView) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Submission ID", "Flow", "Branch", "User", "Email",
		"Status", "Insurance Status", "Submitted At", "Updated At"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}

	for i, rec := range records {
		row := []interface{}{
			rec.SubmissionID,
			rec.FlowName,
			rec.BranchName,
			rec.UserName,
			rec.UserEmail,
			string(rec.Status),
			insuranceCell(rec.InsuranceApprovalStatus),
			timeCell(rec.SubmittedAt),
			rec.UpdatedAt.Format(time.RFC3339),
		}
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

func insuranceCell(st *models.InsuranceStatus) string {
	if st == nil {
		return ""
	}
	return string(*st)
}

func timeCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
