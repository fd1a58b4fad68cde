package reports

import (
	"fmt"
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/logistics_backend/models"
	"github.com/xuri/excelize/v2"
)

const exportSheetName = "Open Cases"

var exportHeadings = []string{
	"Registration Date",
	"Customer Name",
	"Order Number",
	"Pendency Days",
	"Abnormal Type",
	"Description",
	"Order Status",
	"Handling DDL",
	"Updated ETA",
	"Case Close Date",
	"Emergency",
}

// BuildOpenCasesWorkbook renders the given case records as the flat
// hand-off table. Callers pass the already filtered/sorted set.
func BuildOpenCasesWorkbook(records []*models.CaseRecord) (*excelize.File, error) {

	f := excelize.NewFile()
	index, err := f.NewSheet(exportSheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	// Add headers
	col := 'A'
	for _, h := range exportHeadings {
		f.SetCellValue(exportSheetName, string(col)+"1", h)
		col++
	}

	// Add data
	for i, rec := range records {
		rowNo := fmt.Sprint(i + 2)
		f.SetCellValue(exportSheetName, "A"+rowNo, formatExportDate(rec.RegistrationDate))
		f.SetCellValue(exportSheetName, "B"+rowNo, rec.CustomerName)
		f.SetCellValue(exportSheetName, "C"+rowNo, rec.OrderNumber)
		f.SetCellValue(exportSheetName, "D"+rowNo, rec.CalculatedPendency)
		f.SetCellValue(exportSheetName, "E"+rowNo, rec.AbnormalType)
		f.SetCellValue(exportSheetName, "F"+rowNo, rec.Description)
		f.SetCellValue(exportSheetName, "G"+rowNo, rec.OrderStatus)
		f.SetCellValue(exportSheetName, "H"+rowNo, rec.HandlingDeadline)
		f.SetCellValue(exportSheetName, "I"+rowNo, rec.UpdatedEta)
		f.SetCellValue(exportSheetName, "J"+rowNo, formatExportDate(rec.CaseCloseDate))
		f.SetCellValue(exportSheetName, "K"+rowNo, yesNo(rec.IsEmergency))
	}

	return f, nil
}

// WriteOpenCasesExcel streams the workbook as an xlsx attachment.
func WriteOpenCasesExcel(w http.ResponseWriter, records []*models.CaseRecord) error {
	f, err := BuildOpenCasesWorkbook(records)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=logistics_open_cases.xlsx")
	return f.Write(w)
}

func formatExportDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
