// Package voucher renders assembled claims as printable Excel expense
// forms for the accounting team.
package voucher

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/haolinpeng/claimflow/internal/domain/entity"
)

const sheetName = "报销单"

// FormWriter writes reimbursement claims as Excel expense forms.
type FormWriter struct {
	outputDir   string
	companyName string
	logger      *zap.Logger
}

// NewFormWriter creates a form writer, ensuring the output directory exists.
func NewFormWriter(outputDir, companyName string, logger *zap.Logger) (*FormWriter, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create voucher output dir: %w", err)
	}
	return &FormWriter{
		outputDir:   outputDir,
		companyName: companyName,
		logger:      logger,
	}, nil
}

// Write renders the claim as an expense form and returns the file path.
// Travel claims get a per-leg fee table; general claims get an itemized
// expense table. Selected loans appear as prepaid deductions.
func (w *FormWriter) Write(claim *entity.ReimbursementClaim) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		w.logger.Warn("Failed to remove default sheet", zap.Error(err))
	}

	w.setCell(f, "A1", w.companyName)
	w.setCell(f, "A2", "费用报销单")
	w.setCell(f, "A3", "报销事由")
	w.setCell(f, "B3", claim.Title)
	w.setCell(f, "A4", "申请人")
	w.setCell(f, "B4", claim.ApplicantName)
	w.setCell(f, "C4", "部门")
	w.setCell(f, "D4", claim.Department)
	w.setCell(f, "A5", "填报日期")
	w.setCell(f, "B5", claim.CreatedAt.Format("2006-01-02"))

	var row int
	if claim.Type == entity.ClaimTypeTravel {
		row = w.writeTravelTable(f, claim)
	} else {
		row = w.writeItemTable(f, claim)
	}
	row = w.writeLoanTable(f, claim, row)

	w.setCell(f, fmt.Sprintf("A%d", row), "报销总额")
	w.setNumber(f, fmt.Sprintf("B%d", row), claim.TotalAmount)
	w.setCell(f, fmt.Sprintf("C%d", row), "金额大写")
	w.setCell(f, fmt.Sprintf("D%d", row), amountToChinese(claim.TotalAmount))
	row++
	w.setCell(f, fmt.Sprintf("A%d", row), "冲抵借款")
	w.setNumber(f, fmt.Sprintf("B%d", row), claim.PrepaidAmount)
	w.setCell(f, fmt.Sprintf("C%d", row), "应付金额")
	w.setNumber(f, fmt.Sprintf("D%d", row), claim.PayableAmount)

	outputPath := filepath.Join(w.outputDir, fmt.Sprintf("claim_%s.xlsx", claim.ID))
	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save voucher: %w", err)
	}

	w.logger.Info("Voucher written",
		zap.String("claim_id", claim.ID),
		zap.String("output_path", outputPath))

	return outputPath, nil
}

// writeItemTable writes the general expense table and returns the next
// free row.
func (w *FormWriter) writeItemTable(f *excelize.File, claim *entity.ReimbursementClaim) int {
	row := 7
	headers := []string{"费用项目", "发生日期", "金额"}
	for i, h := range headers {
		w.setCell(f, cellRef(i, row), h)
	}
	row++
	for _, item := range claim.Items {
		w.setCell(f, cellRef(0, row), item.Name)
		w.setCell(f, cellRef(1, row), item.Date)
		w.setNumber(f, cellRef(2, row), item.Amount)
		row++
	}
	return row + 1
}

// writeTravelTable writes the per-leg fee table and returns the next
// free row.
func (w *FormWriter) writeTravelTable(f *excelize.File, claim *entity.ReimbursementClaim) int {
	row := 7
	headers := []string{"起止日期", "路线", "交通费", "住宿地点", "住宿天数", "住宿费", "市内交通费", "餐费", "其他", "小计"}
	for i, h := range headers {
		w.setCell(f, cellRef(i, row), h)
	}
	row++
	for _, leg := range claim.Legs {
		w.setCell(f, cellRef(0, row), leg.StartDate+"至"+leg.EndDate)
		w.setCell(f, cellRef(1, row), leg.Route)
		w.setNumber(f, cellRef(2, row), leg.TransportFee)
		w.setCell(f, cellRef(3, row), leg.HotelLocation)
		w.setCell(f, cellRef(4, row), fmt.Sprintf("%d", leg.HotelDays))
		w.setNumber(f, cellRef(5, row), leg.HotelFee)
		w.setNumber(f, cellRef(6, row), leg.CityTrafficFee)
		w.setNumber(f, cellRef(7, row), leg.MealFee)
		w.setNumber(f, cellRef(8, row), leg.OtherFee)
		w.setNumber(f, cellRef(9, row), leg.SubTotal)
		row++
	}
	return row + 1
}

// writeLoanTable writes the prepaid deduction table when the claim has
// matched loans, starting at row and returning the next free row.
func (w *FormWriter) writeLoanTable(f *excelize.File, claim *entity.ReimbursementClaim, row int) int {
	if len(claim.MatchedLoans) == 0 {
		return row
	}
	w.setCell(f, cellRef(0, row), "冲抵借款明细")
	row++
	headers := []string{"借款事由", "审批单号", "借款金额"}
	for i, h := range headers {
		w.setCell(f, cellRef(i, row), h)
	}
	row++
	for _, loan := range claim.MatchedLoans {
		w.setCell(f, cellRef(0, row), loan.Reason)
		w.setCell(f, cellRef(1, row), loan.ApprovalNumber)
		w.setNumber(f, cellRef(2, row), loan.Amount)
		row++
	}
	return row + 1
}

func (w *FormWriter) setCell(f *excelize.File, cell, value string) {
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		w.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}

func (w *FormWriter) setNumber(f *excelize.File, cell string, value float64) {
	w.setCell(f, cell, fmt.Sprintf("%.2f", value))
}

// cellRef builds an A1-style reference from a zero-based column and a
// one-based row.
func cellRef(col, row int) string {
	name, _ := excelize.ColumnNumberToName(col + 1)
	return fmt.Sprintf("%s%d", name, row)
}
