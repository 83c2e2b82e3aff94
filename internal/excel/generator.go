package excel

import (
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/billboards-service/internal/model"
)

const (
	contractsSheet    = "Contracts"
	installmentsSheet = "Installments"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate writes the contract register: one row per contract on the first
// sheet and one row per installment on the second.
func (g *Generator) Generate(register model.ContractRegister) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", contractsSheet); err != nil {
		return nil, err
	}
	if err := g.writeContracts(file, register); err != nil {
		return nil, err
	}
	if _, err := file.NewSheet(installmentsSheet); err != nil {
		return nil, err
	}
	if err := g.writeInstallments(file, register); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeContracts(file *excelize.File, register model.ContractRegister) error {
	sheet := contractsSheet
	set := func(col, row int, value interface{}) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = file.SetCellValue(sheet, cell, value)
	}

	var total, paid float64
	for _, r := range register.Rows {
		total += r.Contract.RentCost
		paid += r.Contract.TotalPaid
	}

	set(1, 1, "Generated")
	set(2, 1, register.GeneratedAt.Format("2006-01-02 15:04"))
	set(1, 2, "Contracts")
	set(2, 2, len(register.Rows))
	set(1, 3, "Total value")
	set(2, 3, total)
	set(1, 4, "Total paid")
	set(2, 4, paid)

	tableRow := 6
	headers := []string{
		"Number",
		"Customer",
		"Ad type",
		"Start",
		"End",
		"Status",
		"Days left",
		"Billboards",
		"Discount",
		"Total",
		"Paid",
		"Remaining",
	}
	for i, header := range headers {
		set(i+1, tableRow, header)
	}

	for i, r := range register.Rows {
		row := tableRow + 1 + i
		c := r.Contract
		set(1, row, c.Number)
		set(2, row, c.CustomerName)
		set(3, row, c.AdType)
		set(4, row, formatDate(c.StartDate))
		set(5, row, formatDate(c.EndDate))
		set(6, row, r.Status)
		set(7, row, r.DaysLeft)
		set(8, row, r.BoardCount)
		set(9, row, c.Discount)
		set(10, row, c.RentCost)
		set(11, row, c.TotalPaid)
		set(12, row, c.Remaining())
	}

	_ = file.SetColWidth(sheet, "A", "A", 14)
	_ = file.SetColWidth(sheet, "B", "C", 30)
	_ = file.SetColWidth(sheet, "D", "F", 14)
	_ = file.SetColWidth(sheet, "G", "L", 12)
	return nil
}

func (g *Generator) writeInstallments(file *excelize.File, register model.ContractRegister) error {
	sheet := installmentsSheet
	set := func(col, row int, value interface{}) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"Contract", "Customer", "#", "Amount", "Type", "Due date"}
	for i, header := range headers {
		set(i+1, 1, header)
	}

	row := 2
	for _, r := range register.Rows {
		for _, p := range r.Schedule {
			set(1, row, r.Contract.Number)
			set(2, row, r.Contract.CustomerName)
			set(3, row, p.Index)
			set(4, row, p.Amount)
			set(5, row, string(p.PaymentType))
			set(6, row, formatDate(p.DueDate))
			row++
		}
	}

	_ = file.SetColWidth(sheet, "A", "A", 12)
	_ = file.SetColWidth(sheet, "B", "B", 30)
	_ = file.SetColWidth(sheet, "C", "F", 14)
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
