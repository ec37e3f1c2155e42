package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/shopspring/decimal"

	"github.com/gridai/gridai/internal/backtest"
)

var oneHundred = decimal.NewFromInt(100)

// DefaultExcelReporter writes a backtest.Result to a three-sheet
// workbook: the completed trade ledger, the equity curve, and a
// summary sheet. Grounded on the teacher's WriteTradesXLSX /
// createExcelStyles (pkg/reporting/excel.go), trimmed to gridai's
// round-trip trade model instead of the teacher's DCA cycle/TP-level
// bookkeeping.
type DefaultExcelReporter struct{}

func NewDefaultExcelReporter() *DefaultExcelReporter {
	return &DefaultExcelReporter{}
}

func (r *DefaultExcelReporter) WriteTradesXLSX(result *backtest.Result, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("excel: creating directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const tradesSheet = "Trades"
	const equitySheet = "Equity Curve"
	const summarySheet = "Summary"

	fx.SetSheetName(fx.GetSheetName(0), tradesSheet)
	fx.NewSheet(equitySheet)
	fx.NewSheet(summarySheet)

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeTradesSheet(fx, tradesSheet, result, styles); err != nil {
		return err
	}
	if err := r.writeEquitySheet(fx, equitySheet, result, styles); err != nil {
		return err
	}
	r.WriteSummarySheet(fx, summarySheet, result, styles)

	return fx.SaveAs(path)
}

func (r *DefaultExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF", Family: "Calibri"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.CurrencyStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    7,
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border: []excelize.Border{
			{Type: "left", Color: "E0E0E0", Style: 1},
			{Type: "right", Color: "E0E0E0", Style: 1},
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.PercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    9,
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border: []excelize.Border{
			{Type: "left", Color: "E0E0E0", Style: 1},
			{Type: "right", Color: "E0E0E0", Style: 1},
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.RedPercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    9,
		Font:      &excelize.Font{Color: "FF0000"},
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border: []excelize.Border{
			{Type: "left", Color: "E0E0E0", Style: 1},
			{Type: "right", Color: "E0E0E0", Style: 1},
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.GreenPercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    9,
		Font:      &excelize.Font{Color: "008000"},
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border: []excelize.Border{
			{Type: "left", Color: "E0E0E0", Style: 1},
			{Type: "right", Color: "E0E0E0", Style: 1},
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.BaseStyle, err = fx.NewStyle(&excelize.Style{
		Border: []excelize.Border{
			{Type: "left", Color: "E0E0E0", Style: 1},
			{Type: "right", Color: "E0E0E0", Style: 1},
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.SummaryStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF", Family: "Calibri"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 2},
			{Type: "right", Color: "000000", Style: 2},
			{Type: "top", Color: "000000", Style: 2},
			{Type: "bottom", Color: "000000", Style: 2},
		},
	})
	if err != nil {
		return styles, err
	}

	return styles, nil
}

var tradeHeaders = []string{
	"Buy Order ID", "Sell Order ID", "Buy Price", "Sell Price",
	"Quantity", "Fees", "Realized P&L", "Opened At", "Closed At", "Approx Buy Pair",
}

func (r *DefaultExcelReporter) writeTradesSheet(fx *excelize.File, sheet string, result *backtest.Result, styles ExcelStyles) error {
	fx.SetColWidth(sheet, "A", "B", 16)
	fx.SetColWidth(sheet, "C", "G", 12)
	fx.SetColWidth(sheet, "H", "I", 20)
	fx.SetColWidth(sheet, "J", "J", 14)

	for i, h := range tradeHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	row := 2
	for _, t := range result.Trades {
		values := []interface{}{
			t.BuyOrderID, t.SellOrderID,
			t.BuyPrice.InexactFloat64(), t.SellPrice.InexactFloat64(),
			t.Quantity.InexactFloat64(), t.Fees.InexactFloat64(), t.RealizedPnL.InexactFloat64(),
			t.OpenedAt.Format("2006-01-02 15:04:05"), t.ClosedAt.Format("2006-01-02 15:04:05"),
			t.ApproxBuyPair,
		}
		r.WriteTradeRow(fx, sheet, row, values, styles)
		row++
	}
	return nil
}

// WriteTradeRow writes one trade's cells, applying the currency style
// to the price/fee/P&L columns and the plain base style elsewhere.
func (r *DefaultExcelReporter) WriteTradeRow(fx *excelize.File, sheet string, row int, values []interface{}, styles ExcelStyles) {
	currencyCols := map[int]bool{2: true, 3: true, 5: true, 6: true}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		fx.SetCellValue(sheet, cell, v)
		if currencyCols[i] {
			fx.SetCellStyle(sheet, cell, cell, styles.CurrencyStyle)
		} else {
			fx.SetCellStyle(sheet, cell, cell, styles.BaseStyle)
		}
	}
}

var equityHeaders = []string{"Timestamp", "Cash Balance", "Inventory Value", "Total Equity", "Drawdown %"}

func (r *DefaultExcelReporter) writeEquitySheet(fx *excelize.File, sheet string, result *backtest.Result, styles ExcelStyles) error {
	fx.SetColWidth(sheet, "A", "A", 20)
	fx.SetColWidth(sheet, "B", "E", 16)

	for i, h := range equityHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	row := 2
	for _, snap := range result.EquityCurve {
		values := []interface{}{
			snap.Timestamp.Format("2006-01-02 15:04:05"),
			snap.CashBalance.InexactFloat64(),
			snap.InventoryValue.InexactFloat64(),
			snap.TotalEquity.InexactFloat64(),
			snap.DrawdownPct.Div(oneHundred).InexactFloat64(),
		}
		r.WriteEquityRow(fx, sheet, row, values, styles)
		row++
	}
	return nil
}

// WriteEquityRow writes one equity-curve point: balances formatted as
// currency, the drawdown column formatted as a percentage.
func (r *DefaultExcelReporter) WriteEquityRow(fx *excelize.File, sheet string, row int, values []interface{}, styles ExcelStyles) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		fx.SetCellValue(sheet, cell, v)
		switch i {
		case 1, 2, 3:
			fx.SetCellStyle(sheet, cell, cell, styles.CurrencyStyle)
		case 4:
			fx.SetCellStyle(sheet, cell, cell, styles.PercentStyle)
		default:
			fx.SetCellStyle(sheet, cell, cell, styles.BaseStyle)
		}
	}
}

// WriteSummarySheet writes the run's headline statistics as a
// label/value table.
func (r *DefaultExcelReporter) WriteSummarySheet(fx *excelize.File, sheet string, result *backtest.Result, styles ExcelStyles) {
	fx.SetColWidth(sheet, "A", "A", 22)
	fx.SetColWidth(sheet, "B", "B", 20)

	fx.SetCellValue(sheet, "A1", "Metric")
	fx.SetCellValue(sheet, "B1", "Value")
	fx.SetCellStyle(sheet, "A1", "B1", styles.SummaryStyle)

	rows := [][2]interface{}{
		{"Symbol", result.Symbol},
		{"Start", result.Start.Format("2006-01-02")},
		{"End", result.End.Format("2006-01-02")},
		{"Initial Cash", result.InitialCash.InexactFloat64()},
		{"Final Equity", result.FinalEquity.InexactFloat64()},
		{"Total Return %", result.TotalReturnPct.InexactFloat64()},
		{"Max Drawdown %", result.MaxDrawdownPct.InexactFloat64()},
		{"Total Trades", result.TotalTrades},
		{"Winning Trades", result.WinningTrades},
		{"Losing Trades", result.LosingTrades},
		{"Win Rate %", result.WinRatePct().InexactFloat64()},
		{"Total Fees", result.TotalFees.InexactFloat64()},
		{"Total Realized P&L", result.TotalRealizedPnL.InexactFloat64()},
	}

	for i, kv := range rows {
		rowNum := i + 2
		fx.SetCellValue(sheet, fmt.Sprintf("A%d", rowNum), kv[0])
		fx.SetCellValue(sheet, fmt.Sprintf("B%d", rowNum), kv[1])
		fx.SetCellStyle(sheet, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("A%d", rowNum), styles.BaseStyle)
		fx.SetCellStyle(sheet, fmt.Sprintf("B%d", rowNum), fmt.Sprintf("B%d", rowNum), styles.CurrencyStyle)
	}
}
