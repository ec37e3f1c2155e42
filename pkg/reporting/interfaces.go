package reporting

import (
	"github.com/xuri/excelize/v2"

	"github.com/gridai/gridai/internal/backtest"
)

// Package reporting renders a backtest.Result to the console, CSV,
// Excel, and JSON.

// ConsoleReporter prints a run's summary statistics to stdout.
type ConsoleReporter interface {
	OutputResults(result *backtest.Result)
	OutputResultsWithContext(result *backtest.Result, symbol, interval string)
	PrintConfig(config interface{})
}

// FileReporter writes a run's trades and equity curve to disk.
type FileReporter interface {
	WriteTradesCSV(result *backtest.Result, path string) error
	WriteTradesXLSX(result *backtest.Result, path string) error
	WriteBestConfigJSON(config interface{}, path string) error
}

// ExcelFormatter formats individual rows/sheets of the trade workbook.
type ExcelFormatter interface {
	WriteTradeRow(fx *excelize.File, sheet string, row int, values []interface{}, styles ExcelStyles)
	WriteEquityRow(fx *excelize.File, sheet string, row int, values []interface{}, styles ExcelStyles)
	WriteSummarySheet(fx *excelize.File, sheet string, result *backtest.Result, styles ExcelStyles)
}

// JSONFormatter defines interface for JSON output
type JSONFormatter interface {
	FormatBestConfig(config interface{}) ([]byte, error)
	PrintBestConfig(config interface{})
	ConvertToNestedConfig(config interface{}) interface{}
}

// PathManager defines interface for output path management
type PathManager interface {
	GetDefaultOutputDir(symbol, interval string) string
	EnsureDirectoryExists(path string) error
}

// Reporter combines all reporting interfaces
type Reporter interface {
	ConsoleReporter
	FileReporter
	JSONFormatter
	PathManager
}

// ExcelStyles holds Excel formatting styles
type ExcelStyles struct {
	HeaderStyle       int
	CurrencyStyle     int
	PercentStyle      int
	BaseStyle         int
	RedPercentStyle   int
	GreenPercentStyle int
	SummaryStyle      int
}

// ReportingConfig holds configuration for reporting
type ReportingConfig struct {
	EnableConsole   bool
	EnableFiles     bool
	OutputDirectory string
	ExcelEnabled    bool
	CSVEnabled      bool
	JSONEnabled     bool
}
