package reporting

import (
	"github.com/gridai/gridai/internal/backtest"
)

// DefaultReporter implements the complete Reporter interface
type DefaultReporter struct {
	console *DefaultConsoleReporter
	csv     *DefaultCSVReporter
	excel   *DefaultExcelReporter
	json    *DefaultJSONFormatter
	paths   *DefaultPathManager
}

// NewDefaultReporter creates a new default reporter with all functionality
func NewDefaultReporter() *DefaultReporter {
	return &DefaultReporter{
		console: NewDefaultConsoleReporter(),
		csv:     NewDefaultCSVReporter(),
		excel:   NewDefaultExcelReporter(),
		json:    NewDefaultJSONFormatter(),
		paths:   NewDefaultPathManager(),
	}
}

// Console output methods
func (r *DefaultReporter) OutputResults(result *backtest.Result) {
	r.console.OutputResults(result)
}

func (r *DefaultReporter) OutputResultsWithContext(result *backtest.Result, symbol, interval string) {
	r.console.OutputResultsWithContext(result, symbol, interval)
}

func (r *DefaultReporter) PrintConfig(config interface{}) {
	r.console.PrintConfig(config)
}

// File output methods
func (r *DefaultReporter) WriteTradesCSV(result *backtest.Result, path string) error {
	return r.csv.WriteTradesCSV(result, path)
}

func (r *DefaultReporter) WriteTradesXLSX(result *backtest.Result, path string) error {
	return r.excel.WriteTradesXLSX(result, path)
}

func (r *DefaultReporter) WriteBestConfigJSON(config interface{}, path string) error {
	return WriteBestConfigJSON(config, path)
}

// JSON methods
func (r *DefaultReporter) FormatBestConfig(config interface{}) ([]byte, error) {
	return r.json.FormatBestConfig(config)
}

func (r *DefaultReporter) PrintBestConfig(config interface{}) {
	r.json.PrintBestConfig(config)
}

func (r *DefaultReporter) ConvertToNestedConfig(config interface{}) interface{} {
	return r.json.ConvertToNestedConfig(config)
}

// Path management methods
func (r *DefaultReporter) GetDefaultOutputDir(symbol, interval string) string {
	return r.paths.GetDefaultOutputDir(symbol, interval)
}

func (r *DefaultReporter) EnsureDirectoryExists(path string) error {
	return r.paths.EnsureDirectoryExists(path)
}

// ReportingManager provides a high-level interface for all reporting needs
type ReportingManager struct {
	reporter *DefaultReporter
	config   ReportingConfig
}

// NewReportingManager creates a new reporting manager with configuration
func NewReportingManager(config ReportingConfig) *ReportingManager {
	return &ReportingManager{
		reporter: NewDefaultReporter(),
		config:   config,
	}
}

// ReportResults outputs a backtest run's results according to configuration
func (m *ReportingManager) ReportResults(result *backtest.Result, symbol, interval string) error {
	if m.config.EnableConsole {
		m.reporter.OutputResultsWithContext(result, symbol, interval)
	}

	if m.config.EnableFiles {
		outputDir := m.reporter.GetDefaultOutputDir(symbol, interval)

		if m.config.CSVEnabled {
			csvPath := outputDir + "/trades.csv"
			if err := m.reporter.WriteTradesCSV(result, csvPath); err != nil {
				return err
			}
		}

		if m.config.ExcelEnabled {
			xlsxPath := outputDir + "/trades.xlsx"
			if err := m.reporter.WriteTradesXLSX(result, xlsxPath); err != nil {
				return err
			}
		}
	}

	return nil
}

// ReportConfig outputs the effective configuration according to settings
func (m *ReportingManager) ReportConfig(config interface{}, symbol, interval string) error {
	if m.config.EnableConsole {
		m.reporter.PrintBestConfig(config)
	}

	if m.config.EnableFiles && m.config.JSONEnabled {
		outputDir := m.reporter.GetDefaultOutputDir(symbol, interval)
		jsonPath := outputDir + "/config.json"
		if err := m.reporter.WriteBestConfigJSON(config, jsonPath); err != nil {
			return err
		}
	}

	return nil
}
