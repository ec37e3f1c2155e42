package reporting

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/gridai/gridai/internal/backtest"
)

// DefaultConsoleReporter prints a backtest.Result's summary statistics
// as a rounded table, grounded on the teacher's printStartupInfo /
// printBotConfiguration tables (internal/bot/live_bot_helpers.go).
type DefaultConsoleReporter struct{}

func NewDefaultConsoleReporter() *DefaultConsoleReporter {
	return &DefaultConsoleReporter{}
}

func (c *DefaultConsoleReporter) OutputResults(result *backtest.Result) {
	c.OutputResultsWithContext(result, result.Symbol, "")
}

func (c *DefaultConsoleReporter) OutputResultsWithContext(result *backtest.Result, symbol, interval string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	title := fmt.Sprintf("BACKTEST RESULTS - %s", symbol)
	if interval != "" {
		title = fmt.Sprintf("%s (%s)", title, interval)
	}
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"Period", fmt.Sprintf("%s -> %s", result.Start.Format("2006-01-02"), result.End.Format("2006-01-02"))},
		{"Initial cash", result.InitialCash.StringFixed(2)},
		{"Final equity", result.FinalEquity.StringFixed(2)},
		{"Total return", fmt.Sprintf("%s%%", result.TotalReturnPct.StringFixed(2))},
		{"Max drawdown", fmt.Sprintf("%s%%", result.MaxDrawdownPct.StringFixed(2))},
	})

	t.AppendSeparator()

	t.AppendRows([]table.Row{
		{"Total trades", result.TotalTrades},
		{"Winning trades", result.WinningTrades},
		{"Losing trades", result.LosingTrades},
		{"Win rate", fmt.Sprintf("%s%%", result.WinRatePct().StringFixed(2))},
	})

	t.AppendSeparator()

	t.AppendRows([]table.Row{
		{"Total fees", result.TotalFees.StringFixed(4)},
		{"Total realized P&L", result.TotalRealizedPnL.StringFixed(4)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 20, WidthMax: 20, Align: text.AlignLeft},
		{Number: 2, WidthMin: 25, WidthMax: 35, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}

// PrintConfig renders an arbitrary config value; used for the startup
// banner's effective-configuration dump.
func (c *DefaultConsoleReporter) PrintConfig(config interface{}) {
	fmt.Printf("%+v\n", config)
}
