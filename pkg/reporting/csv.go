package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gridai/gridai/internal/backtest"
)

// DefaultCSVReporter implements CSV output functionality
type DefaultCSVReporter struct{}

// NewDefaultCSVReporter creates a new CSV reporter
func NewDefaultCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{}
}

// WriteTradesCSV writes every completed round trip to a flat CSV file,
// one row per gridmodel.TradeRecord.
func (c *DefaultCSVReporter) WriteTradesCSV(result *backtest.Result, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("csv: creating output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: creating file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"symbol", "buy_order_id", "sell_order_id", "buy_price", "sell_price",
		"quantity", "fees", "realized_pnl", "opened_at", "closed_at", "approx_buy_pair",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("csv: writing header: %w", err)
	}

	for _, t := range result.Trades {
		row := []string{
			t.Symbol,
			t.BuyOrderID,
			t.SellOrderID,
			t.BuyPrice.String(),
			t.SellPrice.String(),
			t.Quantity.String(),
			t.Fees.String(),
			t.RealizedPnL.String(),
			t.OpenedAt.Format("2006-01-02T15:04:05Z07:00"),
			t.ClosedAt.Format("2006-01-02T15:04:05Z07:00"),
			fmt.Sprintf("%t", t.ApproxBuyPair),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csv: writing trade row: %w", err)
		}
	}

	return w.Error()
}
