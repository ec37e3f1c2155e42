package main

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gridai/gridai/pkg/types"
)

func TestVenueSymbolStripsSlash(t *testing.T) {
	if got := venueSymbol("BTC/USDT"); got != "BTCUSDT" {
		t.Fatalf("venueSymbol(BTC/USDT) = %q, want BTCUSDT", got)
	}
	if got := venueSymbol("BTCUSDT"); got != "BTCUSDT" {
		t.Fatalf("venueSymbol(BTCUSDT) = %q, want BTCUSDT", got)
	}
}

func TestOhlcvToCandleConvertsEveryField(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	row := types.OHLCV{Open: 100, High: 110, Low: 90, Close: 105, Volume: 12.5, Timestamp: ts}

	candle := ohlcvToCandle(row)

	if !candle.Open.Equal(decimal.NewFromFloat(100)) {
		t.Errorf("Open = %s, want 100", candle.Open)
	}
	if !candle.High.Equal(decimal.NewFromFloat(110)) {
		t.Errorf("High = %s, want 110", candle.High)
	}
	if !candle.Low.Equal(decimal.NewFromFloat(90)) {
		t.Errorf("Low = %s, want 90", candle.Low)
	}
	if !candle.Close.Equal(decimal.NewFromFloat(105)) {
		t.Errorf("Close = %s, want 105", candle.Close)
	}
	if !candle.Volume.Equal(decimal.NewFromFloat(12.5)) {
		t.Errorf("Volume = %s, want 12.5", candle.Volume)
	}
	if !candle.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %s, want %s", candle.Timestamp, ts)
	}
}

func TestFatalConfigReturnsExitConfig(t *testing.T) {
	if code := fatalConfig("missing %s", "thing"); code != exitConfig {
		t.Fatalf("fatalConfig returned %d, want exitConfig (%d)", code, exitConfig)
	}
}

func TestExitCodesMatchSpec(t *testing.T) {
	cases := map[string]int{"ok": exitOK, "config": exitConfig, "emergency stop": exitEmergencyStop, "signal": exitSignal}
	want := map[string]int{"ok": 0, "config": 1, "emergency stop": 2, "signal": 130}
	for name, got := range cases {
		if got != want[name] {
			t.Errorf("%s exit code = %d, want %d", name, got, want[name])
		}
	}
}
