package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
)

// KlineInterval represents the time interval for kline data
type KlineInterval string

const (
	Interval1m   KlineInterval = "1"
	Interval3m   KlineInterval = "3"
	Interval5m   KlineInterval = "5"
	Interval15m  KlineInterval = "15"
	Interval30m  KlineInterval = "30"
	Interval1h   KlineInterval = "60"
	Interval2h   KlineInterval = "120"
	Interval4h   KlineInterval = "240"
	Interval6h   KlineInterval = "360"
	Interval12h  KlineInterval = "720"
	Interval1d   KlineInterval = "D"
	Interval1w   KlineInterval = "W"
	Interval1M   KlineInterval = "M"
)

// Kline represents a single kline/candlestick data point
type Kline struct {
	StartTime    time.Time
	OpenPrice    float64
	HighPrice    float64
	LowPrice     float64
	ClosePrice   float64
	Volume       float64
	Turnover     float64
}

// KlineParams holds parameters for fetching kline data
type KlineParams struct {
	Category string        // "spot", "linear", "inverse"
	Symbol   string        // Trading pair symbol (e.g., "BTCUSDT")
	Interval KlineInterval // Time interval
	Start    *time.Time    // Start time (optional)
	End      *time.Time    // End time (optional)
	Limit    int           // Number of records to return (max 1000, default 200)
}

// GetKlines fetches kline/candlestick data from Bybit
func (c *Client) GetKlines(ctx context.Context, params KlineParams) ([]Kline, error) {
	if params.Category == "" {
		params.Category = "spot"
	}
	if params.Limit == 0 {
		params.Limit = 200
	}
	if params.Limit > 1000 {
		params.Limit = 1000
	}

	// Build request parameters
	reqParams := map[string]interface{}{
		"category": params.Category,
		"symbol":   params.Symbol,
		"interval": string(params.Interval),
		"limit":    params.Limit,
	}

	// Add optional time filters
	if params.Start != nil {
		reqParams["start"] = params.Start.UnixMilli()
	}
	if params.End != nil {
		reqParams["end"] = params.End.UnixMilli()
	}

	// Make API call
	result, err := c.httpClient.NewUtaBybitServiceWithParams(reqParams).GetMarketKline(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get klines: %w", err)
	}

	// Parse response
	klines, err := c.parseKlineResponse(result)
	if err != nil {
		return nil, fmt.Errorf("failed to parse kline response: %w", err)
	}

	return klines, nil
}

// GetLatestPrice gets the latest price for a symbol
func (c *Client) GetLatestPrice(ctx context.Context, category, symbol string) (float64, error) {
	if category == "" {
		category = "spot"
	}

	params := map[string]interface{}{
		"category": category,
		"symbol":   symbol,
	}

	result, err := c.httpClient.NewUtaBybitServiceWithParams(params).GetMarketTickers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest price: %w", err)
	}

	// Extract price from response
	price, err := c.parseLatestPriceResponse(result)
	if err != nil {
		return 0, fmt.Errorf("failed to parse price response: %w", err)
	}

	return price, nil
}

// parseKlineResponse parses the API response into Kline structs
func (c *Client) parseKlineResponse(response interface{}) ([]Kline, error) {
	// Convert response to ServerResponse first
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return nil, fmt.Errorf("invalid response type")
	}

	if serverResp.RetCode != 0 {
		return nil, fmt.Errorf("API error: %s (code: %d)", serverResp.RetMsg, serverResp.RetCode)
	}

	// Parse the result as KlineResponse
	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	var klineResult struct {
		Symbol   string     `json:"symbol"`
		Category string     `json:"category"`
		List     [][]string `json:"list"`
	}

	if err := json.Unmarshal(resultBytes, &klineResult); err != nil {
		return nil, fmt.Errorf("failed to unmarshal kline result: %w", err)
	}

	var klines []Kline
	for _, item := range klineResult.List {
		if len(item) < 7 {
			continue // Skip incomplete data
		}

		// Bybit kline format: [startTime, openPrice, highPrice, lowPrice, closePrice, volume, turnover]
		kline := Kline{
			StartTime:  time.UnixMilli(parseInt64(item[0])),
			OpenPrice:  parseFloat64(item[1]),
			HighPrice:  parseFloat64(item[2]),
			LowPrice:   parseFloat64(item[3]),
			ClosePrice: parseFloat64(item[4]),
			Volume:     parseFloat64(item[5]),
			Turnover:   parseFloat64(item[6]),
		}
		klines = append(klines, kline)
	}

	return klines, nil
}

// parseLatestPriceResponse parses the ticker response to extract the latest price
func (c *Client) parseLatestPriceResponse(response interface{}) (float64, error) {
	// Convert response to ServerResponse first
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return 0, fmt.Errorf("invalid response type")
	}

	if serverResp.RetCode != 0 {
		return 0, fmt.Errorf("API error: %s (code: %d)", serverResp.RetMsg, serverResp.RetCode)
	}

	// Parse the result as TickerResponse
	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal result: %w", err)
	}

	var tickerResult struct {
		Category string `json:"category"`
		List     []struct {
			Symbol    string `json:"symbol"`
			LastPrice string `json:"lastPrice"`
		} `json:"list"`
	}

	if err := json.Unmarshal(resultBytes, &tickerResult); err != nil {
		return 0, fmt.Errorf("failed to unmarshal ticker result: %w", err)
	}

	if len(tickerResult.List) == 0 {
		return 0, fmt.Errorf("no ticker data found")
	}

	// Return the last price of the first (and should be only) ticker
	return parseFloat64(tickerResult.List[0].LastPrice), nil
}

// GetOrderBook gets the order book for a symbol
func (c *Client) GetOrderBook(ctx context.Context, category, symbol string, limit int) (interface{}, error) {
	if category == "" {
		category = "spot"
	}
	if limit == 0 {
		limit = 25
	}

	params := map[string]interface{}{
		"category": category,
		"symbol":   symbol,
		"limit":    limit,
	}

	result, err := c.httpClient.NewUtaBybitServiceWithParams(params).GetOrderBookInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get order book: %w", err)
	}

	return result, nil
}

// gridai trades spot only, so the teacher's perpetual-futures market data
// (mark/index price, funding rate, open interest, generic instrument-info
// passthrough) has no caller and was dropped; instrument precision comes
// from InstrumentManager below. See DESIGN.md.


