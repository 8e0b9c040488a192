package domain

// TradeSide represents the direction of a single execution (BUY or SELL).
type TradeSide string

const (
	Buy  TradeSide = "BUY"
	Sell TradeSide = "SELL"
)

// Region is the market region a ticker trades in.
type Region string

const (
	RegionUS Region = "US"
	RegionHK Region = "HK"
	RegionUK Region = "UK"
)

// Currency is the settlement currency of a trade.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyHKD Currency = "HKD"
	CurrencyGBP Currency = "GBP"
)

// Platform is the trading venue a trade was executed on.
type Platform string

const (
	PlatformFutu Platform = "FUTU"
	PlatformIBKR Platform = "IBKR"
)

// PositionKey identifies the aggregation scope of a position: every trade
// sharing this tuple contributes to the same position for one owner.
type PositionKey struct {
	CreatedBy string
	Ticker    string
	Platform  Platform
	Region    Region
}
