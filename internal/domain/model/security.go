package model

// AssetClass identifies the kind of instrument a Security refers to.
type AssetClass string

const (
	AssetEquity AssetClass = "STK"
	AssetOption AssetClass = "OPT"
	AssetFuture AssetClass = "FUT"
	AssetIndex  AssetClass = "IND"
)

// Security is immutable reference data for a tradable instrument.
// Expiry is set for futures and options only (contract month, YYYYMMDD).
type Security struct {
	Symbol   string     `json:"symbol"`
	Class    AssetClass `json:"class"`
	Exchange string     `json:"exchange"`
	Currency string     `json:"currency"`
	Expiry   string     `json:"expiry,omitempty"`
}

// Stock builds an equity security on the default routing exchange.
func Stock(symbol string) Security {
	return Security{Symbol: symbol, Class: AssetEquity, Exchange: "SMART", Currency: "USD"}
}

// Future builds a futures security for the given contract month.
func Future(symbol, expiry, exchange string) Security {
	return Security{Symbol: symbol, Class: AssetFuture, Exchange: exchange, Currency: "USD", Expiry: expiry}
}

// Index builds a cash index security.
func Index(symbol, exchange string) Security {
	return Security{Symbol: symbol, Class: AssetIndex, Exchange: exchange, Currency: "USD"}
}

// Quote is a fresh snapshot of live market data for one security.
// Delta and Multiplier are populated for options only; a quote is never
// cached across decision cycles.
type Quote struct {
	Last       float64
	Delta      float64
	HasGreeks  bool
	Multiplier int
}

// Valid reports whether the quote carries a usable last trade price.
func (q Quote) Valid() bool {
	return q.Last > 0
}

// Position is a signed holding in one security (positive = long).
type Position struct {
	Contract Security
	Quantity float64
}
