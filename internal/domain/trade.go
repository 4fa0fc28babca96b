package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// TradeRequest is a single buy/sell intent as bound from an API request.
type TradeRequest struct {
	Symbol   string `json:"symbol"`
	Quantity int64  `json:"quantity"`
}

// TradeOutcome reports whether a trade was admitted and the balance after it.
// A rejected trade (insufficient funds) is a normal outcome, not an error.
type TradeOutcome struct {
	TradeID string          `json:"trade_id,omitempty"`
	Success bool            `json:"success"`
	Balance decimal.Decimal `json:"balance"`
}

// Quote is a symbol's market price at fetch time. Quotes are transient and
// never stored.
type Quote struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	FetchedAt time.Time       `json:"fetched_at"`
}
