package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// QuoteProvider defines the interface for market-data price sources
type QuoteProvider interface {
	FetchQuote(ctx context.Context, symbol string) (Quote, error)
}

// Broadcaster pushes a named event to every currently connected real-time
// client. Fire-and-forget: no delivery guarantee, no error to the caller.
type Broadcaster interface {
	Broadcast(event string, payload any)
}

// BalanceNotifier receives the post-trade balance after every successful trade
type BalanceNotifier interface {
	BalanceChanged(balance decimal.Decimal)
}
