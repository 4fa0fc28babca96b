package service

import (
	"context"
	"fmt"
	"log/slog"

	"stock_go/internal/domain"
	"stock_go/internal/hub"
	"stock_go/internal/ledger"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// TradeService ties the quote provider, the trade ledger and the broadcaster
// together: resolve the live price, then apply the trade. An upstream failure
// means the ledger is never touched.
type TradeService struct {
	quotes domain.QuoteProvider
	ledger *ledger.Ledger
	hub    domain.Broadcaster
	logger *slog.Logger
}

// NewTradeService creates a TradeService instance
func NewTradeService(quotes domain.QuoteProvider, l *ledger.Ledger, b domain.Broadcaster) *TradeService {
	return &TradeService{
		quotes: quotes,
		ledger: l,
		hub:    b,
		logger: slog.Default().With("module", "trade_service"),
	}
}

// GetBalance returns the current simulated cash balance.
func (s *TradeService) GetBalance() decimal.Decimal {
	return s.ledger.Balance()
}

// GetQuote fetches the current market price for symbol.
func (s *TradeService) GetQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	return s.quotes.FetchQuote(ctx, symbol)
}

// BuyStock fetches the live price for symbol and buys quantity shares
// against the balance.
func (s *TradeService) BuyStock(ctx context.Context, symbol string, quantity int64) (domain.TradeOutcome, error) {
	return s.trade(ctx, domain.SideBuy, symbol, quantity)
}

// SellStock fetches the live price for symbol and credits the proceeds of
// quantity shares to the balance.
func (s *TradeService) SellStock(ctx context.Context, symbol string, quantity int64) (domain.TradeOutcome, error) {
	return s.trade(ctx, domain.SideSell, symbol, quantity)
}

func (s *TradeService) trade(ctx context.Context, side, symbol string, quantity int64) (domain.TradeOutcome, error) {
	if symbol == "" {
		return domain.TradeOutcome{}, fmt.Errorf("%w: empty symbol", domain.ErrInvalidArgument)
	}

	quote, err := s.quotes.FetchQuote(ctx, symbol)
	if err != nil {
		return domain.TradeOutcome{}, err
	}

	var outcome domain.TradeOutcome
	if side == domain.SideSell {
		outcome, err = s.ledger.Sell(quote.Price, quantity)
	} else {
		outcome, err = s.ledger.Buy(quote.Price, quantity)
	}
	if err != nil {
		return domain.TradeOutcome{}, err
	}

	if outcome.Success {
		outcome.TradeID = ulid.Make().String()
		s.logger.Info("Trade executed",
			slog.String("trade_id", outcome.TradeID),
			slog.String("side", side),
			slog.String("symbol", symbol),
			slog.Int64("quantity", quantity),
			slog.String("price", quote.Price.String()),
			slog.String("balance", outcome.Balance.String()))
	} else {
		s.logger.Info("Trade rejected",
			slog.String("side", side),
			slog.String("symbol", symbol),
			slog.Int64("quantity", quantity),
			slog.String("price", quote.Price.String()))
	}
	return outcome, nil
}

// PublishPriceUpdate fetches the current price for symbol and pushes it to
// every connected real-time client.
func (s *TradeService) PublishPriceUpdate(ctx context.Context, symbol string) (domain.Quote, error) {
	quote, err := s.quotes.FetchQuote(ctx, symbol)
	if err != nil {
		return domain.Quote{}, err
	}
	s.hub.Broadcast(hub.EventStockPriceUpdate, hub.PricePayload{
		Symbol: quote.Symbol,
		Price:  quote.Price,
	})
	return quote, nil
}
