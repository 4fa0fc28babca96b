package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"stock_go/internal/domain"
	"stock_go/internal/ledger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	price decimal.Decimal
	err   error
	calls int
}

func (s *stubProvider) FetchQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	s.calls++
	if s.err != nil {
		return domain.Quote{}, s.err
	}
	return domain.Quote{Symbol: symbol, Price: s.price, FetchedAt: time.Now()}, nil
}

type stubBroadcaster struct {
	events   []string
	payloads []any
}

func (s *stubBroadcaster) Broadcast(event string, payload any) {
	s.events = append(s.events, event)
	s.payloads = append(s.payloads, payload)
}

func newService(provider domain.QuoteProvider, b domain.Broadcaster, balance string) (*TradeService, *ledger.Ledger) {
	l := ledger.New(decimal.RequireFromString(balance), nil, nil)
	return NewTradeService(provider, l, b), l
}

func TestBuyStock_FetchesPriceThenTrades(t *testing.T) {
	provider := &stubProvider{price: decimal.RequireFromString("100")}
	svc, l := newService(provider, &stubBroadcaster{}, "50000.00")

	outcome, err := svc.BuyStock(context.Background(), "AAPL", 10)
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.Equal(t, 1, provider.calls)
	assert.NotEmpty(t, outcome.TradeID, "executed trade gets an id")
	assert.True(t, l.Balance().Equal(decimal.RequireFromString("49000.00")))
}

func TestBuyStock_UpstreamFailureNeverTouchesLedger(t *testing.T) {
	provider := &stubProvider{err: &domain.UpstreamError{Status: 429, Body: "rate limited"}}
	svc, l := newService(provider, &stubBroadcaster{}, "50000.00")

	_, err := svc.BuyStock(context.Background(), "AAPL", 10)

	var up *domain.UpstreamError
	require.True(t, errors.As(err, &up))
	assert.Equal(t, 429, up.Status)
	assert.True(t, l.Balance().Equal(decimal.RequireFromString("50000.00")), "ledger must be untouched")
}

func TestBuyStock_InsufficientFundsHasNoTradeID(t *testing.T) {
	provider := &stubProvider{price: decimal.RequireFromString("100")}
	svc, _ := newService(provider, &stubBroadcaster{}, "500.00")

	outcome, err := svc.BuyStock(context.Background(), "AAPL", 10)
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Empty(t, outcome.TradeID)
}

func TestSellStock_CreditsProceeds(t *testing.T) {
	provider := &stubProvider{price: decimal.RequireFromString("250.50")}
	svc, l := newService(provider, &stubBroadcaster{}, "1000.00")

	outcome, err := svc.SellStock(context.Background(), "TSLA", 2)
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.True(t, l.Balance().Equal(decimal.RequireFromString("1501.00")))
}

func TestTrade_EmptySymbol(t *testing.T) {
	provider := &stubProvider{price: decimal.RequireFromString("100")}
	svc, _ := newService(provider, &stubBroadcaster{}, "1000.00")

	_, err := svc.BuyStock(context.Background(), "", 1)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
	assert.Equal(t, 0, provider.calls, "empty symbol must not hit the provider")
}

func TestPublishPriceUpdate(t *testing.T) {
	provider := &stubProvider{price: decimal.RequireFromString("123.45")}
	b := &stubBroadcaster{}
	svc, _ := newService(provider, b, "1000.00")

	quote, err := svc.PublishPriceUpdate(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, quote.Price.Equal(decimal.RequireFromString("123.45")))

	require.Len(t, b.events, 1)
	assert.Equal(t, "ReceiveStockPriceUpdate", b.events[0])
}

func TestPublishPriceUpdate_FailureDoesNotBroadcast(t *testing.T) {
	provider := &stubProvider{err: domain.ErrPriceUnavailable}
	b := &stubBroadcaster{}
	svc, _ := newService(provider, b, "1000.00")

	_, err := svc.PublishPriceUpdate(context.Background(), "AAPL")
	assert.True(t, errors.Is(err, domain.ErrPriceUnavailable))
	assert.Empty(t, b.events, "a failed fetch must never push a fabricated price")
}
