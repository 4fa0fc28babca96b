package ledger

import (
	"fmt"
	"sync"

	"stock_go/internal/domain"
	"stock_go/internal/infra"

	"github.com/shopspring/decimal"
)

// Ledger owns the single simulated cash balance. It is the only component
// allowed to mutate it. One mutex guards the affordability check, the
// mutation, and the post-trade balance read together, so concurrent trades
// can never both spend the same funds.
type Ledger struct {
	mu       sync.Mutex
	balance  decimal.Decimal
	notifier domain.BalanceNotifier
	metrics  *infra.Metrics
}

// New creates a Ledger seeded with the initial balance. The notifier receives
// the post-trade balance after every successful trade; it may be nil.
func New(seed decimal.Decimal, notifier domain.BalanceNotifier, metrics *infra.Metrics) *Ledger {
	return &Ledger{
		balance:  seed,
		notifier: notifier,
		metrics:  metrics,
	}
}

// Balance returns the current balance. Never fails, no side effects.
func (l *Ledger) Balance() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// Buy deducts price*quantity from the balance if the funds are available.
// An unaffordable trade is a normal rejected outcome, not an error; the
// balance stays untouched and no notification is emitted.
func (l *Ledger) Buy(price decimal.Decimal, quantity int64) (domain.TradeOutcome, error) {
	if err := validate(price, quantity); err != nil {
		return domain.TradeOutcome{}, err
	}

	cost := price.Mul(decimal.NewFromInt(quantity))

	l.mu.Lock()
	if l.balance.LessThan(cost) {
		outcome := domain.TradeOutcome{Success: false, Balance: l.balance}
		l.mu.Unlock()
		if l.metrics != nil {
			l.metrics.RecordTradeRejected()
		}
		return outcome, nil
	}
	l.balance = l.balance.Sub(cost)
	newBalance := l.balance
	l.mu.Unlock()

	if l.metrics != nil {
		l.metrics.RecordTradeExecuted()
	}
	if l.notifier != nil {
		l.notifier.BalanceChanged(newBalance)
	}
	return domain.TradeOutcome{Success: true, Balance: newBalance}, nil
}

// Sell credits price*quantity to the balance. There is no holdings inventory
// in this simulation, so a valid sell always succeeds.
func (l *Ledger) Sell(price decimal.Decimal, quantity int64) (domain.TradeOutcome, error) {
	if err := validate(price, quantity); err != nil {
		return domain.TradeOutcome{}, err
	}

	proceeds := price.Mul(decimal.NewFromInt(quantity))

	l.mu.Lock()
	l.balance = l.balance.Add(proceeds)
	newBalance := l.balance
	l.mu.Unlock()

	if l.metrics != nil {
		l.metrics.RecordTradeExecuted()
	}
	if l.notifier != nil {
		l.notifier.BalanceChanged(newBalance)
	}
	return domain.TradeOutcome{Success: true, Balance: newBalance}, nil
}

func validate(price decimal.Decimal, quantity int64) error {
	if !price.IsPositive() {
		return fmt.Errorf("%w: price must be positive, got %s", domain.ErrInvalidArgument, price)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", domain.ErrInvalidArgument, quantity)
	}
	return nil
}
