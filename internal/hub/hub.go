package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"stock_go/internal/infra"

	"github.com/shopspring/decimal"
)

// Event names pushed over the real-time channel.
const (
	EventUpdateBalance    = "UpdateBalance"
	EventStockPriceUpdate = "ReceiveStockPriceUpdate"
	EventStockUpdate      = "ReceiveStockUpdate"
)

// envelope is the wire format for every pushed event.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub fans events out to every connected websocket client. Delivery is
// fire-and-forget: no acknowledgment, no replay for late joiners, and a slow
// client is dropped rather than allowed to block the others.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	clients    map[*Client]bool

	// balanceFn answers the SendStockUpdate manual-test trigger. Set once
	// during wiring, before Run starts.
	balanceFn func() decimal.Decimal

	metrics *infra.Metrics
	logger  *slog.Logger
}

// NewHub creates an empty hub. Call Run before serving connections.
func NewHub(metrics *infra.Metrics) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		clients:    make(map[*Client]bool),
		metrics:    metrics,
		logger:     slog.Default().With("module", "hub"),
	}
}

// SetBalanceFunc wires the current-balance source used by the
// SendStockUpdate trigger.
func (h *Hub) SetBalanceFunc(fn func() decimal.Decimal) {
	h.balanceFn = fn
}

// Run owns the client registry. It MUST be run in a single goroutine;
// register, unregister and broadcast are serialized through it.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			h.logger.Info("Hub stopped")
			return
		case c := <-h.register:
			h.clients[c] = true
			if h.metrics != nil {
				h.metrics.IncrementConnections()
			}
			h.logger.Info("Client connected", slog.Int("clients", len(h.clients)))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Send buffer full: the client is too slow, cut it
					// loose instead of stalling the fan-out.
					h.drop(c)
					h.logger.Warn("Dropped slow client", slog.Int("clients", len(h.clients)))
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	if h.metrics != nil {
		h.metrics.DecrementConnections()
	}
}

// Broadcast pushes a named event to all connected clients. It never blocks
// and never reports failure to the caller.
func (h *Hub) Broadcast(event string, payload any) {
	msg, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		h.logger.Error("Broadcast marshal failed", slog.String("event", event), slog.Any("error", err))
		return
	}
	if h.metrics != nil {
		h.metrics.RecordBroadcast()
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("Broadcast queue full, event dropped", slog.String("event", event))
	}
}

// BalanceChanged implements domain.BalanceNotifier for the trade ledger.
func (h *Hub) BalanceChanged(balance decimal.Decimal) {
	h.Broadcast(EventUpdateBalance, balancePayload{Balance: balance})
}

type balancePayload struct {
	Balance decimal.Decimal `json:"balance"`
}

// PricePayload carries a ReceiveStockPriceUpdate event.
type PricePayload struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// stockUpdatePayload answers the SendStockUpdate manual-test trigger with the
// symbol and the current balance, mirroring the original hub behavior.
type stockUpdatePayload struct {
	Symbol  string          `json:"symbol"`
	Balance decimal.Decimal `json:"balance"`
}

// ServeWS upgrades an HTTP request to a websocket connection and registers it.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", slog.Any("error", err))
		return
	}

	c := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	h.register <- c

	go c.writePump()
	go c.readPump()
}
