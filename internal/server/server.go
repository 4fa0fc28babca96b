package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"stock_go/internal/domain"
	"stock_go/internal/hub"
	"stock_go/internal/infra"
	"stock_go/internal/infra/storage"
	"stock_go/internal/service"
)

// Server is the HTTP request layer: it binds requests, invokes the trade
// service and maps domain errors to status codes. No trading logic lives here.
type Server struct {
	R       *gin.Engine
	Trades  *service.TradeService
	Store   *storage.Storage
	Hub     *hub.Hub
	Metrics *infra.Metrics
	Logger  *slog.Logger
}

type apiError struct {
	Message string `json:"message"`
}

// NewServer wires the router, middleware and routes.
func NewServer(trades *service.TradeService, store *storage.Storage, h *hub.Hub, metrics *infra.Metrics, logger *slog.Logger, corsOrigin string) *Server {
	gin.SetMode(gin.ReleaseMode)
	g := gin.New()

	// Request logging
	g.Use(func(cn *gin.Context) {
		start := time.Now()
		cn.Next()
		logger.Info("http_request",
			slog.String("method", cn.Request.Method),
			slog.String("path", cn.Request.URL.Path),
			slog.Int("status", cn.Writer.Status()),
			slog.String("ip", cn.ClientIP()),
			slog.Duration("latency", time.Since(start)),
		)
	})

	g.Use(gin.Recovery())

	// CORS
	g.Use(func(cn *gin.Context) {
		origin := cn.GetHeader("Origin")
		cn.Writer.Header().Set("Vary", "Origin")
		cn.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		cn.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		cn.Writer.Header().Set("Access-Control-Max-Age", "86400")
		if corsOrigin == "*" {
			cn.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else if origin != "" && origin == corsOrigin {
			cn.Writer.Header().Set("Access-Control-Allow-Origin", corsOrigin)
		}
		if cn.Request.Method == http.MethodOptions {
			cn.AbortWithStatus(http.StatusNoContent)
			return
		}
		cn.Next()
	})

	s := &Server{
		R:       g,
		Trades:  trades,
		Store:   store,
		Hub:     h,
		Metrics: metrics,
		Logger:  logger,
	}

	g.GET("/health", func(cn *gin.Context) { cn.JSON(http.StatusOK, gin.H{"ok": true}) })
	g.GET("/ws", func(cn *gin.Context) { h.ServeWS(cn.Writer, cn.Request) })

	api := g.Group("/api")
	api.GET("/stocks/balance", s.getBalance)
	api.GET("/stocks/price/:symbol", s.getStockPrice)
	api.POST("/stocks/buy", s.buyStock)
	api.POST("/stocks/sell", s.sellStock)
	api.POST("/stocks/price/:symbol/publish", s.publishPriceUpdate)
	api.GET("/metrics", s.getMetrics)

	api.GET("/watchlist", s.getWatchlist)
	api.PUT("/watchlist/:symbol", s.putWatchlistEntry)
	api.POST("/watchlist/:symbol/favorite", s.toggleFavorite)
	api.DELETE("/watchlist/:symbol", s.deleteWatchlistEntry)

	return s
}

// --- Helpers ---

func (s *Server) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, apiError{Message: msg})
}

// mapDomainError translates the error taxonomy into HTTP status codes.
func (s *Server) mapDomainError(c *gin.Context, where string, err error) {
	var up *domain.UpstreamError
	var ce *domain.ConfigError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		s.badRequest(c, err.Error())
	case errors.As(err, &up):
		status := http.StatusServiceUnavailable
		if up.Status > 0 {
			status = http.StatusBadGateway
		}
		c.JSON(status, apiError{Message: "market data provider unavailable"})
	case errors.Is(err, domain.ErrPriceUnavailable):
		c.JSON(http.StatusBadGateway, apiError{Message: "stock price not available"})
	case errors.As(err, &ce):
		s.Logger.Error("configuration error", slog.String("where", where), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, apiError{Message: "server misconfigured"})
	default:
		s.Logger.Error("internal_error", slog.String("where", where), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, apiError{Message: "internal server error"})
	}
}

// --- Stock handlers ---

func (s *Server) getBalance(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"balance": s.Trades.GetBalance()})
}

func (s *Server) getStockPrice(c *gin.Context) {
	symbol := strings.TrimSpace(c.Param("symbol"))
	quote, err := s.Trades.GetQuote(c.Request.Context(), symbol)
	if err != nil {
		s.mapDomainError(c, "GetQuote", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"price": quote.Price})
}

func (s *Server) buyStock(c *gin.Context) {
	var req domain.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid request body")
		return
	}

	outcome, err := s.Trades.BuyStock(c.Request.Context(), strings.TrimSpace(req.Symbol), req.Quantity)
	if err != nil {
		s.mapDomainError(c, "BuyStock", err)
		return
	}
	if !outcome.Success {
		s.badRequest(c, "insufficient funds")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Stock bought successfully",
		"balance":  outcome.Balance,
		"trade_id": outcome.TradeID,
	})
}

func (s *Server) sellStock(c *gin.Context) {
	var req domain.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid request body")
		return
	}

	outcome, err := s.Trades.SellStock(c.Request.Context(), strings.TrimSpace(req.Symbol), req.Quantity)
	if err != nil {
		s.mapDomainError(c, "SellStock", err)
		return
	}
	if !outcome.Success {
		s.badRequest(c, "selling off the stock failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance":  outcome.Balance,
		"trade_id": outcome.TradeID,
	})
}

func (s *Server) publishPriceUpdate(c *gin.Context) {
	symbol := strings.TrimSpace(c.Param("symbol"))
	quote, err := s.Trades.PublishPriceUpdate(c.Request.Context(), symbol)
	if err != nil {
		s.mapDomainError(c, "PublishPriceUpdate", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": quote.Symbol, "price": quote.Price})
}

func (s *Server) getMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.Metrics.Snapshot())
}

// --- Watchlist handlers ---

func (s *Server) getWatchlist(c *gin.Context) {
	entries, err := s.Store.GetAllEntries()
	if err != nil {
		s.mapDomainError(c, "GetAllEntries", err)
		return
	}
	if entries == nil {
		entries = []domain.WatchlistEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) putWatchlistEntry(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if symbol == "" {
		s.badRequest(c, "symbol is required")
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	// Body is optional; ignore bind errors for an empty body
	_ = c.ShouldBindJSON(&body)

	entry := &domain.WatchlistEntry{Symbol: symbol, Name: body.Name}
	if existing, _ := s.Store.GetEntry(symbol); existing != nil {
		entry.IsFavorite = existing.IsFavorite
		entry.CreatedAt = existing.CreatedAt
		if entry.Name == "" {
			entry.Name = existing.Name
		}
	}
	if entry.Name == "" {
		entry.Name = symbol
	}

	if err := s.Store.UpsertEntry(entry); err != nil {
		s.mapDomainError(c, "UpsertEntry", err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) toggleFavorite(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	fav, err := s.Store.ToggleFavorite(symbol)
	if err != nil {
		s.badRequest(c, "unknown symbol")
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "is_favorite": fav})
}

func (s *Server) deleteWatchlistEntry(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if err := s.Store.DeleteEntry(symbol); err != nil {
		s.mapDomainError(c, "DeleteEntry", err)
		return
	}
	c.Status(http.StatusNoContent)
}
