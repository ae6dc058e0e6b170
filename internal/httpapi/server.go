// Package httpapi exposes the transaction engine over HTTP. Records submitted
// through the API follow the same ignore-and-continue policy as file input:
// a rule violation never fails the request, it simply leaves state unchanged.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/RichoDemus/payments-engine/pkg/engine"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const reportPrecision = 4

// Server wraps an engine behind HTTP handlers. The engine expects a single
// writer, so every Process call is serialized through the mutex.
type Server struct {
	mu     sync.Mutex
	engine *engine.Engine
	logger *zap.Logger
}

// NewServer wires a Server around an engine instance.
func NewServer(transactionEngine *engine.Engine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{engine: transactionEngine, logger: logger}
}

// Router builds the gin router for the API.
func (server *Server) Router(cfg Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Origin", "Accept"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/v1")
	api.POST("/transactions", server.handleSubmitTransaction)
	api.GET("/accounts", server.handleListAccounts)
	api.GET("/accounts/:client", server.handleGetAccount)

	return router
}

// Run serves the API until the context is canceled.
func Run(ctx context.Context, cfg Config, server *Server) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.Router(cfg),
	}

	errCh := make(chan error, 1)
	go func() {
		server.logger.Info("http api listening", zap.String("addr", cfg.ListenAddr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			server.logger.Warn("server shutdown error", zap.Error(shutdownErr))
		}
		if serveErr := <-errCh; serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return serveErr
		}
		return nil
	case serveErr := <-errCh:
		if errors.Is(serveErr, http.ErrServerClosed) {
			return nil
		}
		return serveErr
	}
}

type transactionRequest struct {
	Type   string `json:"type"`
	Client uint16 `json:"client"`
	Tx     uint32 `json:"tx"`
	Amount string `json:"amount"`
}

type accountResponse struct {
	Client    uint16 `json:"client"`
	Available string `json:"available"`
	Held      string `json:"held"`
	Total     string `json:"total"`
	Locked    bool   `json:"locked"`
}

func (server *Server) handleSubmitTransaction(ctx *gin.Context) {
	var request transactionRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	transactionType, err := engine.ParseType(request.Type)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_type", err.Error()))
		return
	}
	amount := decimal.Zero
	if transactionType.Funded() {
		amount, err = decimal.NewFromString(request.Amount)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, errorResponse("invalid_amount", "amount must be a decimal string"))
			return
		}
	}
	transaction, err := engine.NewTransaction(transactionType, engine.ClientID(request.Client), engine.TransactionID(request.Tx), amount)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_transaction", err.Error()))
		return
	}

	snapshot, seen := server.processAndSnapshot(ctx.Request.Context(), transaction)
	if !seen {
		ctx.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
		return
	}
	ctx.JSON(http.StatusAccepted, gin.H{"status": "accepted", "account": renderSnapshot(snapshot)})
}

func (server *Server) handleListAccounts(ctx *gin.Context) {
	snapshots := server.snapshots()
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].Client < snapshots[j].Client })
	accounts := make([]accountResponse, 0, len(snapshots))
	for _, snapshot := range snapshots {
		accounts = append(accounts, renderSnapshot(snapshot))
	}
	ctx.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

func (server *Server) handleGetAccount(ctx *gin.Context) {
	clientValue, err := strconv.ParseUint(ctx.Param("client"), 10, 16)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_client", "client id must be a 16-bit unsigned integer"))
		return
	}
	snapshot, seen := server.snapshot(engine.ClientID(clientValue))
	if !seen {
		ctx.JSON(http.StatusNotFound, errorResponse("unknown_client", "no transactions seen for client"))
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"account": renderSnapshot(snapshot)})
}

func (server *Server) processAndSnapshot(ctx context.Context, transaction engine.Transaction) (engine.Snapshot, bool) {
	server.mu.Lock()
	defer server.mu.Unlock()
	server.engine.Process(ctx, transaction)
	return server.engine.Snapshot(transaction.Client)
}

func (server *Server) snapshots() []engine.Snapshot {
	server.mu.Lock()
	defer server.mu.Unlock()
	return server.engine.Snapshots()
}

func (server *Server) snapshot(client engine.ClientID) (engine.Snapshot, bool) {
	server.mu.Lock()
	defer server.mu.Unlock()
	return server.engine.Snapshot(client)
}

func renderSnapshot(snapshot engine.Snapshot) accountResponse {
	return accountResponse{
		Client:    uint16(snapshot.Client),
		Available: snapshot.Available.StringFixed(reportPrecision),
		Held:      snapshot.Held.StringFixed(reportPrecision),
		Total:     snapshot.Total.StringFixed(reportPrecision),
		Locked:    snapshot.Locked,
	}
}

func errorResponse(code string, message string) gin.H {
	return gin.H{"error": code, "message": message}
}
