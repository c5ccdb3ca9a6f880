package rpc

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"emberchain/core"
	"emberchain/observability"
)

type handlerFunc func(params []json.RawMessage) (interface{}, *rpcError)

// Server exposes the node's operations over JSON-RPC 2.0. Mutating methods
// require the bearer token from EMBER_RPC_TOKEN when one is configured.
type Server struct {
	node      *core.Node
	logger    *slog.Logger
	authToken string
	methods   map[string]handlerFunc
	mutating  map[string]bool
}

func NewServer(node *core.Node, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		node:      node,
		logger:    logger,
		authToken: strings.TrimSpace(os.Getenv("EMBER_RPC_TOKEN")),
	}
	s.registerMethods()
	return s
}

// Router builds the HTTP mux: JSON-RPC on POST /, health and metrics
// alongside.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", observability.MetricsHandler())
	r.Post("/", s.handle)
	return r
}

// Serve blocks until the context is cancelled, then drains in-flight
// requests.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("rpc server listening", "addr", addr)
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type requestIDKey struct{}

// requestID tags every request with a correlation id, honouring one supplied
// by the client.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-Id"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func (s *Server) authorized(r *http.Request) bool {
	if s.authToken == "" {
		return true
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	supplied := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(s.authToken)) == 1
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "unable to read request body", nil)
		return
	}
	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON", nil)
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", nil)
		return
	}
	handler, ok := s.methods[req.Method]
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "method not found", req.Method)
		return
	}
	if s.mutating[req.Method] && !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, req.ID, codeUnauthorized, "unauthorized", nil)
		return
	}

	start := time.Now()
	result, rpcErr := handler(req.Params)
	label := ""
	if rpcErr != nil {
		label = rpcErr.Message
	}
	observability.RPCMetrics().Observe(req.Method, label, time.Since(start))

	if rpcErr != nil {
		s.logger.Info("rpc call failed",
			"method", req.Method,
			"label", rpcErr.Message,
			"requestId", r.Context().Value(requestIDKey{}))
		status := http.StatusBadRequest
		if rpcErr.Code == codeServerError && rpcErr.Message == "Internal" {
			status = http.StatusInternalServerError
		}
		writeError(w, status, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	writeResult(w, req.ID, result)
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &rpcError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	_ = json.NewEncoder(w).Encode(rpcResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj})
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	_ = json.NewEncoder(w).Encode(rpcResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result})
}

func paramsError(err error) *rpcError {
	return &rpcError{Code: codeInvalidParams, Message: "InvalidParams", Data: err.Error()}
}

func ledgerError(err error) *rpcError {
	return &rpcError{Code: codeServerError, Message: errorLabel(err), Data: err.Error()}
}

func (s *Server) registerMethods() {
	s.methods = map[string]handlerFunc{
		// token views
		"emb_tokenInfo":              s.handleTokenInfo,
		"emb_balanceOf":              s.handleBalanceOf,
		"emb_settlementBalanceOf":    s.handleSettlementBalanceOf,
		"emb_totalSupply":            s.handleTotalSupply,
		"emb_owner":                  s.handleOwner,
		"emb_fees":                   s.handleFees,
		"emb_totals":                 s.handleTotals,
		"emb_allowance":              s.handleAllowance,
		"emb_txTrigger":              s.handleTxTrigger,
		"emb_txCounter":              s.handleTxCounter,
		"emb_walletsLimit":           s.handleWalletsLimit,
		"emb_walletsLimitEnabled":    s.handleWalletsLimitEnabled,
		"emb_airdropTokens":          s.handleAirdropTokens,
		"emb_liquidityMinted":        s.handleLiquidityMinted,
		"emb_isBlacklisted":          s.handleIsBlacklisted,
		"emb_isExcludedFee":          s.handleIsExcludedFee,
		"emb_isWalletLimitUnlimited": s.handleIsWalletLimitUnlimited,
		"emb_isPairAddress":          s.handleIsPairAddress,
		"emb_events":                 s.handleEvents,

		// token transactions
		"emb_transfer":                  s.handleTransfer,
		"emb_transferFrom":              s.handleTransferFrom,
		"emb_approve":                   s.handleApprove,
		"emb_setIsBlacklisted":          s.handleSetIsBlacklisted,
		"emb_setIsExcludedFee":          s.handleSetIsExcludedFee,
		"emb_setIsWalletLimitUnlimited": s.handleSetIsWalletLimitUnlimited,
		"emb_setPairAddress":            s.handleSetPairAddress,
		"emb_setIsWalletsLimitEnabled":  s.handleSetIsWalletsLimitEnabled,
		"emb_setWalletsLimit":           s.handleSetWalletsLimit,
		"emb_setTxTrigger":              s.handleSetTxTrigger,
		"emb_bulkSetFees":               s.handleBulkSetFees,
		"emb_bulkSetAddresses":          s.handleBulkSetAddresses,
		"emb_transferOwnership":         s.handleTransferOwnership,
		"emb_renounceOwnership":         s.handleRenounceOwnership,
		"emb_depositAirdropTokens":      s.handleDepositAirdropTokens,
		"emb_bulkAirdrop":               s.handleBulkAirdrop,
		"emb_withdrawToken":             s.handleWithdrawToken,

		// staking
		"stake_apr":             s.handleApr,
		"stake_poolReserve":     s.handlePoolReserve,
		"stake_stakeOf":         s.handleStakeOf,
		"stake_reservedRewards": s.handleReservedRewards,
		"stake_setApr":          s.handleSetApr,
		"stake_bulkSetApr":      s.handleBulkSetApr,
		"stake_depositPool":     s.handleDepositPool,
		"stake_withdrawPool":    s.handleWithdrawPool,
		"stake_stake":           s.handleStake,
		"stake_withdraw":        s.handleWithdrawStake,
	}
	s.mutating = map[string]bool{
		"emb_transfer":                  true,
		"emb_transferFrom":              true,
		"emb_approve":                   true,
		"emb_setIsBlacklisted":          true,
		"emb_setIsExcludedFee":          true,
		"emb_setIsWalletLimitUnlimited": true,
		"emb_setPairAddress":            true,
		"emb_setIsWalletsLimitEnabled":  true,
		"emb_setWalletsLimit":           true,
		"emb_setTxTrigger":              true,
		"emb_bulkSetFees":               true,
		"emb_bulkSetAddresses":          true,
		"emb_transferOwnership":         true,
		"emb_renounceOwnership":         true,
		"emb_depositAirdropTokens":      true,
		"emb_bulkAirdrop":               true,
		"emb_withdrawToken":             true,
		"stake_setApr":                  true,
		"stake_bulkSetApr":              true,
		"stake_depositPool":             true,
		"stake_withdrawPool":            true,
		"stake_stake":                   true,
		"stake_withdraw":                true,
	}
}
