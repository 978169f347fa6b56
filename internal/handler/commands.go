package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/AlexZinkM/tip-wallet/internal/model"
	"github.com/AlexZinkM/tip-wallet/tipbot"
)

// CommandHandler exposes the tip-bot command flows over HTTP.
type CommandHandler struct {
	svc *tipbot.Service
	log *zap.Logger
}

// NewCommandHandler creates a new CommandHandler
func NewCommandHandler(svc *tipbot.Service, log *zap.Logger) *CommandHandler {
	return &CommandHandler{svc: svc, log: log}
}

// Send handles POST /commands/send
// @Summary      Send tokens to another user
// @Description  Resolves both custodial wallets and broadcasts a transfer
// @Tags         commands
// @Accept       json
// @Produce      json
// @Param        request  body      model.SendRequest  true  "Transfer data"
// @Success      200      {object}  model.TransferResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /commands/send [post]
func (h *CommandHandler) Send(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := h.svc.Send(r.Context(), req)
	if err != nil {
		h.writeTaxonomyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Withdraw handles POST /commands/withdraw
// @Summary      Withdraw to an external address
// @Description  Sends funds from the user's custodial wallet to an external address; fullBalance sends balance minus fee
// @Tags         commands
// @Accept       json
// @Produce      json
// @Param        request  body      model.WithdrawRequest  true  "Withdrawal data"
// @Success      200      {object}  model.TransferResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /commands/withdraw [post]
func (h *CommandHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := h.svc.Withdraw(r.Context(), req)
	if err != nil {
		h.writeTaxonomyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Stickers handles POST /commands/stickers
// @Summary      Buy stickers
// @Description  Pays the configured merchant the sticker price from the buyer's wallet
// @Tags         commands
// @Accept       json
// @Produce      json
// @Param        request  body      model.StickersRequest  true  "Order data"
// @Success      200      {object}  model.TransferResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /commands/stickers [post]
func (h *CommandHandler) Stickers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.StickersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := h.svc.Stickers(r.Context(), req)
	if err != nil {
		h.writeTaxonomyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Balance handles GET /commands/balance
// @Summary      Get custodial balance
// @Description  Returns the user's balance with an optional fiat display value
// @Tags         commands
// @Produce      json
// @Param        username  query     string  true  "Username"
// @Param        platform  query     string  true  "Platform"
// @Param        token     query     string  true  "Token symbol"
// @Success      200       {object}  model.BalanceResponse
// @Failure      400       {object}  model.ErrorResponse
// @Router       /commands/balance [get]
func (h *CommandHandler) Balance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	resp, err := h.svc.Balance(r.Context(), q.Get("username"), q.Get("platform"), q.Get("token"))
	if err != nil {
		h.writeTaxonomyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Deposit handles GET /commands/deposit
// @Summary      Get deposit address
// @Description  Returns the user's custodial address and a QR code, creating the wallet on first use
// @Tags         commands
// @Produce      json
// @Param        username  query     string  true  "Username"
// @Param        platform  query     string  true  "Platform"
// @Param        token     query     string  true  "Token symbol"
// @Success      200       {object}  model.DepositResponse
// @Failure      400       {object}  model.ErrorResponse
// @Router       /commands/deposit [get]
func (h *CommandHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	resp, err := h.svc.Deposit(r.Context(), q.Get("username"), q.Get("platform"), q.Get("token"))
	if err != nil {
		h.writeTaxonomyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeTaxonomyError maps the service error taxonomy onto HTTP statuses.
func (h *CommandHandler) writeTaxonomyError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrUnknownToken),
		errors.Is(err, model.ErrSelfTransfer),
		errors.Is(err, model.ErrBelowMinimumAmount):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrInsufficientBalance):
		status = http.StatusPaymentRequired
	case errors.Is(err, model.ErrWalletNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrNodeUnreachable),
		errors.Is(err, model.ErrBroadcastFailed),
		errors.Is(err, model.ErrMalformedResponse):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		h.log.Error("command failed", zap.Error(err))
	}
	writeError(w, status, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
