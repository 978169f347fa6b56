package model

import "errors"

// Error taxonomy for the transfer engine. All errors returned by the
// services wrap one of these sentinels so callers can match with errors.Is.
var (
	ErrUnknownToken        = errors.New("unknown token")
	ErrBadNetworkConfig    = errors.New("bad network configuration")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrWalletCreation      = errors.New("wallet creation failed")
	ErrSelfTransfer        = errors.New("sender and receiver are the same wallet")
	ErrBelowMinimumAmount  = errors.New("amount below network minimum")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNodeUnreachable     = errors.New("node unreachable")
	ErrMalformedResponse   = errors.New("malformed node response")
	ErrBroadcastFailed     = errors.New("broadcast failed on all nodes")
)

// ErrorResponse is the consistent JSON structure for all API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
