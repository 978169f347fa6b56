package model

// SendRequest represents request for POST /commands/send
type SendRequest struct {
	Sender           string `json:"sender" binding:"required"`
	SenderPlatform   string `json:"senderPlatform" binding:"required"`
	Receiver         string `json:"receiver" binding:"required"`
	ReceiverPlatform string `json:"receiverPlatform"`
	Token            string `json:"token" binding:"required"`
	Amount           string `json:"amount" binding:"required"`
	Currency         string `json:"currency"` // defaults to the token itself
	Memo             string `json:"memo"`
}

// WithdrawRequest represents request for POST /commands/withdraw
type WithdrawRequest struct {
	Username    string `json:"username" binding:"required"`
	Platform    string `json:"platform" binding:"required"`
	Token       string `json:"token" binding:"required"`
	Address     string `json:"address" binding:"required"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	FullBalance bool   `json:"fullBalance"` // when true, Amount is ignored
}

// StickersRequest represents request for POST /commands/stickers
type StickersRequest struct {
	Buyer    string `json:"buyer" binding:"required"`
	Platform string `json:"platform" binding:"required"`
	Token    string `json:"token" binding:"required"`
	Code     string `json:"code" binding:"required"` // order code, sent as memo
}

// TransferResponse represents response for all transfer commands
type TransferResponse struct {
	TransactionID string             `json:"txId"`
	Outcomes      []BroadcastOutcome `json:"outcomes"`
}

// BalanceResponse represents response for GET /commands/balance
type BalanceResponse struct {
	Address  string `json:"address"`
	Token    string `json:"token"`
	Balance  string `json:"balance"`            // token units
	Rate     string `json:"rate,omitempty"`     // token price in display currency
	Display  string `json:"display,omitempty"`  // balance * rate
	Currency string `json:"currency,omitempty"` // display currency
}

// DepositResponse represents response for GET /commands/deposit
type DepositResponse struct {
	Address string `json:"address"`
	Token   string `json:"token"`
	QR      string `json:"qr"` // base64 PNG of the address
}
