// Package tipbot resolves social-media commands (SEND, WITHDRAW, BALANCE,
// STICKERS, DEPOSIT) into custodial transfers on the configured networks.
package tipbot

import (
	"context"
	"encoding/json"
	"net/url"

	"go.uber.org/zap"

	"github.com/AlexZinkM/tip-wallet/internal/config"
	"github.com/AlexZinkM/tip-wallet/internal/crypto"
	"github.com/AlexZinkM/tip-wallet/internal/model"
	"github.com/AlexZinkM/tip-wallet/internal/tx"
)

// NodeAPI is the slice of the node client the command flows need.
type NodeAPI interface {
	Broadcast(ctx context.Context, profile model.NetworkProfile, transactions []*tx.Transaction) model.TransferResult
	Balance(ctx context.Context, profile model.NetworkProfile, address string) (uint64, error)
	GetFromNode(ctx context.Context, profile model.NetworkProfile, path string, params url.Values) json.RawMessage
}

// RateSource resolves token unit prices in fiat currencies.
type RateSource interface {
	Price(ctx context.Context, tickerID, currency string) (string, error)
}

// WalletStore is the persistence contract of the wallet directory.
type WalletStore interface {
	Find(ctx context.Context, username, platform, token string) (*model.Wallet, error)
	Insert(ctx context.Context, w model.Wallet) (*model.Wallet, error)
}

// Service composes wallet resolution, amount conversion, transaction
// building and multi-node broadcast into the per-command flows. It holds no
// per-request state; any number of requests may run in parallel.
type Service struct {
	networks        *config.NetworkStore
	store           WalletStore
	nodes           NodeAPI
	ticker          RateSource
	seedKey         [32]byte
	displayCurrency string
	log             *zap.Logger
}

// New wires a Service from its collaborators. secret is the process-wide
// seed-encryption secret; the caller should zero it after the call.
func New(networks *config.NetworkStore, store WalletStore, nodes NodeAPI, ticker RateSource, secret []byte, displayCurrency string, log *zap.Logger) *Service {
	return &Service{
		networks:        networks,
		store:           store,
		nodes:           nodes,
		ticker:          ticker,
		seedKey:         crypto.SeedKey(secret),
		displayCurrency: displayCurrency,
		log:             log,
	}
}
