package tipbot

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AlexZinkM/tip-wallet/internal/crypto"
	"github.com/AlexZinkM/tip-wallet/internal/model"
	"github.com/AlexZinkM/tip-wallet/internal/tx"
)

// transferOrder is the internal, validated form shared by the command
// flows. amount is ignored when fullBalance is set.
type transferOrder struct {
	wallet      *model.Wallet
	profile     model.NetworkProfile
	amount      uint64
	recipient   string
	memo        string
	fullBalance bool
}

// execute runs the transfer state machine: validate → authorize → build →
// broadcast → aggregate. Steps are strictly sequential for one order; the
// method itself is stateless and safe to call from any number of
// goroutines. Nothing is retried here, and no partial signing state is
// visible outside this function.
func (s *Service) execute(ctx context.Context, order transferOrder) (*model.TransferResponse, error) {
	log := s.log.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("token", order.profile.Token))

	// Validate. Everything here fails before any wallet decryption or
	// node contact.
	if order.recipient == order.wallet.Address {
		return nil, model.ErrSelfTransfer
	}
	if _, err := crypto.AddressBytes(order.recipient); err != nil {
		return nil, err
	}
	if !order.fullBalance {
		if order.amount == 0 {
			return nil, fmt.Errorf("amount must be positive")
		}
		if order.amount < order.profile.MinAmount {
			return nil, fmt.Errorf("%w: %d < %d base units", model.ErrBelowMinimumAmount, order.amount, order.profile.MinAmount)
		}
	}
	if !crypto.ValidEncryptedSeed(order.wallet.EncryptedSeed) {
		return nil, fmt.Errorf("%w: stored seed has an invalid format", model.ErrWalletCreation)
	}

	// Authorize against the current balance.
	balance, err := s.nodes.Balance(ctx, order.profile, order.wallet.Address)
	if err != nil {
		return nil, err
	}

	amount := order.amount
	if order.fullBalance {
		if balance <= order.profile.Fee {
			return nil, fmt.Errorf("%w: balance %d does not cover the fee %d", model.ErrInsufficientBalance, balance, order.profile.Fee)
		}
		amount = balance - order.profile.Fee
	} else if amount > math.MaxUint64-order.profile.Fee {
		// amount + fee would wrap around; no balance can cover it.
		return nil, fmt.Errorf("%w: amount %d base units plus fee %d overflows", model.ErrInsufficientBalance, amount, order.profile.Fee)
	} else if required := amount + order.profile.Fee; balance < required {
		return nil, fmt.Errorf("%w: have %d, need %d base units", model.ErrInsufficientBalance, balance, required)
	}

	// Decrypt and build. The plaintext seed lives only for the duration
	// of the signing call.
	seed, err := crypto.DecryptSeed(order.wallet.EncryptedSeed, s.seedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt seed: %w", err)
	}
	transaction, err := tx.BuildTransfer(tx.TransferParams{
		Network:     order.profile.AddressVersion,
		Amount:      amount,
		Fee:         order.profile.Fee,
		RecipientID: order.recipient,
		VendorField: order.memo,
		Timestamp:   tx.Timestamp(time.Now()),
		Seed:        seed,
	})
	clear(seed)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}

	// Broadcast and aggregate.
	result := s.nodes.Broadcast(ctx, order.profile, []*tx.Transaction{transaction})
	if len(result.Outcomes) == 0 {
		return nil, model.ErrBroadcastFailed
	}

	txID, accepted := result.AcceptedID()
	log.Info("transfer broadcast",
		zap.String("tx_id", transaction.ID),
		zap.Uint64("amount", amount),
		zap.Uint64("fee", order.profile.Fee),
		zap.Int("nodes_reached", len(result.Outcomes)),
		zap.Bool("accepted", accepted))

	return &model.TransferResponse{
		TransactionID: txID,
		Outcomes:      result.Outcomes,
	}, nil
}
