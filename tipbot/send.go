package tipbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/AlexZinkM/tip-wallet/internal/model"
)

// Send transfers between two platform users. Both wallets are resolved
// (and created on first use) before anything is signed.
func (s *Service) Send(ctx context.Context, req model.SendRequest) (*model.TransferResponse, error) {
	receiverPlatform := req.ReceiverPlatform
	if receiverPlatform == "" {
		receiverPlatform = req.SenderPlatform
	}

	// Same identity on both sides never leaves the process.
	if strings.EqualFold(req.Sender, req.Receiver) && req.SenderPlatform == receiverPlatform {
		return nil, model.ErrSelfTransfer
	}

	profile, err := s.networks.Profile(req.Token)
	if err != nil {
		return nil, err
	}

	amount, err := s.ToBaseUnits(ctx, req.Amount, req.Currency, profile)
	if err != nil {
		return nil, err
	}

	sender, err := s.resolveWallet(ctx, req.Sender, req.SenderPlatform, req.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sender wallet: %w", err)
	}
	recipient, err := s.Resolve(ctx, req.Receiver, receiverPlatform, req.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve receiver wallet: %w", err)
	}

	return s.execute(ctx, transferOrder{
		wallet:    sender,
		profile:   profile,
		amount:    amount,
		recipient: recipient,
		memo:      req.Memo,
	})
}
