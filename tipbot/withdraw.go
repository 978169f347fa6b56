package tipbot

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/tip-wallet/internal/model"
)

// Withdraw sends funds from a user's custodial wallet to an external
// address. With FullBalance set the amount is recomputed as
// balance − fee, which must stay positive.
func (s *Service) Withdraw(ctx context.Context, req model.WithdrawRequest) (*model.TransferResponse, error) {
	profile, err := s.networks.Profile(req.Token)
	if err != nil {
		return nil, err
	}

	var amount uint64
	if !req.FullBalance {
		if req.Amount == "" {
			return nil, fmt.Errorf("amount is required unless fullBalance is set")
		}
		amount, err = s.ToBaseUnits(ctx, req.Amount, req.Currency, profile)
		if err != nil {
			return nil, err
		}
	}

	wallet, err := s.resolveWallet(ctx, req.Username, req.Platform, req.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve wallet: %w", err)
	}

	return s.execute(ctx, transferOrder{
		wallet:      wallet,
		profile:     profile,
		amount:      amount,
		recipient:   req.Address,
		fullBalance: req.FullBalance,
	})
}
