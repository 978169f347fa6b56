package tipbot

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/tip-wallet/internal/model"
)

// Stickers pays the configured merchant the sticker price from the buyer's
// custodial wallet, carrying the order code in the memo so the merchant can
// match the payment.
func (s *Service) Stickers(ctx context.Context, req model.StickersRequest) (*model.TransferResponse, error) {
	profile, err := s.networks.Profile(req.Token)
	if err != nil {
		return nil, err
	}
	if profile.Stickers == nil {
		return nil, fmt.Errorf("stickers are not available for token %q", profile.Token)
	}
	offer := profile.Stickers

	amount, err := s.ToBaseUnits(ctx, offer.Price, offer.Currency, profile)
	if err != nil {
		return nil, err
	}

	buyer, err := s.resolveWallet(ctx, req.Buyer, req.Platform, req.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve buyer wallet: %w", err)
	}

	return s.execute(ctx, transferOrder{
		wallet:    buyer,
		profile:   profile,
		amount:    amount,
		recipient: offer.Address,
		memo:      req.Code,
	})
}
