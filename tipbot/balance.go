package tipbot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/AlexZinkM/tip-wallet/internal/common"
	"github.com/AlexZinkM/tip-wallet/internal/model"
)

// Balance reports a user's custodial balance, with a fiat display value
// when the token has a ticker id configured.
func (s *Service) Balance(ctx context.Context, username, platform, token string) (*model.BalanceResponse, error) {
	profile, err := s.networks.Profile(token)
	if err != nil {
		return nil, err
	}

	wallet, err := s.resolveWallet(ctx, username, platform, token)
	if err != nil {
		return nil, err
	}

	balance, err := s.nodes.Balance(ctx, profile, wallet.Address)
	if err != nil {
		return nil, err
	}

	resp := &model.BalanceResponse{
		Address: wallet.Address,
		Token:   profile.Token,
		Balance: common.FromBaseUnits(balance),
	}

	// The fiat line is cosmetic; a missing rate never fails the command.
	if profile.TickerID != "" {
		rate, err := s.ticker.Price(ctx, profile.TickerID, s.displayCurrency)
		if err == nil {
			// Use float only for display, not for critical operations
			balFloat, _ := strconv.ParseFloat(resp.Balance, 64)
			rateFloat, _ := strconv.ParseFloat(rate, 64)
			resp.Rate = rate
			resp.Display = fmt.Sprintf("%.2f", balFloat*rateFloat)
			resp.Currency = s.displayCurrency
		}
	}
	return resp, nil
}
