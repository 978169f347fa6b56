package tipbot

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/AlexZinkM/tip-wallet/internal/common"
	"github.com/AlexZinkM/tip-wallet/internal/model"
)

var baseUnitsPerToken = big.NewRat(100_000_000, 1) // 10^8

// ToBaseUnits converts a requested amount/currency pair into the token's
// base-unit integer amount. Token-denominated amounts scale by 10^8; fiat
// amounts divide by the ticker unit price first. The result is truncated
// toward zero (never rounded up) and must meet the network minimum.
func (s *Service) ToBaseUnits(ctx context.Context, amount, currency string, profile model.NetworkProfile) (uint64, error) {
	currency = strings.ToLower(strings.TrimSpace(currency))

	var units uint64
	var err error
	if currency == "" || currency == profile.Token {
		units, err = common.ToBaseUnits(amount)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
		}
	} else {
		units, err = s.fiatToBaseUnits(ctx, amount, currency, profile)
		if err != nil {
			return 0, err
		}
	}

	if units < profile.MinAmount {
		return 0, fmt.Errorf("%w: %d < %d base units", model.ErrBelowMinimumAmount, units, profile.MinAmount)
	}
	return units, nil
}

// fiatToBaseUnits converts a fiat amount through the token's unit price.
// Arithmetic is exact rational math; no floats touch the result.
func (s *Service) fiatToBaseUnits(ctx context.Context, amount, currency string, profile model.NetworkProfile) (uint64, error) {
	if profile.TickerID == "" {
		return 0, fmt.Errorf("%w: token %q has no ticker id", model.ErrBadNetworkConfig, profile.Token)
	}

	price, err := s.ticker.Price(ctx, profile.TickerID, currency)
	if err != nil {
		return 0, fmt.Errorf("failed to get %s/%s rate: %w", profile.Token, currency, err)
	}

	amt, ok := new(big.Rat).SetString(amount)
	if !ok || amt.Sign() < 0 {
		return 0, fmt.Errorf("invalid amount %q", amount)
	}
	prc, ok := new(big.Rat).SetString(price)
	if !ok || prc.Sign() <= 0 {
		return 0, fmt.Errorf("invalid %s/%s rate %q", profile.Token, currency, price)
	}

	// amount / price tokens, scaled to base units, floor-truncated.
	value := new(big.Rat).Quo(amt, prc)
	value.Mul(value, baseUnitsPerToken)
	floor := new(big.Int).Quo(value.Num(), value.Denom())
	if !floor.IsUint64() {
		return 0, fmt.Errorf("amount %q overflows base units", amount)
	}
	return floor.Uint64(), nil
}
