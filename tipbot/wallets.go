package tipbot

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/AlexZinkM/tip-wallet/internal/crypto"
	"github.com/AlexZinkM/tip-wallet/internal/model"
)

// Resolve returns the custodial address for a (username, platform, token)
// identity, creating the wallet on first use. The call is idempotent:
// repeated calls for the same identity return the same address.
func (s *Service) Resolve(ctx context.Context, username, platform, token string) (string, error) {
	wallet, err := s.resolveWallet(ctx, username, platform, token)
	if err != nil {
		return "", err
	}
	return wallet.Address, nil
}

// resolveWallet is Resolve returning the full row, for flows that need the
// encrypted seed.
func (s *Service) resolveWallet(ctx context.Context, username, platform, token string) (*model.Wallet, error) {
	profile, err := s.networks.Profile(token)
	if err != nil {
		return nil, err
	}

	wallet, err := s.store.Find(ctx, username, platform, profile.Token)
	if err != nil {
		return nil, err
	}
	if wallet != nil && wallet.Address != "" {
		return wallet, nil
	}

	return s.generateWallet(ctx, username, platform, profile)
}

// generateWallet derives a fresh wallet and persists it. Persistence is an
// atomic insert-if-absent: if a concurrent request created the identity's
// wallet first, that wallet is returned and the freshly derived one is
// discarded.
func (s *Service) generateWallet(ctx context.Context, username, platform string, profile model.NetworkProfile) (*model.Wallet, error) {
	mnemonic, err := crypto.NewMnemonic()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrWalletCreation, err)
	}

	publicKey := crypto.PublicKeyFromPassphrase([]byte(mnemonic))
	address, err := crypto.AddressFromPublicKey(publicKey, profile.AddressVersion)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrWalletCreation, err)
	}

	encrypted, err := crypto.EncryptSeed(mnemonic, s.seedKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrWalletCreation, err)
	}

	wallet := model.Wallet{
		Username:      strings.ToLower(username),
		Platform:      platform,
		Token:         profile.Token,
		Address:       address,
		EncryptedSeed: encrypted,
	}
	persisted, err := s.store.Insert(ctx, wallet)
	if err != nil {
		return nil, err
	}

	if persisted.Address == address {
		s.log.Info("wallet created",
			zap.String("platform", platform),
			zap.String("token", profile.Token),
			zap.String("address", address))
	}
	return persisted, nil
}
