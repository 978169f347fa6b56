package tipbot

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"

	"github.com/AlexZinkM/tip-wallet/internal/model"
)

// Deposit returns the user's custodial address plus a QR code so the
// address can be scanned from a chat reply. The wallet is created on first
// use.
func (s *Service) Deposit(ctx context.Context, username, platform, token string) (*model.DepositResponse, error) {
	profile, err := s.networks.Profile(token)
	if err != nil {
		return nil, err
	}

	address, err := s.Resolve(ctx, username, platform, token)
	if err != nil {
		return nil, err
	}

	qr, err := generateQRCode(address)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	return &model.DepositResponse{
		Address: address,
		Token:   profile.Token,
		QR:      qr,
	}, nil
}

// generateQRCode generates QR code of address in base64
func generateQRCode(address string) (string, error) {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	// Get PNG image
	png, err := qr.PNG(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}

	// Encode to base64
	return base64.StdEncoding.EncodeToString(png), nil
}
