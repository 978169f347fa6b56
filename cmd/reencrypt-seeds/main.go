// Rotates the seed-encryption secret: decrypts every stored wallet seed
// with the current secret and re-encrypts it with the new one, fresh IVs
// included. Run while the server is stopped.
// Usage: go run ./cmd/reencrypt-seeds
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/AlexZinkM/tip-wallet/internal/config"
	"github.com/AlexZinkM/tip-wallet/internal/crypto"
	"github.com/AlexZinkM/tip-wallet/internal/store"
)

func promptSecret(label string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal")
	}
	fmt.Fprintf(os.Stderr, "%s: ", label)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("secret cannot be empty")
	}
	return raw, nil
}

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}
	networks, err := config.LoadNetworks(cfg.NetworksFile)
	if err != nil {
		log.Fatal("failed to load network profiles", zap.Error(err))
	}

	oldSecret, err := promptSecret("Current seed encryption secret")
	if err != nil {
		log.Fatal("failed to read current secret", zap.Error(err))
	}
	newSecret, err := promptSecret("New seed encryption secret")
	if err != nil {
		log.Fatal("failed to read new secret", zap.Error(err))
	}

	oldKey := crypto.SeedKey(oldSecret)
	newKey := crypto.SeedKey(newSecret)
	clear(oldSecret)
	clear(newSecret)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	wallets, err := store.Open(ctx, cfg.MySQLDSN, networks.NativeToken())
	if err != nil {
		log.Fatal("failed to open wallet store", zap.Error(err))
	}
	defer wallets.Close()

	rotate := func(encrypted string) (string, error) {
		seed, err := crypto.DecryptSeed(encrypted, oldKey)
		if err != nil {
			return "", err
		}
		defer clear(seed)
		return crypto.EncryptSeed(string(seed), newKey)
	}

	for _, token := range networks.Tokens() {
		done, err := wallets.ReencryptSeeds(ctx, token, rotate)
		if err != nil {
			log.Fatal("seed rotation aborted",
				zap.String("token", token),
				zap.Int("rotated", done),
				zap.Error(err))
		}
		log.Info("seeds rotated", zap.String("token", token), zap.Int("rotated", done))
	}
}
