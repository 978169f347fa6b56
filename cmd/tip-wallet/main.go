// Command tip-wallet runs the custodial transfer engine behind the
// social-media command bots.
//
// @title        tip-wallet API
// @version      1.0
// @description  Resolves SEND, WITHDRAW, BALANCE, STICKERS and DEPOSIT commands into custodial blockchain transfers.
package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/AlexZinkM/tip-wallet/internal/api"
	"github.com/AlexZinkM/tip-wallet/internal/client"
	"github.com/AlexZinkM/tip-wallet/internal/config"
	"github.com/AlexZinkM/tip-wallet/internal/store"
	"github.com/AlexZinkM/tip-wallet/tipbot"
)

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
	if err := cfg.PromptForSecret(); err != nil {
		log.Fatal("failed to read seed secret", zap.Error(err))
	}

	networks, err := config.LoadNetworks(cfg.NetworksFile)
	if err != nil {
		log.Fatal("failed to load network profiles", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	wallets, err := store.Open(ctx, cfg.MySQLDSN, networks.NativeToken())
	if err != nil {
		log.Fatal("failed to open wallet store", zap.Error(err))
	}
	defer wallets.Close()
	if err := wallets.EnsureSchema(ctx, networks.Tokens()); err != nil {
		log.Fatal("failed to ensure wallet schema", zap.Error(err))
	}

	nodes := client.NewNodeClient(time.Duration(cfg.NodeTimeoutSec)*time.Second, log)
	ticker := client.NewTickerClient(cfg.TickerURL)

	secret, err := cfg.SecretBytes()
	if err != nil {
		log.Fatal("failed to read seed secret", zap.Error(err))
	}
	svc := tipbot.New(networks, wallets, nodes, ticker, secret, cfg.DisplayCurrency, log)
	clear(secret)

	router := api.SetupRouter(svc, log)

	log.Info("listening", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
