package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/AlexZinkM/tip-wallet/internal/handler"
	"github.com/AlexZinkM/tip-wallet/tipbot"
)

// SetupRouter sets up router with handlers
func SetupRouter(svc *tipbot.Service, log *zap.Logger) http.Handler {
	commands := handler.NewCommandHandler(svc, log)

	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Command endpoints
	mux.HandleFunc("/commands/send", commands.Send)
	mux.HandleFunc("/commands/withdraw", commands.Withdraw)
	mux.HandleFunc("/commands/stickers", commands.Stickers)
	mux.HandleFunc("/commands/balance", commands.Balance)
	mux.HandleFunc("/commands/deposit", commands.Deposit)

	return mux
}
