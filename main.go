package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"storekeeper/m/internal/auth"
	"storekeeper/m/internal/config"
	"storekeeper/m/internal/persist"
	"storekeeper/m/internal/shell"
	"storekeeper/m/internal/store"
	"storekeeper/m/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logger.Init("storekeeper", cfg.Log.Pretty)
	logger.SetLevel(cfg.Log.Level)

	checker, err := credentialChecker(cfg.Auth)
	if err != nil {
		log.Fatalf("unable to prepare credentials: %v", err)
	}
	authenticator := auth.New(checker, cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)

	gateway := persist.NewGateway(cfg.DataDir)
	st := store.New(authenticator)
	st.Restore(gateway.Load())

	sh := shell.New(st, gateway, authenticator, os.Stdin, os.Stdout)
	if err := sh.Run(); err != nil {
		log.Fatalf("session error: %v", err)
	}
}

// credentialChecker prefers a pre-computed bcrypt hash; otherwise the
// configured plaintext password is hashed once at startup.
func credentialChecker(cfg config.AuthConfig) (auth.CredentialChecker, error) {
	if cfg.PasswordHash != "" {
		return auth.NewBcryptChecker(cfg.PasswordHash), nil
	}
	return auth.NewBcryptCheckerFromPassword(cfg.Password)
}
