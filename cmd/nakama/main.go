package main

import (
	"context"
	"database/sql"

	"kmahjong/internal/ports/nakama"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule proxies Nakama initialization to the nakama adapter package.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	return nakama.InitModule(ctx, logger, db, nk, initializer)
}

// main is never executed; Nakama loads this package as a plugin and calls
// InitModule, but a main function is still required to compile as package main.
func main() {}
