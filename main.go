// main.go
package main

import (
	"context"
	"log"
	"os"

	"gas-stock/cmd"
	"gas-stock/internal/data/repository"
	"gas-stock/internal/wire"
	"gas-stock/migrations"
	"gas-stock/pkg/cache"
	"gas-stock/pkg/database"
	"gas-stock/pkg/storage"
	"gas-stock/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App.Name, config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.String("db_driver", config.Database.Driver),
	)

	users, closeDB := initStore(config, logger)
	defer closeDB()

	hasher := utils.NewPasswordHasher(config.Security.PasswordHasher)
	tokens := utils.NewTokenManager(config.JWT.Secret, config.JWT.AccessTTL, config.JWT.RefreshTTL)

	profileCache, closeCache := cache.InitCache(config.Redis, logger)
	defer closeCache()

	images, err := storage.InitImageStore(config.Storage, logger)
	if err != nil {
		logger.Fatal("Failed to init image storage", zap.Error(err))
	}

	app := wire.Wiring(wire.Deps{
		Repo:   repository.NewRepository(users, hasher, logger),
		Tokens: tokens,
		Hasher: hasher,
		Cache:  profileCache,
		Images: images,
	}, config, logger)

	if len(os.Args) > 1 && os.Args[1] == "createadmin" {
		if err := cmd.CreateAdmin(context.Background(), app.Service.Account, config.Admin, logger); err != nil {
			logger.Fatal("Failed to create admin", zap.Error(err))
		}
		return
	}

	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}

// initStore picks the persistent store named by DB_DRIVER.
func initStore(config *utils.Config, logger *zap.Logger) (repository.UserRepository, func()) {
	if config.Database.Driver == "memory" {
		logger.Warn("Using in-memory store; data is lost on restart")
		return repository.NewMemoryUserRepository(), func() {}
	}

	if config.Database.AutoMigrate {
		if err := database.Migrate(config.Database, migrations.FS, logger); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	logger.Info("Database connected successfully")

	return repository.NewUserRepository(db, logger), db.Close
}
