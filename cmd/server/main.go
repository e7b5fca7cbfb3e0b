package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/animelar/animelar-api/internal/config"
	"github.com/animelar/animelar-api/internal/database"
	"github.com/animelar/animelar-api/internal/httpapi"
	"github.com/animelar/animelar-api/internal/repository"
	"github.com/animelar/animelar-api/internal/service"
	"github.com/animelar/animelar-api/internal/storage"
	"github.com/animelar/animelar-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logr := logger.New()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("database connect: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("database migrate: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	animeRepo := repository.NewAnimeRepository(db)
	episodeRepo := repository.NewEpisodeRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	adRepo := repository.NewAdRepository(db)
	bannerRepo := repository.NewBannerRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	adminService := service.NewAdminService(adminRepo, cfg.SuperAdminID, cfg.AnimePriceTiers)
	authService := service.NewAuthService(logr, userRepo, purchaseRepo)
	ledgerService := service.NewLedgerService(logr, userRepo, animeRepo, purchaseRepo, adRepo, cfg.AdPlacementFee)
	catalogService := service.NewCatalogService(logr, animeRepo, episodeRepo, adminService)
	adsService := service.NewAdsService(logr, adRepo, bannerRepo, adminService)
	statsService := service.NewStatsService(statsRepo, adminRepo)

	if err := adminService.EnsureBootstrap(ctx); err != nil {
		log.Fatalf("ensure bootstrap admin: %v", err)
	}

	var uploader *storage.Uploader
	if cfg.MediaUploadEnabled() {
		uploader, err = storage.NewUploader(storage.Config{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			Bucket:        cfg.S3Bucket,
			PublicBaseURL: cfg.S3PublicBaseURL,
			UsePathStyle:  cfg.S3UsePathStyle,
			Prefix:        cfg.S3Prefix,
		})
		if err != nil {
			log.Fatalf("storage uploader: %v", err)
		}
	} else {
		logr.Info("media upload disabled, S3 not configured")
	}

	logr.Info("starting animelar api", "superAdmin", cfg.SuperAdminID, "priceTiers", cfg.AnimePriceTiers)

	server := httpapi.NewServer(cfg.ListenAddr, logr, authService, adminService, catalogService, ledgerService, adsService, statsService, uploader)
	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logr.Error("api server stopped", "err", err)
	}
}
