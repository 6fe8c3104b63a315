package main

import (
	"context"
	"fmt"
	"os"

	bidding "github.com/MaxLisniak/commerce/internal/biddingService"
	catalog "github.com/MaxLisniak/commerce/internal/catalogService"
	"github.com/MaxLisniak/commerce/internal/config"
	"github.com/MaxLisniak/commerce/internal/database"
	"github.com/MaxLisniak/commerce/internal/models"
	"github.com/MaxLisniak/commerce/internal/repository"
	"github.com/MaxLisniak/commerce/internal/server"
	"github.com/MaxLisniak/commerce/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := utils.ConfigureLogger(cfg.Log.Level, cfg.Log.Format, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		utils.Fatal("failed to open storage", map[string]any{"storage": cfg.Storage, "error": err.Error()})
	}
	defer closeStore()

	biddingSvc := bidding.NewBiddingService(store)
	catalogSvc := catalog.NewCatalogService(store, biddingSvc, catalog.WithAdmins(cfg.Auth.Admins...))

	if cfg.Seed {
		if err := prepopulateListings(ctx, store, catalogSvc); err != nil {
			utils.Fatal("failed to seed listings", map[string]any{"error": err.Error()})
		}
	}

	gin.SetMode(cfg.Server.GinMode)
	router := server.SetupRouter(biddingSvc, catalogSvc, cfg.Auth)

	utils.Info("starting auction server", map[string]any{"addr": cfg.Server.Addr, "storage": cfg.Storage})
	if err := router.Run(cfg.Server.Addr); err != nil {
		utils.Fatal("failed to start server", map[string]any{"error": err.Error()})
	}
}

// openStore builds the configured backend and returns a function releasing it
func openStore(ctx context.Context, cfg config.Config) (repository.Store, func(), error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		db, err := database.OpenPostgres(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewGormRepo(db)
		if err := repo.Migrate(ctx); err != nil {
			closeDB(db)
			return nil, nil, err
		}
		return repo, func() { closeDB(db) }, nil
	default:
		return repository.NewMemoryRepo(), func() {}, nil
	}
}

func closeDB(db *gorm.DB) {
	if err := database.Close(db); err != nil {
		utils.Warn("failed to close database", map[string]any{"error": err.Error()})
	}
}

// prepopulateListings adds a demo seller with a few listings. The category
// goes straight to the store since seeding runs without an admin.
func prepopulateListings(ctx context.Context, store repository.CatalogDB, svc *catalog.CatalogService) error {
	seller, err := svc.RegisterUser(ctx, "demo-seller", "demo-seller-password")
	if err != nil {
		return err
	}
	category := models.Category{CategoryID: utils.GenerateID(), Name: "Home"}
	if err := store.CreateCategory(ctx, category); err != nil {
		return err
	}

	listings := []catalog.NewListingInput{
		{Title: "Desk lamp", Description: "Brass desk lamp, works fine", StartingPrice: 100, CategoryID: category.CategoryID},
		{Title: "Armchair", Description: "Green velvet armchair", StartingPrice: 200, CategoryID: category.CategoryID},
		{Title: "Record player", Description: "Turntable from the seventies", StartingPrice: 150},
	}
	for _, in := range listings {
		if _, err := svc.CreateListing(ctx, seller.UserID, in); err != nil {
			return err
		}
	}

	utils.Info("seeded demo listings", map[string]any{"seller_id": seller.UserID, "count": len(listings)})
	return nil
}
