package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"listing-marketplace/internal/config"
	"listing-marketplace/internal/geo"
	"listing-marketplace/internal/handler"
	"listing-marketplace/internal/logger"
	"listing-marketplace/internal/middleware"
	mongostore "listing-marketplace/internal/mongo"
	"listing-marketplace/internal/repository"
	"listing-marketplace/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg := logger.NewLogger()
	lg.SetDebug(cfg.Debug())
	ctx := context.Background()

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	if err := repository.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	client, err := mongostore.NewMongoClient(ctx, cfg.MongoURI, 10*time.Second, lg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer client.Disconnect(context.Background())
	mdb := client.Database(cfg.MongoDB)
	if err := mongostore.EnsureListingIndexes(ctx, mdb); err != nil {
		log.Fatalf("%v", err)
	}

	resolver, err := geo.NewGoogleResolver(cfg.GoogleMapsAPIKey, cfg.GeocodeRegion)
	if err != nil {
		log.Fatalf("geocoder: %v", err)
	}

	listings := repository.NewListingRepository(mdb, mongostore.ListingsCollection)
	photos := repository.NewPhotoRepository(client, cfg.MongoDB)
	users := repository.NewUserRepository(db)
	enquiries := repository.NewEnquiryRepository(db)

	opts := service.SearchOptions{
		PageSize:             cfg.PageSize,
		RadiusKm:             cfg.SearchRadiusKm,
		PriceMatch:           cfg.PriceMatch,
		RelatedMaxDistanceKm: cfg.RelatedMaxDistanceKm,
		RelatedLimit:         cfg.RelatedLimit,
		GeocodeTimeout:       cfg.GeocodeTimeout,
		StoreTimeout:         cfg.StoreTimeout,
	}
	searchSvc := service.NewSearchService(resolver, listings, users, opts, lg)
	listingSvc := service.NewListingService(resolver, listings, users, users, photos, opts, lg)
	enquirySvc := service.NewEnquiryService(enquiries, listings, searchSvc, cfg.StoreTimeout, lg)
	wishlistSvc := service.NewWishlistService(users, listings, searchSvc, cfg.StoreTimeout, lg)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 1. Open routes (no JWT)
	api := r.Group("/api")
	// 2. Protected routes (JWT required)
	auth := api.Group("/", middleware.RequireSignin(cfg.JWTSecret))
	// 3. Admin routes
	admin := auth.Group("/", middleware.RequireAdmin(users))

	(&handler.ListingHandler{Search: searchSvc, Listings: listingSvc}).RegisterRoutes(api, auth, admin)
	(&handler.EnquiryHandler{Enquiries: enquirySvc, Wishlist: wishlistSvc}).RegisterRoutes(auth)
	(&handler.PhotoHandler{Listings: listingSvc}).RegisterRoutes(api, auth)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		lg.Info("listing service running on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("shutdown: %v", err)
	}
}
