package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"nottebuia/config"
	"nottebuia/internal/repository"
	"nottebuia/internal/service"
	"nottebuia/internal/store"
	"nottebuia/internal/transport/rest"
	"nottebuia/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database("nottebuia")

	// Redis connection
	redisAddr := strings.TrimPrefix(cfg.RedisAddr, "redis://")
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Shared room store and realtime hub
	roomStore := store.NewRedisStore(rdb, cfg.RoomTTL)
	wsHub := ws.NewHub()

	// Services
	statsRepo := repository.NewStatsRepo(db)
	statsSvc := service.NewStatsService(statsRepo)
	authSvc := service.NewAuthService(cfg.JWTSecret)
	roomSvc := service.NewRoomService(roomStore, statsSvc, cfg.MinPlayers, cfg.RestartOnEnd)
	roomSvc.SetBroadcaster(wsHub)

	router := rest.NewRouter(&rest.Container{
		AuthService: authSvc,
		RoomService: roomSvc,
		WSHub:       wsHub,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Printf("Room TTL %s, min players %d, restart on end %t", cfg.RoomTTL, cfg.MinPlayers, cfg.RestartOnEnd)
		log.Println("Endpoints:")
		log.Println("  POST/GET /v1/rooms")
		log.Println("  GET  /v1/rooms/{code}")
		log.Println("  POST /v1/rooms/{code}/join")
		log.Println("  POST /v1/rooms/{code}/leave")
		log.Println("  POST /v1/rooms/{code}/start")
		log.Println("  POST /v1/rooms/{code}/end")
		log.Println("  WS   /v1/ws/rooms/{code}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
