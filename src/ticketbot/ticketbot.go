package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/codexdev/ticketbot/src/ticketbot/bot"
	"github.com/codexdev/ticketbot/src/ticketbot/config"
	"github.com/codexdev/ticketbot/src/ticketbot/data"
	"github.com/codexdev/ticketbot/src/ticketbot/webserver"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := config.Load()
	if cfg.Token == "" {
		log.Fatal("DISCORD_TOKEN is required")
	}

	db := data.MustOpen(cfg.DatabaseDSN)
	if err := data.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb = data.MustRedis(cfg.RedisURL)
	} else {
		log.Println("REDIS_URL not set, event stream disabled")
	}

	ticketBot, err := bot.New(bot.Config{
		Token:   cfg.Token,
		GuildID: cfg.GuildID,
		DB:      db,
		Redis:   rdb,
	})
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	if err := ticketBot.Start(); err != nil {
		log.Fatalf("Failed to start bot: %v", err)
	}
	log.Println("Ticket bot is running. Press CTRL-C to exit.")

	var web *webserver.Server
	if cfg.HTTPAddr != "" {
		web = webserver.New(cfg.HTTPAddr, ticketBot.Store(), ticketBot.Sessions())
		go func() {
			log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
			if err := web.Run(); err != nil {
				log.Printf("HTTP server stopped: %v", err)
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	if web != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := web.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown: %v", err)
		}
	}
	ticketBot.Stop()
	log.Println("Shutdown complete")
}
