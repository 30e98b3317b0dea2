// cmd/doppelkopf/main.go
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"doppelkopf/internal/client"
	"doppelkopf/internal/server"
)

func main() {
	logger := logrus.New()
	if level, err := logrus.ParseLevel(envOr("DOKO_LOG_LEVEL", "info")); err == nil {
		logger.SetLevel(level)
	}

	host := envOr("DOKO_HOST", "127.0.0.1")
	port := envOr("DOKO_PORT", "4711")
	addr := fmt.Sprintf("%s:%s", host, port)
	games := envInt("DOKO_GAMES", 1)

	switch mode := envOr("DOKO_MODE", "server"); mode {
	case "server":
		runServer(logger, addr)
	case "client":
		runClient(logger, addr, games)
	default:
		logger.Fatalf("unknown DOKO_MODE %q (want server or client)", mode)
	}
}

// runServer hosts the table until interrupted.
func runServer(logger *logrus.Logger, addr string) {
	srv := server.New(server.Config{Addr: addr, Logger: logger})
	if err := srv.Start(); err != nil {
		logger.Fatalf("start server: %v", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	if err := srv.Stop(); err != nil {
		logger.Errorf("stop server: %v", err)
	}
}

// runClient joins the table with a minimal agent, plays the requested number
// of games and reports the session counters.
func runClient(logger *logrus.Logger, addr string, games int) {
	c := client.New(&firstCardAgent{}, logger)
	if err := c.Connect(addr); err != nil {
		logger.Fatalf("connect: %v", err)
	}
	if err := c.PlayGames(games); err != nil {
		logger.Errorf("session ended: %v", err)
	}
	if err := c.Disconnect(); err != nil {
		logger.Debugf("disconnect: %v", err)
	}

	stats := c.Stats()
	logger.WithFields(logrus.Fields{
		"seat":       c.Seat(),
		"games":      stats.GamesCompleted,
		"won":        stats.GamesWon,
		"lost":       stats.GamesLost,
		"picked":     stats.CardsPicked,
		"accepted":   stats.CardsAccepted,
		"notInHand":  stats.NotInHand,
		"notAllowed": stats.NotAllowed,
	}).Info("session summary")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
