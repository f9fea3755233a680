package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"blockledger_go/auth"
	"blockledger_go/blockchain"
	"blockledger_go/p2p"
	"blockledger_go/utils"

	"github.com/joho/godotenv"
)

// AppConfig holds all startup configurations
type AppConfig struct {
	APIPort int
	WSPort  int
	Verbose bool
}

func getEnvInt(key string, defaultValue int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultValue
	}
	valInt, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s: %s. Using default %d.", key, valStr, defaultValue)
		return defaultValue
	}
	return valInt
}

func loadConfig() *AppConfig {
	// .env is optional; environment variables win over it either way
	if err := godotenv.Load(); err != nil {
		utils.LogDebug("No .env file loaded: %v", err)
	}

	config := &AppConfig{}

	// Flags default to the environment values, so CLI flags override ENV
	flag.IntVar(&config.APIPort, "port", getEnvInt("API_PORT", 3001), "Port for the HTTP API (register/login/status)")
	flag.IntVar(&config.WSPort, "wsport", getEnvInt("WS_PORT", 6001), "Port for the WebSocket replication channel")
	flag.BoolVar(&config.Verbose, "verbose", os.Getenv("VERBOSE") == "true" || os.Getenv("VERBOSE") == "1", "Enable detailed logging")
	flag.Parse()

	return config
}

func main() {
	config := loadConfig()
	utils.SetVerbose(config.Verbose)

	// Process-lifetime state: the ledger starts at genesis and the credential
	// store starts empty on every boot. Nothing is persisted.
	chain := blockchain.NewBlockchain()
	store := auth.NewCredentialStore()

	replication := p2p.NewReplicationService(chain, store)
	server := p2p.NewServer(chain, store, replication)

	go func() {
		if err := replication.Start(config.WSPort); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start replication service: %v", err)
		}
	}()

	go func() {
		if err := server.Start(config.APIPort); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start API server: %v", err)
		}
	}()

	utils.PrintStartupMessage(config.APIPort, config.WSPort)
	utils.LogInfo("Genesis block hash: %s", chain.GetLastBlock().Hash)

	// Wait for the interrupt signal, then give in-flight requests a moment
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	utils.LogInfo("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		utils.LogError("API server shutdown: %v", err)
	}
	if err := replication.Shutdown(ctx); err != nil {
		utils.LogError("Replication service shutdown: %v", err)
	}
}
