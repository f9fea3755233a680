package p2p

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"blockledger_go/auth"
	"blockledger_go/blockchain"
	"blockledger_go/utils"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the HTTP request/response side of the node.
// It hosts the registration/login gate and read-only ledger views; the
// streaming replication channel lives on the ReplicationService.
type Server struct {
	Router      *mux.Router
	Chain       *blockchain.Blockchain
	Store       *auth.CredentialStore
	Replication *ReplicationService

	httpSrv *http.Server
}

// NewServer creates a new server instance over the shared node state
func NewServer(chain *blockchain.Blockchain, store *auth.CredentialStore, replication *ReplicationService) *Server {
	server := &Server{
		Router:      mux.NewRouter(),
		Chain:       chain,
		Store:       store,
		Replication: replication,
	}

	server.SetupRoutes()
	return server
}

// SetupRoutes configures the API routes
func (s *Server) SetupRoutes() {
	// Credential endpoints
	s.Router.HandleFunc("/register", s.RegisterHandler).Methods("POST")
	s.Router.HandleFunc("/login", s.LoginHandler).Methods("POST")

	// Ledger status endpoints
	s.Router.HandleFunc("/chain", s.ChainHandler).Methods("GET")
	s.Router.HandleFunc("/status", s.StatusHandler).Methods("GET")

	// Prometheus metrics
	s.Router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

// Start starts the HTTP server
func (s *Server) Start(port int) error {
	utils.LogInfo("API server starting on port %d", port)

	// Set timeouts for the server
	s.httpSrv = &http.Server{
		Handler:      s.Router,
		Addr:         fmt.Sprintf(":%d", port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return s.httpSrv.ListenAndServe()
}

// Shutdown stops accepting requests and drains in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
