package p2p

import (
	"encoding/json"
	"errors"
	"net/http"

	"blockledger_go/auth"
	"blockledger_go/utils"

	"github.com/google/uuid"
)

// credentialsRequest is the body of /register and /login
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

/**
 * RegisterHandler creates a new credential.
 * Responds {success:true}, or 400 {error:"Username already exists"} when the
 * username is taken.
 */
func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.LogError("Error decoding register request: %v", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	defer r.Body.Close()

	if err := s.Store.Create(req.Username, req.Password); err != nil {
		if errors.Is(err, auth.ErrDuplicateUser) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Username already exists"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	utils.LogInfo("User registered via API: %s", req.Username)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

/**
 * LoginHandler verifies a credential and issues a token.
 * The token is an opaque random value; nothing in the node consumes it — the
 * replication channel authenticates independently with its own AUTH message.
 * Responds {token}, or 401 {error:"Invalid credentials"}.
 */
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.LogError("Error decoding login request: %v", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	defer r.Body.Close()

	if !s.Store.Verify(req.Username, req.Password) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		return
	}

	token := uuid.New().String()
	utils.LogInfo("User logged in via API: %s", req.Username)
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// ChainHandler returns the full ledger snapshot.
// The snapshot grows with the ledger and is intentionally unbounded.
func (s *Server) ChainHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Chain.GetBlocks())
}

// statusResponse is the body of /status
type statusResponse struct {
	Height   int    `json:"height"`
	LastHash string `json:"lastHash"`
	Valid    bool   `json:"valid"`
	Sessions int    `json:"sessions"`
}

// StatusHandler returns a summary of the node's ledger and session state
func (s *Server) StatusHandler(w http.ResponseWriter, r *http.Request) {
	status := statusResponse{
		Height:   s.Chain.GetLength(),
		LastHash: s.Chain.GetLastBlock().Hash,
		Valid:    s.Chain.IsValid(),
	}
	if s.Replication != nil {
		status.Sessions = s.Replication.Registry().Count()
	}

	writeJSON(w, http.StatusOK, status)
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		utils.LogError("Error writing response: %v", err)
	}
}
