package p2p_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"blockledger_go/auth"
	"blockledger_go/blockchain"
	"blockledger_go/p2p"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *p2p.Server {
	t.Helper()

	chain := blockchain.NewBlockchain()
	store := auth.NewCredentialStore()
	return p2p.NewServer(chain, store, p2p.NewReplicationService(chain, store))
}

func postJSON(t *testing.T, server *p2p.Server, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest("POST", path, bytes.NewBuffer(payload))
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	return rr
}

func getJSON(t *testing.T, server *p2p.Server, path string, out interface{}) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest("GET", path, nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), out))
	}
	return rr
}

func TestRegisterHandler_Success(t *testing.T) {
	server := newTestServer(t)

	rr := postJSON(t, server, "/register", map[string]string{"username": "alice", "password": "pw1"})

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]bool
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp["success"])
	assert.True(t, server.Store.Exists("alice"))
}

func TestRegisterHandler_Duplicate(t *testing.T) {
	server := newTestServer(t)
	require.NoError(t, server.Store.Create("alice", "pw1"))

	rr := postJSON(t, server, "/register", map[string]string{"username": "alice", "password": "pw2"})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Username already exists", resp["error"])

	// The first credential is untouched
	assert.True(t, server.Store.Verify("alice", "pw1"))
	assert.False(t, server.Store.Verify("alice", "pw2"))
}

func TestRegisterHandler_MalformedBody(t *testing.T) {
	server := newTestServer(t)

	req, err := http.NewRequest("POST", "/register", bytes.NewBufferString(`{"username": "alice"`))
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid request body")
}

func TestLoginHandler_IssuesOpaqueToken(t *testing.T) {
	server := newTestServer(t)
	require.NoError(t, server.Store.Create("alice", "pw1"))

	rr := postJSON(t, server, "/login", map[string]string{"username": "alice", "password": "pw1"})

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	_, err := uuid.Parse(resp["token"])
	assert.NoError(t, err, "token should be a random UUID")
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	server := newTestServer(t)
	require.NoError(t, server.Store.Create("alice", "pw1"))

	for _, body := range []map[string]string{
		{"username": "alice", "password": "wrong"},
		{"username": "nobody", "password": "pw1"},
	} {
		rr := postJSON(t, server, "/login", body)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Invalid credentials", resp["error"])
	}
}

func TestChainHandler(t *testing.T) {
	server := newTestServer(t)
	server.Chain.Append("hello", "alice")

	var blocks []*blockchain.Block
	rr := getJSON(t, server, "/chain", &blocks)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, blocks, 2)
	assert.Equal(t, blockchain.GenesisPreviousHash, blocks[0].PreviousHash)
	assert.Equal(t, "alice", blocks[1].Creator())
}

func TestStatusHandler(t *testing.T) {
	server := newTestServer(t)

	var status struct {
		Height   int    `json:"height"`
		LastHash string `json:"lastHash"`
		Valid    bool   `json:"valid"`
		Sessions int    `json:"sessions"`
	}
	rr := getJSON(t, server, "/status", &status)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, status.Height)
	assert.Equal(t, server.Chain.GetLastBlock().Hash, status.LastHash)
	assert.True(t, status.Valid)
	assert.Equal(t, 0, status.Sessions)
}
