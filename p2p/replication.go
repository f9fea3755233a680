package p2p

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"blockledger_go/auth"
	"blockledger_go/blockchain"
	"blockledger_go/utils"

	"github.com/gorilla/websocket"
)

// upgrader is used to upgrade HTTP connections to WebSocket connections.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all connections for now
	},
}

/**
 * ReplicationService is the connection-handling core of the node.
 * It accepts WebSocket connections, dispatches inbound frames by type,
 * gates everything behind the AUTH handshake, mutates the shared ledger
 * and fans new blocks out to every registered session.
 *
 * Each connection moves through UNAUTHENTICATED -> AUTHENTICATED -> CLOSED.
 * There is no re-authentication once authenticated, and CLOSED is terminal.
 */
type ReplicationService struct {
	chain    *blockchain.Blockchain
	store    *auth.CredentialStore
	registry *SessionRegistry
	appendMu sync.Mutex // serializes append+broadcast so all sessions see one total order

	httpSrv *http.Server
}

// NewReplicationService wires the service to the shared ledger and
// credential store. Both are process-scoped and injected, never ambient.
func NewReplicationService(chain *blockchain.Blockchain, store *auth.CredentialStore) *ReplicationService {
	return &ReplicationService{
		chain:    chain,
		store:    store,
		registry: NewSessionRegistry(),
	}
}

// Registry exposes the session table, mainly for tests and status reporting
func (rs *ReplicationService) Registry() *SessionRegistry {
	return rs.registry
}

// HandleWS upgrades an HTTP request and runs the connection's read loop
func (rs *ReplicationService) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.LogError("Failed to upgrade connection for %s: %v", r.RemoteAddr, err)
		return
	}

	utils.LogInfo("Connection established with %s", r.RemoteAddr)
	rs.handleConnection(conn, r.RemoteAddr)
}

// Start runs the replication endpoint on its own port, blocking until
// shutdown or listener failure
func (rs *ReplicationService) Start(port int) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", rs.HandleWS)

	addr := fmt.Sprintf(":%d", port)
	rs.httpSrv = &http.Server{Addr: addr, Handler: mux}

	utils.LogInfo("Replication service listening on %s/ws", addr)
	return rs.httpSrv.ListenAndServe()
}

// Shutdown stops accepting new connections. Live connections persist until
// the remote side closes; the protocol has no server-initiated teardown.
func (rs *ReplicationService) Shutdown(ctx context.Context) error {
	if rs.httpSrv == nil {
		return nil
	}
	return rs.httpSrv.Shutdown(ctx)
}

/**
 * handleConnection processes one connection's frames sequentially until the
 * remote side disconnects. Per-frame failures are answered on the wire and
 * never tear down the connection or affect other connections.
 */
func (rs *ReplicationService) handleConnection(conn *websocket.Conn, remoteAddr string) {
	defer conn.Close()

	session := NewSession(conn)
	authenticated := false

	defer func() {
		if authenticated {
			rs.registry.Remove(session)
		}
		utils.LogInfo("Connection closed with %s", remoteAddr)
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				utils.LogError("Error reading message from %s: %v", remoteAddr, err)
			} else {
				utils.LogDebug("Client %s disconnected", remoteAddr)
			}
			return
		}

		msg, err := ParseClientMessage(raw)
		if err != nil {
			utils.LogError("Malformed message from %s: %v", remoteAddr, err)
			MalformedMessages.Inc()
			// Deliberately generic: parse errors must not leak internals
			rs.send(session, &ServerMessage{Type: MsgError, Message: "Internal server error"})
			continue
		}

		utils.LogDebug("Received %s message from %s", msg.Type, remoteAddr)

		switch msg.Type {
		case MsgAuth:
			if authenticated {
				// Re-authentication on a live session is not part of the protocol
				continue
			}
			authenticated = rs.handleAuth(session, msg)
		case MsgNewBlock:
			if !authenticated {
				continue // silently ignored while unauthenticated
			}
			rs.handleNewBlock(session, msg)
		case MsgGetBlockchain:
			if !authenticated {
				continue // silently ignored while unauthenticated
			}
			rs.send(session, &ServerMessage{Type: MsgBlockchain, Blockchain: rs.chain.GetBlocks()})
		}
	}
}

/**
 * handleAuth resolves an AUTH frame against the credential store.
 * On success the session is registered for broadcast and answered with the
 * full ledger snapshot; on failure the connection stays open so the client
 * can retry.
 */
func (rs *ReplicationService) handleAuth(session *Session, msg *ClientMessage) bool {
	if msg.IsRegister {
		if err := rs.store.Create(msg.Username, msg.Password); err != nil {
			AuthAttempts.WithLabelValues("register", "failure").Inc()
			rs.send(session, &ServerMessage{Type: MsgAuthError, Message: "Username already exists"})
			return false
		}

		session.Identity = msg.Username
		rs.registry.Register(session)
		AuthAttempts.WithLabelValues("register", "success").Inc()
		utils.LogInfo("User registered: %s", msg.Username)

		rs.send(session, &ServerMessage{
			Type:       MsgAuthSuccess,
			Blockchain: rs.chain.GetBlocks(),
			Message:    "Registration successful",
		})
		return true
	}

	if !rs.store.Verify(msg.Username, msg.Password) {
		AuthAttempts.WithLabelValues("login", "failure").Inc()
		rs.send(session, &ServerMessage{Type: MsgAuthError, Message: "Invalid credentials"})
		return false
	}

	session.Identity = msg.Username
	rs.registry.Register(session)
	AuthAttempts.WithLabelValues("login", "success").Inc()
	utils.LogInfo("User logged in: %s", msg.Username)

	rs.send(session, &ServerMessage{Type: MsgAuthSuccess, Blockchain: rs.chain.GetBlocks()})
	return true
}

/**
 * handleNewBlock appends a block built from the client payload and the
 * session's identity, then broadcasts it to every registered session,
 * the sender included. The append and the fan-out run under one mutex so
 * every session observes blocks in the order the ledger committed them.
 */
func (rs *ReplicationService) handleNewBlock(session *Session, msg *ClientMessage) {
	rs.appendMu.Lock()
	defer rs.appendMu.Unlock()

	newBlock := rs.chain.Append(msg.Block.Data, session.Identity)
	BlocksAppended.Inc()
	utils.LogInfo("Block %d appended by %s", newBlock.Index, session.Identity)

	rs.registry.Broadcast(&ServerMessage{Type: MsgNewBlock, Block: newBlock}, true, session.Identity)
}

// send writes one frame, logging failures; the read loop owns cleanup
func (rs *ReplicationService) send(session *Session, msg *ServerMessage) {
	if err := session.Send(msg); err != nil {
		utils.LogError("Error writing %s message: %v", msg.Type, err)
	}
}
