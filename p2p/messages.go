package p2p

import (
	"encoding/json"
	"errors"
	"fmt"

	"blockledger_go/blockchain"
)

// Message types sent by clients over the replication channel
const (
	MsgAuth          = "AUTH"
	MsgNewBlock      = "NEW_BLOCK"
	MsgGetBlockchain = "GET_BLOCKCHAIN"
)

// Message types sent by the server over the replication channel
const (
	MsgAuthSuccess = "AUTH_SUCCESS"
	MsgAuthError   = "AUTH_ERROR"
	MsgBlockchain  = "BLOCKCHAIN"
	MsgError       = "ERROR"
)

// ClientMessage is the JSON envelope for every client-to-server frame.
// The Type discriminator decides which of the other fields are meaningful.
type ClientMessage struct {
	Type       string        `json:"type"`
	Username   string        `json:"username,omitempty"`
	Password   string        `json:"password,omitempty"`
	IsRegister bool          `json:"isRegister,omitempty"`
	Block      *BlockRequest `json:"block,omitempty"`
}

// BlockRequest is the client-supplied portion of a NEW_BLOCK message.
// Only the payload is taken from the client; index, hashes and timestamp
// are assigned by the server.
type BlockRequest struct {
	Data interface{} `json:"data"`
}

// ServerMessage is the JSON envelope for every server-to-client frame
type ServerMessage struct {
	Type       string              `json:"type"`
	Message    string              `json:"message,omitempty"`
	Block      *blockchain.Block   `json:"block,omitempty"`
	Blockchain []*blockchain.Block `json:"blockchain,omitempty"`
}

// ParseClientMessage decodes and validates one inbound frame.
// Validation happens here, at the boundary, so handlers can dispatch on
// Type without re-checking shape.
func ParseClientMessage(raw []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, err
	}

	switch msg.Type {
	case MsgAuth:
		if msg.Username == "" || msg.Password == "" {
			return nil, errors.New("AUTH message missing username or password")
		}
	case MsgNewBlock:
		if msg.Block == nil {
			return nil, errors.New("NEW_BLOCK message missing block")
		}
	case MsgGetBlockchain:
		// No payload
	default:
		return nil, fmt.Errorf("unknown message type %q", msg.Type)
	}

	return &msg, nil
}
