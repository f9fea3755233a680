package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"

	"blockledger_go/blockchain"
	"blockledger_go/p2p"

	"github.com/gorilla/websocket"
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
)

// clientConfig holds the connection targets of the node
type clientConfig struct {
	Host    string
	APIPort int
	WSPort  int
}

func main() {
	config := &clientConfig{}
	flag.StringVar(&config.Host, "host", "localhost", "Host of the ledger node")
	flag.IntVar(&config.APIPort, "port", 3001, "HTTP API port of the node")
	flag.IntVar(&config.WSPort, "wsport", 6001, "WebSocket replication port of the node")
	flag.Parse()

	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Block", pterm.FgCyan.ToStyle()),
		putils.LettersFromStringWithStyle("Ledger", pterm.FgDarkGray.ToStyle()),
	).Render()

	action, _ := pterm.DefaultInteractiveSelect.
		WithOptions([]string{"Login", "Register", "Exit"}).
		Show("What would you like to do?")
	if action == "Exit" {
		return
	}

	username, _ := pterm.DefaultInteractiveTextInput.Show("Username")
	password, _ := pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password")
	isRegister := action == "Register"

	if err := restAuth(config, username, password, isRegister); err != nil {
		pterm.Error.Printfln("%v", err)
		os.Exit(1)
	}

	conn, chain, err := connect(config, username, password, isRegister)
	if err != nil {
		pterm.Error.Printfln("%v", err)
		os.Exit(1)
	}
	defer conn.Close()

	pterm.Success.Printfln("Authenticated as %s, ledger height %d", username, len(chain))
	printChain(chain)

	// All further server frames arrive here: block broadcasts and snapshot
	// responses interleave with the menu loop below.
	done := make(chan struct{})
	go readLoop(conn, done)

	for {
		choice, _ := pterm.DefaultInteractiveSelect.
			WithOptions([]string{"Add data", "View chain", "Exit"}).
			Show("Menu")

		switch choice {
		case "Add data":
			data, _ := pterm.DefaultInteractiveTextInput.Show("Data to record")
			msg := p2p.ClientMessage{Type: p2p.MsgNewBlock, Block: &p2p.BlockRequest{Data: data}}
			if err := conn.WriteJSON(msg); err != nil {
				pterm.Error.Printfln("Failed to send block: %v", err)
				return
			}
		case "View chain":
			if err := conn.WriteJSON(p2p.ClientMessage{Type: p2p.MsgGetBlockchain}); err != nil {
				pterm.Error.Printfln("Failed to request chain: %v", err)
				return
			}
		case "Exit":
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			<-done
			return
		}
	}
}

// restAuth exercises the request/response gate before the socket handshake.
// The issued login token is informational only; the replication channel
// authenticates separately.
func restAuth(config *clientConfig, username, password string, isRegister bool) error {
	endpoint := "login"
	if isRegister {
		endpoint = "register"
	}
	url := fmt.Sprintf("http://%s:%d/%s", config.Host, config.APIPort, endpoint)

	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("could not reach node at %s: %w", url, err)
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("unexpected response from node: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if msg, ok := result["error"].(string); ok {
			return fmt.Errorf("%s failed: %s", endpoint, msg)
		}
		return fmt.Errorf("%s failed with status %d", endpoint, resp.StatusCode)
	}

	if token, ok := result["token"].(string); ok {
		pterm.Info.Printfln("Login token: %s", token)
	}
	return nil
}

// connect dials the replication channel and performs the AUTH handshake,
// returning the live connection and the ledger snapshot from AUTH_SUCCESS
func connect(config *clientConfig, username, password string, isRegister bool) (*websocket.Conn, []*blockchain.Block, error) {
	url := fmt.Sprintf("ws://%s:%d/ws", config.Host, config.WSPort)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open replication channel at %s: %w", url, err)
	}

	authMsg := p2p.ClientMessage{
		Type:       p2p.MsgAuth,
		Username:   username,
		Password:   password,
		IsRegister: isRegister,
	}
	if err := conn.WriteJSON(authMsg); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to send AUTH: %w", err)
	}

	var reply p2p.ServerMessage
	if err := conn.ReadJSON(&reply); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to read AUTH reply: %w", err)
	}

	if reply.Type != p2p.MsgAuthSuccess {
		conn.Close()
		return nil, nil, fmt.Errorf("authentication rejected: %s", reply.Message)
	}

	return conn, reply.Blockchain, nil
}

// readLoop prints every frame pushed by the server until the channel closes
func readLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	for {
		var frame p2p.ServerMessage
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}

		switch frame.Type {
		case p2p.MsgNewBlock:
			if frame.Block != nil {
				pterm.Info.Printfln("New block %d by %s: %v", frame.Block.Index, frame.Block.Creator(), frame.Block.Payload())
			}
		case p2p.MsgBlockchain:
			printChain(frame.Blockchain)
		case p2p.MsgError:
			pterm.Warning.Printfln("Server error: %s", frame.Message)
		}
	}
}

// printChain renders a ledger snapshot as a table
func printChain(chain []*blockchain.Block) {
	rows := pterm.TableData{{"Index", "Creator", "Data", "Hash"}}
	for _, block := range chain {
		rows = append(rows, []string{
			fmt.Sprintf("%d", block.Index),
			block.Creator(),
			fmt.Sprintf("%v", block.Payload()),
			shortHash(block.Hash),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12] + "..."
	}
	return hash
}
