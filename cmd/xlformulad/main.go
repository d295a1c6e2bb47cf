// Command xlformulad serves a small live formula board over a WebSocket:
// clients push cell edits, the server recalculates through
// internal/host's dependency-aware Sheet, and broadcasts every affected
// cell's new display value back to every connected client.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"xlformula/internal/host"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// updateRequest is what a client sends to edit one cell.
type updateRequest struct {
	Type    string `json:"type"`
	Address string `json:"address"`
	Formula string `json:"formula"`
}

// cellUpdate is what the server broadcasts for one recalculated cell.
type cellUpdate struct {
	Type    string `json:"type"`
	Address string `json:"address"`
	Formula string `json:"formula"`
	Display string `json:"display"`
	Error   string `json:"error,omitempty"`
}

type board struct {
	sheet   *host.Sheet
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func newBoard() *board {
	return &board{
		sheet:   host.New(),
		clients: make(map[*websocket.Conn]bool),
	}
}

func (b *board) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade error:", err)
		return
	}

	b.mu.Lock()
	b.clients[conn] = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.clients, conn)
		b.mu.Unlock()
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var req updateRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			log.Println("bad request:", err)
			continue
		}
		if req.Type != "set_cell" {
			continue
		}
		b.applyEdit(req.Address, req.Formula)
	}
}

func (b *board) applyEdit(address, text string) {
	addr, ok := host.ParseCellAddress(address)
	if !ok {
		log.Printf("bad cell address: %q", address)
		return
	}
	updates, err := b.sheet.SetFormulaAll(addr, text)
	if err != nil {
		b.broadcast(cellUpdate{Type: "cell_updated", Address: address, Formula: text, Error: err.Error()})
		return
	}
	for _, u := range updates {
		resp := cellUpdate{Type: "cell_updated", Address: u.Address.String(), Display: host.Render(u.Value)}
		if u.Address == addr {
			resp.Formula = text
		}
		if u.Value.IsError() {
			resp.Error = u.Value.Err.Code()
		}
		b.broadcast(resp)
	}
}

// broadcast sends resp to every connected client, dropping any that
// error — the same write-and-prune pattern the teacher's server uses.
func (b *board) broadcast(resp cellUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		if err := c.WriteJSON(resp); err != nil {
			log.Printf("broadcast write failed: %v", err)
			_ = c.Close()
			delete(b.clients, c)
		}
	}
}

func main() {
	addr := flag.String("addr", ":8089", "listen address")
	flag.Parse()

	b := newBoard()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", b.handleWebSocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	log.Printf("xlformulad listening on %s", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		log.Fatal(err)
	}
}
