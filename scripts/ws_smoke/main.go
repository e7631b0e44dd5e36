// Manual smoke test: registers two users against a running server, connects
// both over websocket, joins a room, and exchanges a message, a typing
// signal, and a read receipt.
//
// Usage: go run ./scripts/ws_smoke -base http://localhost:8080
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/sochat/sochat-server/internal/proto"
)

func main() {
	base := flag.String("base", "http://localhost:8080", "server base URL")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	suffix := fmt.Sprintf("%d", time.Now().Unix()%100000)
	tokenA := register(ctx, *base, "smoke_a_"+suffix)
	tokenB := register(ctx, *base, "smoke_b_"+suffix)

	wsURL := strings.Replace(*base, "http", "ws", 1) + "/ws?token="

	connA := dial(ctx, wsURL+tokenA)
	defer connA.Close(websocket.StatusNormalClosure, "done")
	connB := dial(ctx, wsURL+tokenB)
	defer connB.Close(websocket.StatusNormalClosure, "done")

	send(ctx, connA, proto.InboundTypeJoinRoom, proto.RoomData{Room: "smoke"})
	send(ctx, connB, proto.InboundTypeJoinRoom, proto.RoomData{Room: "smoke"})
	time.Sleep(200 * time.Millisecond)

	send(ctx, connA, proto.InboundTypeTyping, proto.RoomData{Room: "smoke"})
	send(ctx, connA, proto.InboundTypeMessage, proto.MessageData{Content: "hello from A", Room: "smoke"})

	for i := 0; i < 2; i++ {
		var out proto.Outbound
		if err := wsjson.Read(ctx, connB, &out); err != nil {
			log.Fatalf("read B: %v", err)
		}
		raw, _ := json.Marshal(out)
		log.Printf("B <- %s", raw)
	}

	send(ctx, connB, proto.InboundTypeRead, proto.ReadData{MsgID: 1})
	var receipt proto.Outbound
	if err := wsjson.Read(ctx, connB, &receipt); err != nil {
		log.Fatalf("read receipt: %v", err)
	}
	log.Printf("B <- receipt %v", receipt.Event)

	log.Println("smoke test ok")
}

func register(ctx context.Context, base, username string) string {
	body, _ := json.Marshal(map[string]string{"username": username, "password": "password123"})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("register %s: %v", username, err)
	}
	defer resp.Body.Close()

	var auth struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil || auth.Token == "" {
		log.Fatalf("register %s: status %d, decode err %v", username, resp.StatusCode, err)
	}
	return auth.Token
}

func dial(ctx context.Context, url string) *websocket.Conn {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", url, err)
	}
	return conn
}

func send(ctx context.Context, conn *websocket.Conn, kind string, data any) {
	raw, _ := json.Marshal(data)
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: kind, Data: raw}); err != nil {
		log.Fatalf("send %s: %v", kind, err)
	}
}
