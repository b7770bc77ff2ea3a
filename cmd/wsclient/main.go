package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

type event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// wsclient connects to the event stream as a debug-mode Telegram user and prints every
// event it receives.
func main() {
	addr := flag.String("url", "ws://localhost:8888/api/v1/ws", "event stream url")
	userID := flag.Int64("user", 5060715466, "telegram user id sent in the init data")
	initData := flag.String("init-data", "", "raw init data, overrides -user")
	flag.Parse()

	data := *initData
	if data == "" {
		values := url.Values{}
		values.Set("auth_date", "1677649900")
		values.Set("user", fmt.Sprintf(`{"id":%d,"first_name":"Eco","username":"eco_tester"}`, *userID))
		data = values.Encode()
	}

	header := http.Header{}
	header.Add("Authorization", "Telegram "+data)

	conn, _, err := websocket.DefaultDialer.Dial(*addr, header)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, p, err := conn.ReadMessage()
			if err != nil {
				log.Println("read error:", err)
				return
			}

			var e event
			if err := json.Unmarshal(p, &e); err != nil {
				log.Printf("Received non-event message:\n%s\n", p)
				continue
			}

			pretty, _ := json.MarshalIndent(e, "", "  ")
			log.Printf("Received %s:\n%s\n", e.Type, pretty)
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	select {
	case <-done:
	case <-interrupt:
		err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		if err != nil {
			log.Println("close error:", err)
		}
	}
}
