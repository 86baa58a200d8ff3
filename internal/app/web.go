package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/config"
	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/journal"
)

// RunWeb serves the latest mirrored fix over HTTP and pushes live
// updates to WebSocket clients. It feeds off the MQTT mirror, so it can
// run anywhere with broker access, not just on the boat.
func RunWeb() error {
	cfg := config.Get()

	var (
		mu       sync.RWMutex
		lastRec  journal.Record
		haveRec  bool
		wsMu     sync.Mutex
		wsConns  = make(map[*websocket.Conn]bool)
		upgrader = websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		}
	)

	// 1) Connect to the MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to the fix topic; update state and fan out to clients
	token := client.Subscribe(cfg.TopicFix, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var rec journal.Record
		if err := json.Unmarshal(msg.Payload(), &rec); err != nil {
			log.Printf("web: fix unmarshal error: %v", err)
			return
		}

		mu.Lock()
		lastRec = rec
		haveRec = true
		mu.Unlock()

		wsMu.Lock()
		for conn := range wsConns {
			if err := conn.WriteJSON(rec); err != nil {
				log.Printf("web: websocket write error: %v", err)
				conn.Close()
				delete(wsConns, conn)
			}
		}
		wsMu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicFix)

	// 3) JSON API endpoint: latest fix
	http.HandleFunc("/api/fix", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		defer mu.RUnlock()

		if !haveRec {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(lastRec); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	// 4) WebSocket endpoint: live fix stream
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade error: %v", err)
			return
		}
		wsMu.Lock()
		wsConns[conn] = true
		wsMu.Unlock()
	})

	// 5) Static files from ./web as the root
	http.Handle("/", http.FileServer(http.Dir("web")))

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
