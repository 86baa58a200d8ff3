// Package telemetry mirrors accepted fixes to an MQTT broker so
// shoreside tools can follow the boat when it is in WiFi range. The
// mirror is best-effort and entirely optional; the broadcast link is the
// primary channel.
package telemetry

import (
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/gps"
	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/journal"
)

// Publisher publishes one journal-format record per accepted fix.
type Publisher struct {
	client mqtt.Client
	topic  string
}

// NewPublisher connects to the broker. Connection failure is an error;
// the caller decides whether the mirror is worth halting over (it is
// not, for the boat).
func NewPublisher(broker, clientID, topic string) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("telemetry: connect %s: %w", broker, token.Error())
	}
	log.Printf("telemetry: connected to MQTT broker at %s", broker)

	return &Publisher{client: client, topic: topic}, nil
}

// Disabled returns a publisher that drops everything.
func Disabled() *Publisher {
	return &Publisher{}
}

// PublishFix mirrors one fix with its broadcast sequence number.
func (p *Publisher) PublishFix(fix gps.Fix, seq uint32) error {
	if p.client == nil {
		return nil
	}

	payload, err := json.Marshal(journal.NewRecord(fix, seq))
	if err != nil {
		return fmt.Errorf("telemetry: marshal fix: %w", err)
	}

	token := p.client.Publish(p.topic, 0, true, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("telemetry: publish: %w", token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.client != nil {
		p.client.Disconnect(250)
	}
}
