package mqtt

import (
	"encoding/json"
	"fmt"
	"log"

	"homepanel/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// CommandPublisher emits set-state commands on devices/<id>/commands.
// Fire-and-forget: the publish token is not awaited beyond enqueueing.
type CommandPublisher struct {
	client mqtt.Client
}

// NewCommandPublisher creates a publisher
func NewCommandPublisher(client mqtt.Client) *CommandPublisher {
	return &CommandPublisher{client: client}
}

// PublishCommand sends one set-state command downstream
func (p *CommandPublisher) PublishCommand(cmd models.SetStateCommand) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encode command for %s: %w", cmd.DeviceID, err)
	}
	topic := fmt.Sprintf("devices/%s/commands", cmd.DeviceID)
	log.Printf("MQTT: Publishing command to %s: %s", topic, payload)
	p.client.Publish(topic, 1, false, payload)
	return nil
}
