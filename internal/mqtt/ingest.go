package mqtt

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"homepanel/internal/db"
	"homepanel/internal/engine"
	"homepanel/internal/models"
	rstore "homepanel/internal/redis"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// stateTopic is the wildcard the ingestor listens on
const stateTopic = "devices/+/state"

// Broadcaster pushes device-state updates to connected UI clients
type Broadcaster interface {
	BroadcastDeviceState(deviceID string, state models.DeviceState)
}

// Ingestor consumes device-state notifications from the bus, records them
// in the state store and database, pushes them to the UI, and hands each
// sample to the automation runner.
type Ingestor struct {
	client      mqtt.Client
	states      *rstore.StateStore
	db          *db.DB
	runner      *engine.Runner
	broadcaster Broadcaster
	ctx         context.Context
}

// NewIngestor creates an ingestor. The broadcaster may be nil.
func NewIngestor(client mqtt.Client, states *rstore.StateStore, dbConn *db.DB, runner *engine.Runner, broadcaster Broadcaster) *Ingestor {
	return &Ingestor{
		client:      client,
		states:      states,
		db:          dbConn,
		runner:      runner,
		broadcaster: broadcaster,
	}
}

// Start subscribes to the state topic. The context bounds all handler work.
func (in *Ingestor) Start(ctx context.Context) error {
	in.ctx = ctx
	log.Printf("MQTT: Subscribing to %s", stateTopic)
	token := in.client.Subscribe(stateTopic, 1, in.onStateMessage)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// Stop unsubscribes from the state topic
func (in *Ingestor) Stop() {
	in.client.Unsubscribe(stateTopic)
}

// statePayload is the wire shape of a device-state notification
type statePayload struct {
	Value          *float64 `json:"value"`
	Unit           *string  `json:"unit"`
	Malfunctioning *bool    `json:"malfunctioning"`
}

func (in *Ingestor) onStateMessage(_ mqtt.Client, msg mqtt.Message) {
	deviceID := ParseDeviceID(msg.Topic())
	if deviceID == "" {
		log.Printf("MQTT: Ignoring state message on unexpected topic %s", msg.Topic())
		return
	}

	var payload statePayload
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		log.Printf("MQTT: Malformed state payload from %s: %v", deviceID, err)
		return
	}

	ctx := in.ctx
	if ctx.Err() != nil {
		return
	}

	state := models.DeviceState{
		Value:          payload.Value,
		Unit:           payload.Unit,
		Malfunctioning: payload.Malfunctioning,
		UpdatedAt:      time.Now().UTC(),
	}
	if err := in.states.SetDeviceState(ctx, deviceID, state); err != nil {
		log.Printf("MQTT: Failed to cache state for %s: %v", deviceID, err)
	}
	go func() {
		if err := in.db.UpdateDeviceState(context.WithoutCancel(ctx), deviceID, msg.Payload()); err != nil {
			log.Printf("MQTT: Failed to persist state for %s: %v", deviceID, err)
		}
	}()
	if in.broadcaster != nil {
		in.broadcaster.BroadcastDeviceState(deviceID, state)
	}

	sample := models.StateSample{
		DeviceID:       deviceID,
		Value:          payload.Value,
		Unit:           payload.Unit,
		Malfunctioning: payload.Malfunctioning,
	}
	if err := in.runner.HandleDeviceUpdated(ctx, sample); err != nil && ctx.Err() == nil {
		log.Printf("MQTT: Rule scan for %s failed: %v", deviceID, err)
	}
}
