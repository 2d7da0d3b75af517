// Package events receives the maintenance-recording subsystem's push
// events over MQTT and drives the reminder lifecycle from them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/vehicle-upkeep/internal/models"
)

const (
	TopicMaintenanceSaved   = "upkeep/maintenance/saved"
	TopicMaintenanceDeleted = "upkeep/maintenance/deleted"

	handleTimeout = 10 * time.Second
)

// MaintenanceSink is the slice of the lifecycle manager the consumer
// drives.
type MaintenanceSink interface {
	RecordMaintenance(ctx context.Context, vehicleID, title string, date time.Time, odometerKm *float64, recordID, notes string) (*models.Reminder, error)
	DeleteByMaintenanceRecord(ctx context.Context, recordID string) (int64, error)
}

// savedEvent is the wire payload for a saved maintenance record. Dates
// travel as RFC 3339 strings and are normalized to time.Time here; the
// core never sees another time shape.
type savedEvent struct {
	VehicleID  string   `json:"vehicle_id"`
	Title      string   `json:"title"`
	Date       string   `json:"date"`
	OdometerKm *float64 `json:"odometer_km,omitempty"`
	RecordID   string   `json:"record_id"`
	Notes      string   `json:"notes,omitempty"`
}

type deletedEvent struct {
	RecordID string `json:"record_id"`
}

// Consumer subscribes to the maintenance topics and feeds the sink.
type Consumer struct {
	client mqtt.Client
	sink   MaintenanceSink
}

// NewConsumer connects to the broker. clientID must be unique per
// process when multiple engine instances share a broker.
func NewConsumer(brokerURL, clientID string, sink MaintenanceSink) (*Consumer, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &Consumer{client: client, sink: sink}, nil
}

// Start subscribes to the maintenance topics. Malformed payloads are
// logged and dropped; the recording subsystem stays the source of truth.
func (c *Consumer) Start() error {
	if token := c.client.Subscribe(TopicMaintenanceSaved, 1, c.onSaved); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", TopicMaintenanceSaved, token.Error())
	}
	if token := c.client.Subscribe(TopicMaintenanceDeleted, 1, c.onDeleted); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", TopicMaintenanceDeleted, token.Error())
	}
	log.WithFields(log.Fields{
		"topics": []string{TopicMaintenanceSaved, TopicMaintenanceDeleted},
	}).Info("maintenance event consumer started")
	return nil
}

// Close unsubscribes and disconnects.
func (c *Consumer) Close() {
	c.client.Unsubscribe(TopicMaintenanceSaved, TopicMaintenanceDeleted)
	c.client.Disconnect(250)
}

func (c *Consumer) onSaved(_ mqtt.Client, msg mqtt.Message) {
	var ev savedEvent
	if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
		log.WithError(err).Warn("dropping malformed maintenance saved event")
		return
	}
	if err := c.handleSaved(ev); err != nil {
		log.WithFields(log.Fields{"record_id": ev.RecordID}).
			WithError(err).Error("handling maintenance saved event failed")
	}
}

func (c *Consumer) onDeleted(_ mqtt.Client, msg mqtt.Message) {
	var ev deletedEvent
	if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
		log.WithError(err).Warn("dropping malformed maintenance deleted event")
		return
	}
	if err := c.handleDeleted(ev); err != nil {
		log.WithFields(log.Fields{"record_id": ev.RecordID}).
			WithError(err).Error("handling maintenance deleted event failed")
	}
}

// handleSaved validates a saved event and records it through the sink.
func (c *Consumer) handleSaved(ev savedEvent) error {
	if ev.VehicleID == "" || ev.RecordID == "" {
		return fmt.Errorf("saved event missing vehicle_id or record_id")
	}
	date, err := time.Parse(time.RFC3339, ev.Date)
	if err != nil {
		return fmt.Errorf("saved event date %q: %w", ev.Date, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()
	_, err = c.sink.RecordMaintenance(ctx, ev.VehicleID, ev.Title, date, ev.OdometerKm, ev.RecordID, ev.Notes)
	return err
}

// handleDeleted cascades a deleted event through the sink.
func (c *Consumer) handleDeleted(ev deletedEvent) error {
	if ev.RecordID == "" {
		return fmt.Errorf("deleted event missing record_id")
	}
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()
	_, err := c.sink.DeleteByMaintenanceRecord(ctx, ev.RecordID)
	return err
}
