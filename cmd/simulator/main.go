// The simulator stands in for the maintenance-recording subsystem: it
// seeds a vehicle, then publishes plausible maintenance saved/deleted
// events over MQTT so the engine's reminder lifecycle can be exercised
// end to end without a real recorder.
package main

import (
	"context"
	"encoding/json"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/vehicle-upkeep/internal/db"
	"github.com/ukydev/vehicle-upkeep/internal/events"
	"github.com/ukydev/vehicle-upkeep/internal/models"
)

// serviceTitles are free-text titles the way owners actually type them,
// so keyword matching gets realistic input.
var serviceTitles = []string{
	"Oil and filter change",
	"Tire rotation and balance",
	"Front brake pads replaced",
	"Battery check",
	"Coolant flush",
	"Cabin air filter",
	"Annual inspection",
	"Spark plug replacement",
	"Wiper blades",
	"Fixed rattling noise", // matches nothing on purpose
}

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

func seedVehicle(coll *db.MongoVehicleCollection) (*models.Vehicle, error) {
	makes := []string{"Toyota", "Honda", "Ford", "BMW", "Skoda"}
	vmodels := []string{"Corolla", "Civic", "Focus", "320i", "Octavia"}

	odometer := float64(20000 + rand.Intn(120000))
	avg := float64(600 + rand.Intn(1500))
	year := 2015 + rand.Intn(9)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return coll.InsertVehicle(ctx, models.Vehicle{
		Make:              makes[rand.Intn(len(makes))],
		Model:             vmodels[rand.Intn(len(vmodels))],
		Year:              year,
		RegistrationYear:  year,
		RegistrationMonth: 1 + rand.Intn(12),
		OdometerKm:        &odometer,
		AvgKmPerMonth:     &avg,
		Status:            "active",
		CreatedAt:         time.Now(),
	})
}

func publish(client mqtt.Client, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	token := client.Publish(topic, 1, false, data)
	token.Wait()
	return token.Error()
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using process environment")
	}

	broker := os.Getenv("MQTT_BROKER")
	if broker == "" {
		broker = "tcp://mosquitto:1883"
	}
	intervalSec := 10
	if raw := os.Getenv("SIM_INTERVAL_SECONDS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			intervalSec = n
		}
	}

	mongoClient, err := db.ConnectMongo()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "upkeep"
	}
	vehicleColl := &db.MongoVehicleCollection{Collection: mongoClient.Database(dbName).Collection("vehicles")}

	vehicle, err := seedVehicle(vehicleColl)
	if err != nil {
		log.Fatalf("Failed to seed vehicle: %v", err)
	}
	log.WithFields(log.Fields{
		"vehicle_id": vehicle.ID.Hex(),
		"make":       vehicle.Make,
		"model":      vehicle.Model,
	}).Info("Seeded vehicle")

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("upkeep-simulator-" + uuid.NewString()[:8]).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("Failed to connect to MQTT broker: %v", token.Error())
	}
	defer client.Disconnect(250)

	odometer := *vehicle.OdometerKm
	date := time.Now().AddDate(-2, 0, 0)
	var published []string

	for {
		// Walk the history forward toward today.
		date = date.AddDate(0, 0, 30+rand.Intn(90))
		if date.After(time.Now()) {
			date = time.Now()
		}
		odometer += float64(500 + rand.Intn(4000))

		odo := odometer
		ev := savedEvent{
			VehicleID:  vehicle.ID.Hex(),
			Title:      serviceTitles[rand.Intn(len(serviceTitles))],
			Date:       date.Format(time.RFC3339),
			OdometerKm: &odo,
			RecordID:   uuid.NewString(),
			Notes:      "simulated",
		}
		if err := publish(client, events.TopicMaintenanceSaved, ev); err != nil {
			log.WithError(err).Error("publishing saved event failed")
		} else {
			published = append(published, ev.RecordID)
			log.WithFields(log.Fields{
				"record_id": ev.RecordID,
				"title":     ev.Title,
				"odometer":  odometer,
			}).Info("Published maintenance saved event")
		}

		// Occasionally retract an old record to exercise the cascade.
		if len(published) > 3 && rand.Intn(5) == 0 {
			idx := rand.Intn(len(published))
			del := deletedEvent{RecordID: published[idx]}
			published = append(published[:idx], published[idx+1:]...)
			if err := publish(client, events.TopicMaintenanceDeleted, del); err != nil {
				log.WithError(err).Error("publishing deleted event failed")
			} else {
				log.WithFields(log.Fields{"record_id": del.RecordID}).
					Info("Published maintenance deleted event")
			}
		}

		time.Sleep(time.Duration(intervalSec) * time.Second)
	}
}
