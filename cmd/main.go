package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/vehicle-upkeep/internal/catalog"
	"github.com/ukydev/vehicle-upkeep/internal/db"
	"github.com/ukydev/vehicle-upkeep/internal/events"
	"github.com/ukydev/vehicle-upkeep/internal/handlers"
	"github.com/ukydev/vehicle-upkeep/internal/reminders"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using process environment")
	}
	log.SetFormatter(&log.JSONFormatter{})

	client, err := db.ConnectMongo()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())
	log.Info("Connected to MongoDB")

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "upkeep"
	}
	database := client.Database(dbName)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		cancel()
		log.Fatalf("Failed to create indexes: %v", err)
	}
	cancel()

	reminderColl := &db.MongoReminderCollection{Collection: database.Collection("reminders")}
	maintenanceColl := &db.MongoMaintenanceCollection{Collection: database.Collection("maintenance")}
	vehicleColl := &db.MongoVehicleCollection{Collection: database.Collection("vehicles")}

	cat := catalog.Default()
	manager := reminders.NewManager(reminderColl, maintenanceColl, vehicleColl, cat)

	// Maintenance events arrive over MQTT from the recording subsystem.
	// Without a broker the engine still serves its read API.
	if broker := os.Getenv("MQTT_BROKER"); broker != "" {
		consumer, err := events.NewConsumer(broker, "vehicle-upkeep-engine", manager)
		if err != nil {
			log.Fatalf("Failed to connect to MQTT broker: %v", err)
		}
		defer consumer.Close()
		if err := consumer.Start(); err != nil {
			log.Fatalf("Failed to subscribe to maintenance events: %v", err)
		}
	} else {
		log.Warn("MQTT_BROKER not set, maintenance event consumer disabled")
	}

	reminderHandler := handlers.NewReminderHandler(manager)
	suggestionHandler := handlers.NewSuggestionHandler(cat, vehicleColl, maintenanceColl)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/vehicles/{id}/suggestions", suggestionHandler.List)
	mux.HandleFunc("GET /api/vehicles/{id}/suggestions/{item}", suggestionHandler.Get)
	mux.HandleFunc("GET /api/vehicles/{id}/reminders", reminderHandler.ListByVehicle)
	mux.HandleFunc("POST /api/reminders", reminderHandler.Create)
	mux.HandleFunc("POST /api/reminders/{id}/done", reminderHandler.MarkDone)
	mux.HandleFunc("POST /api/reminders/{id}/snooze", reminderHandler.Snooze)
	mux.HandleFunc("POST /api/reminders/{id}/dismiss", reminderHandler.Dismiss)
	mux.HandleFunc("DELETE /api/reminders/{id}", reminderHandler.Delete)
	mux.HandleFunc("GET /api/reminders/due", reminderHandler.Due)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.WithFields(log.Fields{"port": port}).Info("HTTP server listening")
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%s", port), mux))
}
