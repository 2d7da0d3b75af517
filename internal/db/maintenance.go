package db

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/ukydev/vehicle-upkeep/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMaintenanceCollection implements MaintenanceCollection for MongoDB.
type MongoMaintenanceCollection struct {
	Collection *mongo.Collection
}

// UpsertMaintenance writes a maintenance record keyed by the recording
// subsystem's record id, so replayed events do not duplicate history.
func (c *MongoMaintenanceCollection) UpsertMaintenance(ctx context.Context, record models.MaintenanceRecord) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	now := time.Now()
	_, err := c.Collection.UpdateOne(ctx,
		bson.M{"record_id": record.RecordID},
		bson.M{
			"$set": bson.M{
				"vehicle_id":  record.VehicleID,
				"title":       record.Title,
				"date":        record.Date,
				"odometer_km": record.OdometerKm,
				"notes":       record.Notes,
				"updated_at":  now,
			},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return wrapStorageErr("upsert maintenance record", err)
	}
	return nil
}

// FindMaintenanceByVehicle returns a vehicle's maintenance history,
// newest first.
func (c *MongoMaintenanceCollection) FindMaintenanceByVehicle(ctx context.Context, vehicleID string) ([]models.MaintenanceRecord, error) {
	cursor, err := c.Collection.Find(ctx,
		bson.M{"vehicle_id": vehicleID},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, wrapStorageErr("find maintenance records", err)
	}
	var records []models.MaintenanceRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, wrapStorageErr("decode maintenance records", err)
	}
	return records, nil
}

// FindLatestMatching returns the most recent record on a vehicle whose
// title contains any of the keywords, case-insensitive, or ErrNotFound.
func (c *MongoMaintenanceCollection) FindLatestMatching(ctx context.Context, vehicleID string, keywords []string) (*models.MaintenanceRecord, error) {
	if len(keywords) == 0 {
		return nil, fmt.Errorf("find latest matching: no keywords: %w", ErrNotFound)
	}
	var or []bson.M
	for _, kw := range keywords {
		or = append(or, bson.M{"title": primitive.Regex{
			Pattern: regexp.QuoteMeta(kw),
			Options: "i",
		}})
	}
	var record models.MaintenanceRecord
	err := c.Collection.FindOne(ctx,
		bson.M{"vehicle_id": vehicleID, "$or": or},
		options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}}),
	).Decode(&record)
	if err != nil {
		return nil, wrapStorageErr("find latest matching maintenance", err)
	}
	return &record, nil
}

// DeleteMaintenanceByRecordID removes the mirror of a deleted record.
func (c *MongoMaintenanceCollection) DeleteMaintenanceByRecordID(ctx context.Context, recordID string) error {
	_, err := c.Collection.DeleteMany(ctx, bson.M{"record_id": recordID})
	if err != nil {
		return wrapStorageErr("delete maintenance record", err)
	}
	return nil
}

var (
	_ MaintenanceCollection = (*MongoMaintenanceCollection)(nil)
	_ ReminderCollection    = (*MongoReminderCollection)(nil)
)
