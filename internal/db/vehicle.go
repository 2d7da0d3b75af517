package db

import (
	"context"
	"fmt"

	"github.com/ukydev/vehicle-upkeep/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoVehicleCollection implements VehicleCollection for MongoDB.
type MongoVehicleCollection struct {
	Collection *mongo.Collection
}

// InsertVehicle inserts a vehicle record and returns it with its id set.
func (c *MongoVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) (*models.Vehicle, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	res, err := c.Collection.InsertOne(ctx, vehicle)
	if err != nil {
		return nil, wrapStorageErr("insert vehicle", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		vehicle.ID = oid
	}
	return &vehicle, nil
}

// FindVehicleByID finds a vehicle by its ID.
func (c *MongoVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle ID: %w", ErrNotFound)
	}
	var vehicle models.Vehicle
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&vehicle)
	if err != nil {
		return nil, wrapStorageErr("find vehicle", err)
	}
	return &vehicle, nil
}

var _ VehicleCollection = (*MongoVehicleCollection)(nil)
