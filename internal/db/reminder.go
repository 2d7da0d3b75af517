package db

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/vehicle-upkeep/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoReminderCollection implements ReminderCollection for MongoDB.
type MongoReminderCollection struct {
	Collection *mongo.Collection
}

// InsertReminder inserts a reminder and returns it with its id set.
func (c *MongoReminderCollection) InsertReminder(ctx context.Context, reminder models.Reminder) (*models.Reminder, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	now := time.Now()
	reminder.CreatedAt = now
	reminder.UpdatedAt = now

	res, err := c.Collection.InsertOne(ctx, reminder)
	if err != nil {
		return nil, wrapStorageErr("insert reminder", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		reminder.ID = oid
	}
	return &reminder, nil
}

// FindReminderByID finds a reminder by its id.
func (c *MongoReminderCollection) FindReminderByID(ctx context.Context, id string) (*models.Reminder, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder ID: %w", ErrNotFound)
	}
	var reminder models.Reminder
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&reminder)
	if err != nil {
		return nil, wrapStorageErr("find reminder", err)
	}
	return &reminder, nil
}

// FindRemindersByVehicle returns all reminders for a vehicle, newest first.
func (c *MongoReminderCollection) FindRemindersByVehicle(ctx context.Context, vehicleID string) ([]models.Reminder, error) {
	return c.findReminders(ctx, bson.M{"vehicle_id": vehicleID})
}

// FindActiveReminders returns a vehicle's active reminders.
func (c *MongoReminderCollection) FindActiveReminders(ctx context.Context, vehicleID string) ([]models.Reminder, error) {
	return c.findReminders(ctx, bson.M{
		"vehicle_id": vehicleID,
		"status":     models.ReminderActive,
	})
}

// FindReminderByBaseEntry finds the reminder generated from a given
// source maintenance record, regardless of its current status.
func (c *MongoReminderCollection) FindReminderByBaseEntry(ctx context.Context, vehicleID, baseEntryID string) (*models.Reminder, error) {
	var reminder models.Reminder
	err := c.Collection.FindOne(ctx, bson.M{
		"vehicle_id":    vehicleID,
		"base_entry_id": baseEntryID,
	}, options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})).Decode(&reminder)
	if err != nil {
		return nil, wrapStorageErr("find reminder by base entry", err)
	}
	return &reminder, nil
}

// UpdateReminderStatusIfActive transitions a reminder out of a live
// state with compare-and-set semantics: when another writer already
// moved the reminder to a terminal state, the update matches nothing
// and ErrConflict is returned. Documents written by older versions may
// carry a persisted "snoozed" status, so both live states are accepted.
func (c *MongoReminderCollection) UpdateReminderStatusIfActive(ctx context.Context, id string, status models.ReminderStatus) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid reminder ID: %w", ErrNotFound)
	}
	res, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": bson.M{
			"$in": []models.ReminderStatus{models.ReminderActive, models.ReminderSnoozed},
		}},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
	)
	if err != nil {
		return wrapStorageErr("update reminder status", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("reminder %s is not in a live state: %w", id, ErrConflict)
	}
	return nil
}

// UpdateReminderFields sets the given fields on a reminder.
func (c *MongoReminderCollection) UpdateReminderFields(ctx context.Context, id string, fields bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid reminder ID: %w", ErrNotFound)
	}
	fields["updated_at"] = time.Now()
	res, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": fields})
	if err != nil {
		return wrapStorageErr("update reminder", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteReminder deletes a reminder by its id.
func (c *MongoReminderCollection) DeleteReminder(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid reminder ID: %w", ErrNotFound)
	}
	res, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return wrapStorageErr("delete reminder", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteRemindersByBaseEntry removes every reminder derived from the
// given source maintenance record.
func (c *MongoReminderCollection) DeleteRemindersByBaseEntry(ctx context.Context, baseEntryID string) (int64, error) {
	res, err := c.Collection.DeleteMany(ctx, bson.M{"base_entry_id": baseEntryID})
	if err != nil {
		return 0, wrapStorageErr("cascade delete reminders", err)
	}
	return res.DeletedCount, nil
}

// FindDueReminders returns active reminders whose due date has passed
// or that track a due distance. Distance-due filtering against each
// vehicle's odometer happens in the manager, which has vehicle state.
func (c *MongoReminderCollection) FindDueReminders(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	return c.findReminders(ctx, bson.M{
		"status": models.ReminderActive,
		"$or": []bson.M{
			{"due_date": bson.M{"$lte": now}},
			{"due_km": bson.M{"$exists": true}},
		},
	})
}

// WatchReminders opens a change-stream subscription on one vehicle's
// reminders. onChange receives the current active set after every
// change (and once up front). The returned function cancels the
// subscription and releases the callback.
func (c *MongoReminderCollection) WatchReminders(ctx context.Context, vehicleID string, onChange func([]models.Reminder)) (func(), error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"fullDocument.vehicle_id": vehicleID}}},
	}
	stream, err := c.Collection.Watch(ctx, pipeline,
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, wrapStorageErr("watch reminders", err)
	}

	watchCtx, cancel := context.WithCancel(ctx)

	emit := func() {
		reminders, err := c.FindActiveReminders(watchCtx, vehicleID)
		if err != nil {
			log.WithFields(log.Fields{"vehicle_id": vehicleID}).
				WithError(err).Warn("reminder watch snapshot failed")
			return
		}
		onChange(reminders)
	}

	go func() {
		defer stream.Close(context.Background())
		emit()
		for stream.Next(watchCtx) {
			emit()
		}
	}()

	return cancel, nil
}

func (c *MongoReminderCollection) findReminders(ctx context.Context, filter bson.M) ([]models.Reminder, error) {
	cursor, err := c.Collection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, wrapStorageErr("find reminders", err)
	}
	var reminders []models.Reminder
	if err := cursor.All(ctx, &reminders); err != nil {
		return nil, wrapStorageErr("decode reminders", err)
	}
	return reminders, nil
}
