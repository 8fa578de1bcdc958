package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wuwenbin0122/applytrackr/internal/models"
)

// MongoApplications stores applications as documents. Every filter it builds
// starts from the owner id.
type MongoApplications struct {
	coll *mongo.Collection
}

func NewMongoApplications(store *Mongo) *MongoApplications {
	return &MongoApplications{coll: store.Applications}
}

func ownerFilter(ownerID string) bson.M {
	return bson.M{"user": ownerID}
}

func ownedFilter(ownerID, id string) bson.M {
	filter := ownerFilter(ownerID)
	filter["_id"] = id
	return filter
}

func (r *MongoApplications) Create(ctx context.Context, ownerID string, app *models.Application) error {
	prepareApplication(ownerID, app, time.Now().UTC())

	if _, err := r.coll.InsertOne(ctx, app); err != nil {
		return fmt.Errorf("mongo insert application: %w", err)
	}
	return nil
}

func (r *MongoApplications) Get(ctx context.Context, ownerID, id string) (*models.Application, error) {
	var app models.Application
	if err := r.coll.FindOne(ctx, ownedFilter(ownerID, id)).Decode(&app); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo query application: %w", err)
	}
	return &app, nil
}

func (r *MongoApplications) List(ctx context.Context, ownerID string, opts models.ListOptions) ([]models.Application, error) {
	filter := ownerFilter(ownerID)
	if opts.Status != "" {
		filter["status"] = opts.Status
	}

	direction := -1
	if opts.Ascending {
		direction = 1
	}
	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = models.SortCreatedAt
	}

	findOpts := options.Find().SetSort(bson.D{
		{Key: sortBy, Value: direction},
		{Key: "_id", Value: direction},
	})

	cursor, err := r.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo find applications: %w", err)
	}
	defer cursor.Close(ctx)

	apps := make([]models.Application, 0)
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, fmt.Errorf("mongo decode applications: %w", err)
	}
	return apps, nil
}

func (r *MongoApplications) Update(ctx context.Context, ownerID, id string, patch models.ApplicationPatch) (*models.Application, error) {
	set := patchToBSON(patch)
	set["updatedAt"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	update := bson.M{"$set": set}
	if patch.ClearDeadline {
		update["$unset"] = bson.M{"deadline": ""}
	}

	var app models.Application
	err := r.coll.FindOneAndUpdate(ctx, ownedFilter(ownerID, id), update, opts).Decode(&app)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo update application: %w", err)
	}
	return &app, nil
}

func (r *MongoApplications) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, ownedFilter(ownerID, id))
	if err != nil {
		return false, fmt.Errorf("mongo delete application: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func patchToBSON(patch models.ApplicationPatch) bson.M {
	set := bson.M{}
	if patch.Company != nil {
		set["company"] = *patch.Company
	}
	if patch.Position != nil {
		set["position"] = *patch.Position
	}
	if patch.JobLink != nil {
		set["jobLink"] = *patch.JobLink
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.AppliedDate != nil {
		set["appliedDate"] = *patch.AppliedDate
	}
	if patch.Deadline != nil && !patch.ClearDeadline {
		set["deadline"] = *patch.Deadline
	}
	if patch.Notes != nil {
		set["notes"] = *patch.Notes
	}
	return set
}

// prepareApplication binds the record to its owner and fills what the store
// assigns on insert. The owner argument always wins over app.OwnerID.
func prepareApplication(ownerID string, app *models.Application, now time.Time) {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	app.OwnerID = ownerID
	if app.Status == "" {
		app.Status = models.StatusApplied
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	if app.UpdatedAt.IsZero() {
		app.UpdatedAt = app.CreatedAt
	}
	if app.AppliedDate.IsZero() {
		app.AppliedDate = app.CreatedAt
	}
}
