package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"Task_Mania/internal/model"
)

var (
	Client *mongo.Client
	DB     *mongo.Database
)

// Init connects to MongoDB and pings the primary.
func Init(ctx context.Context, uri, database string, timeout time.Duration) error {
	opts := options.Client().
		ApplyURI(uri).
		SetTimeout(timeout).
		SetMaxPoolSize(50)

	c, err := mongo.Connect(ctx, opts)
	if err != nil {
		return err
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err = c.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = c.Disconnect(context.Background())
		return err
	}
	Client = c
	DB = c.Database(database)
	return nil
}

func Close(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	return Client.Disconnect(ctx)
}

// EnsureIndexes creates the secondary indexes backing the repository queries.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		model.CommunityCollection: {
			{Keys: bson.D{{Key: "creatorId", Value: 1}}},
			{Keys: bson.D{{Key: "memberIds", Value: 1}}},
			{Keys: bson.D{{Key: "adminIds", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "isPrivate", Value: 1}}},
		},
		model.PostCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "communityId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "skillCategory", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		model.CommentCollection: {
			{Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
	}
	for coll, idx := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return model.NewStoreError("ensure indexes "+coll, err)
		}
	}
	return nil
}

// objectID parses a hex id. Malformed ids cannot exist in the store, so they
// are reported as not found.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, model.ErrNotFound
	}
	return oid, nil
}

func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.ErrNotFound
	}
	return model.NewStoreError(op, err)
}

func pageOptions(p model.Page, sort bson.D) *options.FindOptions {
	return options.Find().
		SetSort(sort).
		SetSkip(p.Offset()).
		SetLimit(int64(p.Size))
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, op string, filter any, opts ...*options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, model.NewStoreError(op, err)
	}
	list := make([]T, 0)
	if err = cur.All(ctx, &list); err != nil {
		return nil, model.NewStoreError(op, err)
	}
	return list, nil
}

func afterUpdate() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}
