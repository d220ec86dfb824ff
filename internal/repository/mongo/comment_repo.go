package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"Task_Mania/internal/model"
)

type CommentRepository struct {
	Coll *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{Coll: db.Collection(model.CommentCollection)}
}

func (r *CommentRepository) Create(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if _, err := r.Coll.InsertOne(ctx, c); err != nil {
		return nil, model.NewStoreError("create comment", err)
	}
	return c, nil
}

func (r *CommentRepository) FindByID(ctx context.Context, id string) (*model.Comment, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var c model.Comment
	if err = r.Coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&c); err != nil {
		return nil, translate("find comment", err)
	}
	return &c, nil
}

// FindByPostID lists oldest first.
func (r *CommentRepository) FindByPostID(ctx context.Context, postID string, page model.Page) ([]model.Comment, error) {
	opts := pageOptions(page, bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	return findAll[model.Comment](ctx, r.Coll, "list comments", bson.M{"postId": postID}, opts)
}

func (r *CommentRepository) CountByPostID(ctx context.Context, postID string) (int64, error) {
	n, err := r.Coll.CountDocuments(ctx, bson.M{"postId": postID})
	if err != nil {
		return 0, model.NewStoreError("count comments", err)
	}
	return n, nil
}

func (r *CommentRepository) UpdateContent(ctx context.Context, id, content string, now time.Time) (*model.Comment, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var c model.Comment
	update := bson.M{"$set": bson.M{"content": content, "updatedAt": now}}
	err = r.Coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, afterUpdate()).Decode(&c)
	if err != nil {
		return nil, translate("update comment", err)
	}
	return &c, nil
}

func (r *CommentRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.Coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return model.NewStoreError("delete comment", err)
	}
	if res.DeletedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

// DeleteByPostID removes every comment of a deleted post.
func (r *CommentRepository) DeleteByPostID(ctx context.Context, postID string) (int64, error) {
	res, err := r.Coll.DeleteMany(ctx, bson.M{"postId": postID})
	if err != nil {
		return 0, model.NewStoreError("delete comments", err)
	}
	return res.DeletedCount, nil
}
