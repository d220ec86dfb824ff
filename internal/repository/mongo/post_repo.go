package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"Task_Mania/internal/model"
)

type PostRepository struct {
	Coll *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{Coll: db.Collection(model.PostCollection)}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func (r *PostRepository) Create(ctx context.Context, p *model.Post) (*model.Post, error) {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.LikedBy == nil {
		p.LikedBy = []string{}
	}
	if p.MediaURLs == nil {
		p.MediaURLs = []string{}
	}
	if _, err := r.Coll.InsertOne(ctx, p); err != nil {
		return nil, model.NewStoreError("create post", err)
	}
	return p, nil
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var p model.Post
	if err = r.Coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		return nil, translate("find post", err)
	}
	return &p, nil
}

func (r *PostRepository) FindByUserID(ctx context.Context, userID string, page model.Page) ([]model.Post, error) {
	return findAll[model.Post](ctx, r.Coll, "list posts by user", bson.M{"userId": userID}, pageOptions(page, newestFirst))
}

// FindByUserIDs backs the following feed.
func (r *PostRepository) FindByUserIDs(ctx context.Context, userIDs []string, page model.Page) ([]model.Post, error) {
	if len(userIDs) == 0 {
		return []model.Post{}, nil
	}
	filter := bson.M{"userId": bson.M{"$in": userIDs}}
	return findAll[model.Post](ctx, r.Coll, "list feed", filter, pageOptions(page, newestFirst))
}

func (r *PostRepository) FindBySkillCategory(ctx context.Context, category string, page model.Page) ([]model.Post, error) {
	return findAll[model.Post](ctx, r.Coll, "list posts by category", bson.M{"skillCategory": category}, pageOptions(page, newestFirst))
}

func (r *PostRepository) FindByCommunityID(ctx context.Context, communityID string, page model.Page) ([]model.Post, error) {
	return findAll[model.Post](ctx, r.Coll, "list posts by community", bson.M{"communityId": communityID}, pageOptions(page, newestFirst))
}

func (r *PostRepository) UpdateContent(ctx context.Context, p *model.Post) (*model.Post, error) {
	update := bson.M{"$set": bson.M{
		"title":         p.Title,
		"description":   p.Description,
		"mediaUrls":     p.MediaURLs,
		"mediaType":     p.MediaType,
		"skillCategory": p.SkillCategory,
		"updatedAt":     p.UpdatedAt,
	}}
	var out model.Post
	err := r.Coll.FindOneAndUpdate(ctx, bson.M{"_id": p.ID}, update, afterUpdate()).Decode(&out)
	if err != nil {
		return nil, translate("update post", err)
	}
	return &out, nil
}

func (r *PostRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.Coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return model.NewStoreError("delete post", err)
	}
	if res.DeletedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

// AddLike reports whether userID was newly added to likedBy.
func (r *PostRepository) AddLike(ctx context.Context, id, userID string) (bool, error) {
	return r.mutateLikes(ctx, "like post", id,
		bson.M{"likedBy": bson.M{"$ne": userID}},
		bson.M{"$addToSet": bson.M{"likedBy": userID}})
}

// RemoveLike reports whether userID was present and removed.
func (r *PostRepository) RemoveLike(ctx context.Context, id, userID string) (bool, error) {
	return r.mutateLikes(ctx, "unlike post", id,
		bson.M{"likedBy": userID},
		bson.M{"$pull": bson.M{"likedBy": userID}})
}

func (r *PostRepository) mutateLikes(ctx context.Context, op, id string, guard, update bson.M) (bool, error) {
	oid, err := objectID(id)
	if err != nil {
		return false, err
	}
	guard["_id"] = oid
	res, err := r.Coll.UpdateOne(ctx, guard, update)
	if err != nil {
		return false, model.NewStoreError(op, err)
	}
	if res.ModifiedCount > 0 {
		return true, nil
	}
	// Guard miss: either the post is gone or the like state already holds.
	n, err := r.Coll.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, model.NewStoreError(op, err)
	}
	if n == 0 {
		return false, model.ErrNotFound
	}
	return false, nil
}

func (r *PostRepository) IsLiked(ctx context.Context, id, userID string) (bool, error) {
	oid, err := objectID(id)
	if err != nil {
		return false, err
	}
	n, err := r.Coll.CountDocuments(ctx, bson.M{"_id": oid, "likedBy": userID})
	if err != nil {
		return false, model.NewStoreError("is liked", err)
	}
	return n > 0, nil
}

// CountLikes computes the size of likedBy server side.
func (r *PostRepository) CountLikes(ctx context.Context, id string) (int64, error) {
	oid, err := objectID(id)
	if err != nil {
		return 0, err
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": oid}}},
		{{Key: "$project", Value: bson.M{"count": bson.M{"$size": bson.M{"$ifNull": bson.A{"$likedBy", bson.A{}}}}}}},
	}
	cur, err := r.Coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, model.NewStoreError("count likes", err)
	}
	defer cur.Close(ctx)
	if !cur.Next(ctx) {
		if err = cur.Err(); err != nil {
			return 0, model.NewStoreError("count likes", err)
		}
		return 0, model.ErrNotFound
	}
	var row struct {
		Count int64 `bson:"count"`
	}
	if err = cur.Decode(&row); err != nil {
		return 0, model.NewStoreError("count likes", err)
	}
	return row.Count, nil
}
