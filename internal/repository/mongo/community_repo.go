package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"Task_Mania/internal/model"
)

type CommunityRepository struct {
	Coll *mongo.Collection
}

func NewCommunityRepository(db *mongo.Database) *CommunityRepository {
	return &CommunityRepository{Coll: db.Collection(model.CommunityCollection)}
}

func (r *CommunityRepository) FindByID(ctx context.Context, id string) (*model.Community, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var c model.Community
	if err = r.Coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&c); err != nil {
		return nil, translate("find community", err)
	}
	return &c, nil
}

func (r *CommunityRepository) FindAll(ctx context.Context) ([]model.Community, error) {
	return findAll[model.Community](ctx, r.Coll, "list communities", bson.M{})
}

func (r *CommunityRepository) FindByCreatorID(ctx context.Context, creatorID string) ([]model.Community, error) {
	return findAll[model.Community](ctx, r.Coll, "list communities by creator", bson.M{"creatorId": creatorID})
}

// FindByMemberID relies on array containment: {memberIds: uid} matches any
// document whose memberIds holds uid.
func (r *CommunityRepository) FindByMemberID(ctx context.Context, userID string) ([]model.Community, error) {
	return findAll[model.Community](ctx, r.Coll, "list communities by member", bson.M{"memberIds": userID})
}

func (r *CommunityRepository) FindByAdminID(ctx context.Context, userID string) ([]model.Community, error) {
	return findAll[model.Community](ctx, r.Coll, "list communities by admin", bson.M{"adminIds": userID})
}

func (r *CommunityRepository) FindByCategory(ctx context.Context, category string) ([]model.Community, error) {
	return findAll[model.Community](ctx, r.Coll, "list communities by category", bson.M{"category": category})
}

func (r *CommunityRepository) FindPublic(ctx context.Context) ([]model.Community, error) {
	return findAll[model.Community](ctx, r.Coll, "list public communities", bson.M{"isPrivate": false})
}

// Save upserts the whole document, assigning a fresh id when c has none.
func (r *CommunityRepository) Save(ctx context.Context, c *model.Community) (*model.Community, error) {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	// $addToSet refuses to operate on a null field, so never persist nil sets.
	if c.MemberIDs == nil {
		c.MemberIDs = []string{}
	}
	if c.AdminIDs == nil {
		c.AdminIDs = []string{}
	}
	_, err := r.Coll.ReplaceOne(ctx, bson.M{"_id": c.ID}, c, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, model.NewStoreError("save community", err)
	}
	return c, nil
}

// UpdateProfile sets only the editable fields so it never races with
// concurrent membership changes.
func (r *CommunityRepository) UpdateProfile(ctx context.Context, id string, p model.CommunityPatch, now time.Time) (*model.Community, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var c model.Community
	err = r.Coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, profileUpdate(p, now), afterUpdate()).Decode(&c)
	if err != nil {
		return nil, translate("update community", err)
	}
	return &c, nil
}

func (r *CommunityRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.Coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return model.NewStoreError("delete community", err)
	}
	if res.DeletedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *CommunityRepository) AddMember(ctx context.Context, id, userID string, now time.Time) (*model.Community, error) {
	return r.guardedUpdate(ctx, "add member", id, addMemberFilter, addMemberUpdate, userID, now)
}

func (r *CommunityRepository) RemoveMember(ctx context.Context, id, userID string, now time.Time) (*model.Community, error) {
	return r.guardedUpdate(ctx, "remove member", id, removeMemberFilter, removeMemberUpdate, userID, now)
}

func (r *CommunityRepository) AddAdmin(ctx context.Context, id, userID string, now time.Time) (*model.Community, error) {
	return r.guardedUpdate(ctx, "add admin", id, addAdminFilter, addAdminUpdate, userID, now)
}

func (r *CommunityRepository) RemoveAdmin(ctx context.Context, id, userID string, now time.Time) (*model.Community, error) {
	return r.guardedUpdate(ctx, "remove admin", id, removeAdminFilter, removeAdminUpdate, userID, now)
}

type (
	filterFunc func(oid primitive.ObjectID, userID string) bson.M
	updateFunc func(userID string, now time.Time) bson.M
)

// guardedUpdate applies a single-document update whose filter encodes the
// precondition. A non-matching guard yields ErrNoChange, not ErrNotFound:
// the caller re-reads to tell a missing document from a no-op.
func (r *CommunityRepository) guardedUpdate(ctx context.Context, op, id string, filter filterFunc, update updateFunc, userID string, now time.Time) (*model.Community, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var c model.Community
	err = r.Coll.FindOneAndUpdate(ctx, filter(oid, userID), update(userID, now), afterUpdate()).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrNoChange
	}
	if err != nil {
		return nil, model.NewStoreError(op, err)
	}
	return &c, nil
}

func profileUpdate(p model.CommunityPatch, now time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"name":        p.Name,
		"description": p.Description,
		"category":    p.Category,
		"isPrivate":   p.IsPrivate,
		"updatedAt":   now,
	}}
}

func addMemberFilter(oid primitive.ObjectID, userID string) bson.M {
	return bson.M{"_id": oid, "memberIds": bson.M{"$ne": userID}}
}

func addMemberUpdate(userID string, now time.Time) bson.M {
	return bson.M{
		"$addToSet": bson.M{"memberIds": userID},
		"$set":      bson.M{"updatedAt": now},
	}
}

func removeMemberFilter(oid primitive.ObjectID, userID string) bson.M {
	return bson.M{
		"_id":       oid,
		"creatorId": bson.M{"$ne": userID},
		"$or": bson.A{
			bson.M{"memberIds": userID},
			bson.M{"adminIds": userID},
		},
	}
}

// Leaving drops admin rights too.
func removeMemberUpdate(userID string, now time.Time) bson.M {
	return bson.M{
		"$pull": bson.M{"memberIds": userID, "adminIds": userID},
		"$set":  bson.M{"updatedAt": now},
	}
}

func addAdminFilter(oid primitive.ObjectID, userID string) bson.M {
	return bson.M{
		"_id": oid,
		"$and": bson.A{
			bson.M{"memberIds": userID},
			bson.M{"adminIds": bson.M{"$ne": userID}},
		},
	}
}

func addAdminUpdate(userID string, now time.Time) bson.M {
	return bson.M{
		"$addToSet": bson.M{"adminIds": userID},
		"$set":      bson.M{"updatedAt": now},
	}
}

func removeAdminFilter(oid primitive.ObjectID, userID string) bson.M {
	return bson.M{
		"_id":       oid,
		"creatorId": bson.M{"$ne": userID},
		"adminIds":  userID,
	}
}

func removeAdminUpdate(userID string, now time.Time) bson.M {
	return bson.M{
		"$pull": bson.M{"adminIds": userID},
		"$set":  bson.M{"updatedAt": now},
	}
}
