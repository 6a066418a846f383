// Package mongodb provides a MongoDB storage backend for GoCamp
package mongodb

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hieudoan/gocamp/model"
	"github.com/hieudoan/gocamp/store"
)

const opTimeout = 5 * time.Second

// MongoDB - Representation of MongoDB database backend
type MongoDB struct {
	client *mongo.Client
	db     *mongo.Database
}

// New returns pointer to MongoDB database
func New(uri, database string) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	ans := MongoDB{
		client: client,
		db:     client.Database(database),
	}
	return &ans, nil
}

// Init creates the unique indexes backing username and email conflicts.
func (o *MongoDB) Init() error {
	ctx, cancel := opContext()
	defer cancel()

	caseInsensitive := options.Index().
		SetUnique(true).
		SetCollation(&options.Collation{Locale: "en", Strength: 2})

	_, err := o.db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: caseInsensitive},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: caseInsensitive},
	})
	return err
}

func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

func (o *MongoDB) findUser(filter interface{}) (model.User, error) {
	ctx, cancel := opContext()
	defer cancel()

	user := model.User{}
	err := o.db.Collection("users").FindOne(ctx, filter).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return user, store.ErrNotFound
	}
	return user, err
}

func (o *MongoDB) GetUserByID(id string) (model.User, error) {
	return o.findUser(bson.M{"_id": id})
}

func (o *MongoDB) GetUserByUsername(username string) (model.User, error) {
	return o.findUser(bson.M{"username": exactInsensitive(username)})
}

func (o *MongoDB) GetUserByEmail(email string) (model.User, error) {
	return o.findUser(bson.M{"email": exactInsensitive(email)})
}

// GetUserByResetToken matches a live token only: the stored token must be
// equal and its expiry still in the future.
func (o *MongoDB) GetUserByResetToken(token string) (model.User, error) {
	if token == "" {
		return model.User{}, store.ErrNotFound
	}
	return o.findUser(bson.M{
		"reset_token":        token,
		"reset_token_expiry": bson.M{"$gt": time.Now().UTC()},
	})
}

// SaveUser upserts a user record, enforcing username and email uniqueness.
func (o *MongoDB) SaveUser(user model.User) error {
	if existing, err := o.GetUserByUsername(user.Username); err == nil && existing.ID != user.ID {
		return store.ErrDuplicateUsername
	} else if err != nil && err != store.ErrNotFound {
		return err
	}
	if existing, err := o.GetUserByEmail(user.Email); err == nil && existing.ID != user.ID {
		return store.ErrDuplicateEmail
	} else if err != nil && err != store.ErrNotFound {
		return err
	}

	ctx, cancel := opContext()
	defer cancel()

	_, err := o.db.Collection("users").ReplaceOne(
		ctx, bson.M{"_id": user.ID}, user, options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// lost a race with a concurrent registration
		return store.ErrDuplicateEmail
	}
	return err
}

func (o *MongoDB) campgrounds(filter interface{}) ([]model.Campground, error) {
	ctx, cancel := opContext()
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := o.db.Collection("campgrounds").Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	campgrounds := []model.Campground{}
	if err := cursor.All(ctx, &campgrounds); err != nil {
		return nil, err
	}
	return campgrounds, nil
}

func (o *MongoDB) GetCampgrounds() ([]model.Campground, error) {
	return o.campgrounds(bson.M{})
}

func (o *MongoDB) SearchCampgrounds(query string) ([]model.Campground, error) {
	return o.campgrounds(bson.M{"name": primitive.Regex{
		Pattern: regexp.QuoteMeta(query),
		Options: "i",
	}})
}

func (o *MongoDB) GetCampgroundByID(id string) (model.Campground, error) {
	ctx, cancel := opContext()
	defer cancel()

	campground := model.Campground{}
	err := o.db.Collection("campgrounds").FindOne(ctx, bson.M{"_id": id}).Decode(&campground)
	if err == mongo.ErrNoDocuments {
		return campground, store.ErrNotFound
	}
	return campground, err
}

func (o *MongoDB) GetCampgroundsByAuthor(userID string) ([]model.Campground, error) {
	return o.campgrounds(bson.M{"author.id": userID})
}

func (o *MongoDB) SaveCampground(campground model.Campground) error {
	ctx, cancel := opContext()
	defer cancel()

	_, err := o.db.Collection("campgrounds").ReplaceOne(
		ctx, bson.M{"_id": campground.ID}, campground, options.Replace().SetUpsert(true))
	return err
}

// DeleteCampground removes a campground together with its comments.
func (o *MongoDB) DeleteCampground(id string) error {
	ctx, cancel := opContext()
	defer cancel()

	if _, err := o.db.Collection("comments").DeleteMany(ctx, bson.M{"campground_id": id}); err != nil {
		return err
	}
	res, err := o.db.Collection("campgrounds").DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (o *MongoDB) GetCommentByID(id string) (model.Comment, error) {
	ctx, cancel := opContext()
	defer cancel()

	comment := model.Comment{}
	err := o.db.Collection("comments").FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err == mongo.ErrNoDocuments {
		return comment, store.ErrNotFound
	}
	return comment, err
}

func (o *MongoDB) SaveComment(comment model.Comment) error {
	ctx, cancel := opContext()
	defer cancel()

	_, err := o.db.Collection("comments").ReplaceOne(
		ctx, bson.M{"_id": comment.ID}, comment, options.Replace().SetUpsert(true))
	return err
}

func (o *MongoDB) DeleteComment(id string) error {
	ctx, cancel := opContext()
	defer cancel()

	res, err := o.db.Collection("comments").DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// exactInsensitive builds an anchored case-insensitive match for a full
// field value.
func exactInsensitive(value string) primitive.Regex {
	return primitive.Regex{
		Pattern: "^" + regexp.QuoteMeta(value) + "$",
		Options: "i",
	}
}
