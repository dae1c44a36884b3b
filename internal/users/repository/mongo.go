package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teamsteps/teamsteps/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCollection is the collection holding the user document.
const MongoCollection = "userdata"

const mongoDocumentID = "users"

// usersDocument is the single Mongo document that carries the whole collection.
type usersDocument struct {
	ID        string                 `bson:"_id"`
	Users     []models.UserWithToken `bson:"users"`
	UpdatedAt time.Time              `bson:"updatedAt"`
}

// MongoRepo keeps the collection in one document. Each save replaces it.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

func (r *MongoRepo) Name() string { return "mongo" }

func (r *MongoRepo) Load(ctx context.Context) ([]models.UserWithToken, error) {
	var doc usersDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": mongoDocumentID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: mongo %s/%s", ErrNoDocument, r.col.Name(), mongoDocumentID)
		}
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	if doc.Users == nil {
		doc.Users = []models.UserWithToken{}
	}
	return doc.Users, nil
}

func (r *MongoRepo) Save(ctx context.Context, users []models.UserWithToken) error {
	if users == nil {
		users = []models.UserWithToken{}
	}
	doc := usersDocument{ID: mongoDocumentID, Users: users, UpdatedAt: time.Now().UTC()}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.col.ReplaceOne(ctx, bson.M{"_id": mongoDocumentID}, doc, opts); err != nil {
		return fmt.Errorf("mongo replace: %w", err)
	}
	return nil
}
