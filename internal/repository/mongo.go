package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/enroll/enroll/internal/model"
)

const (
	// DefaultMongoDatabase is used when neither the URI nor config names one.
	DefaultMongoDatabase = "awad"

	usersCollection = "users"
	emailIndexName  = "email_unique"
)

// userDocument is the BSON layout of a user.
// Field names match documents written by earlier deployments.
type userDocument struct {
	ID           bson.ObjectID `bson:"_id"`
	Email        string        `bson:"email"`
	PasswordHash string        `bson:"password"`
	CreatedAt    time.Time     `bson:"createdAt"`
}

func (d *userDocument) toModel() *model.User {
	return &model.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

// MongoStore keeps users in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	users  *mongo.Collection
}

// NewMongo connects to MongoDB and verifies the connection.
// An empty database falls back to the URI path, then DefaultMongoDatabase.
func NewMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(10).
		SetMinPoolSize(2)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	if database == "" {
		database = DatabaseFromURI(uri)
	}

	return &MongoStore{
		client: client,
		users:  client.Database(database).Collection(usersCollection),
	}, nil
}

// DatabaseFromURI extracts the database name from a mongodb:// URI path.
func DatabaseFromURI(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil {
		return DefaultMongoDatabase
	}

	name := strings.Trim(parsed.Path, "/")
	if name == "" {
		return DefaultMongoDatabase
	}
	return name
}

// Name returns the backend name.
func (s *MongoStore) Name() string {
	return DriverMongo
}

// EnsureIndexes creates the unique email index. It is idempotent.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(emailIndexName),
	})
	if err != nil {
		return fmt.Errorf("failed to create email index: %w", err)
	}
	return nil
}

// Insert adds a user document.
func (s *MongoStore) Insert(ctx context.Context, email, passwordHash string) (*model.User, error) {
	doc := userDocument{
		ID:           bson.NewObjectID(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    creationTime(),
	}

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return doc.toModel(), nil
}

// InsertIfAbsent upserts with $setOnInsert so existing documents never change.
func (s *MongoStore) InsertIfAbsent(ctx context.Context, email, passwordHash string) (bool, error) {
	filter := bson.D{{Key: "email", Value: email}}
	update := bson.D{{Key: "$setOnInsert", Value: bson.D{
		{Key: "email", Value: email},
		{Key: "password", Value: passwordHash},
		{Key: "createdAt", Value: creationTime()},
	}}}

	res, err := s.users.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		// Two upserts racing on the unique index: the other one won.
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to upsert user: %w", err)
	}

	return res.UpsertedCount > 0, nil
}

// FindByEmail retrieves a user by normalized email.
func (s *MongoStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return doc.toModel(), nil
}

// Ping checks MongoDB connectivity.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
