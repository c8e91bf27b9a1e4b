package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/task-service/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	usersCollection = "users"
	tasksCollection = "tasks"
)

type userDocument struct {
	ID           bson.ObjectID `bson:"_id"`
	Username     string        `bson:"username"`
	PasswordHash string        `bson:"passwordHash"`
}

type taskDocument struct {
	ID          bson.ObjectID `bson:"_id"`
	Title       string        `bson:"title"`
	Description *string       `bson:"description,omitempty"`
	UserID      string        `bson:"userId"`
}

func (d taskDocument) toModel() *models.Task {
	return &models.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		UserID:      d.UserID,
	}
}

// ConnectMongo opens a client and verifies it with a ping.
func ConnectMongo(ctx context.Context, uri string, connectTimeout time.Duration) (*mongo.Client, error) {
	client, err := mongo.Connect(
		options.Client().
			ApplyURI(uri).
			SetConnectTimeout(connectTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

// MongoRepository stores users and tasks as documents
type MongoRepository struct {
	client *mongo.Client
	users  *mongo.Collection
	tasks  *mongo.Collection
}

// NewMongoRepository initializes a repository over the named database
func NewMongoRepository(client *mongo.Client, database string) *MongoRepository {
	db := client.Database(database)
	return &MongoRepository{
		client: client,
		users:  db.Collection(usersCollection),
		tasks:  db.Collection(tasksCollection),
	}
}

func (r *MongoRepository) CreateUser(ctx context.Context, user *models.User) error {
	doc := userDocument{
		ID:           bson.NewObjectID(),
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
	}
	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = doc.ID.Hex()
	return nil
}

func (r *MongoRepository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var doc userDocument
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})
	err := r.users.FindOne(ctx, bson.D{{Key: "username", Value: username}}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &models.User{
		ID:           doc.ID.Hex(),
		Username:     doc.Username,
		PasswordHash: doc.PasswordHash,
	}, nil
}

func (r *MongoRepository) CreateTask(ctx context.Context, task *models.Task) error {
	doc := taskDocument{
		ID:          bson.NewObjectID(),
		Title:       task.Title,
		Description: task.Description,
		UserID:      task.UserID,
	}
	if _, err := r.tasks.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	task.ID = doc.ID.Hex()
	return nil
}

func (r *MongoRepository) FindTaskByID(ctx context.Context, id string) (*models.Task, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc taskDocument
	err = r.tasks.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) UpdateTask(ctx context.Context, id string, update models.TaskUpdate) (bool, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	if update.Empty() {
		return false, nil
	}

	set := taskUpdateDocument(update)
	res, err := r.tasks.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return false, fmt.Errorf("failed to update task: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *MongoRepository) DeleteTask(ctx context.Context, id string) (bool, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	res, err := r.tasks.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// taskUpdateDocument builds the $set body; omitted fields are left out.
func taskUpdateDocument(update models.TaskUpdate) bson.D {
	set := bson.D{}
	if update.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *update.Title})
	}
	if update.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *update.Description})
	}
	return set
}
