package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dolittle/data-pipeline/pkg/pipeline"
)

const collectionName = "processed_data"

type Config struct {
	URI      string
	Database string
}

// MongoRepo holds the process-wide store connection. The connection is
// established lazily on first use behind a single mutex-guarded acquisition
// path and cached for the process lifetime; the first caller pays the
// connection cost, everyone else reuses it.
type MongoRepo struct {
	config     Config
	logContext logrus.FieldLogger

	mu     sync.Mutex
	client *mongo.Client
}

func NewMongoRepo(config Config, logContext logrus.FieldLogger) *MongoRepo {
	return &MongoRepo{
		config:     config,
		logContext: logContext,
	}
}

// collection acquires the cached connection, establishing it on first use.
// The ping runs once per established connection, not per call.
func (r *MongoRepo) collection(ctx context.Context) (*mongo.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client == nil {
		opts := options.Client()
		opts.ApplyURI(r.config.URI)
		opts.SetServerSelectionTimeout(5 * time.Second)

		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		if err := client.Ping(ctx, nil); err != nil {
			client.Disconnect(ctx)
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		r.logContext.WithFields(logrus.Fields{
			"database": r.config.Database,
		}).Info("Connected to MongoDB")
		r.client = client
	}

	return r.client.Database(r.config.Database).Collection(collectionName), nil
}

func (r *MongoRepo) Insert(ctx context.Context, record pipeline.ProcessedRecord) (string, error) {
	collection, err := r.collection(ctx)
	if err != nil {
		return "", err
	}

	result, err := collection.InsertOne(ctx, record)
	if err != nil {
		return "", fmt.Errorf("inserting record: %w", err)
	}

	objectID, _ := result.InsertedID.(primitive.ObjectID)
	return objectID.Hex(), nil
}

// Find returns documents in natural store order, which is insertion order on
// a best-effort basis only.
func (r *MongoRepo) Find(ctx context.Context, skip int64, limit int64) ([]Document, error) {
	collection, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	findOptions := options.Find()
	findOptions.SetSkip(skip)
	findOptions.SetLimit(limit)

	cursor, err := collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("scanning records: %w", err)
	}
	defer cursor.Close(ctx)

	documents := []Document{}
	for cursor.Next(ctx) {
		var internal document
		if err := cursor.Decode(&internal); err != nil {
			return nil, fmt.Errorf("decoding record: %w", err)
		}
		documents = append(documents, internal.toDocument())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("scanning records: %w", err)
	}

	return documents, nil
}

func (r *MongoRepo) Count(ctx context.Context) (int64, error) {
	collection, err := r.collection(ctx)
	if err != nil {
		return 0, err
	}

	count, err := collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return count, nil
}

func (r *MongoRepo) GetByID(ctx context.Context, id string) (Document, error) {
	// Malformed ids are a client error regardless of store state, so they
	// are rejected before touching the connection.
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	collection, err := r.collection(ctx)
	if err != nil {
		return Document{}, err
	}

	var internal document
	err = collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&internal)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("getting record: %w", err)
	}

	return internal.toDocument(), nil
}

// Ready reports whether a live store connection exists or can be established
// right now.
func (r *MongoRepo) Ready(ctx context.Context) bool {
	_, err := r.collection(ctx)
	return err == nil
}

type document struct {
	ID          primitive.ObjectID    `bson:"_id"`
	Original    pipeline.DecodedEvent `bson:"original"`
	ProcessedAt float64               `bson:"processed_at"`
	Status      string                `bson:"status"`
}

func (d document) toDocument() Document {
	return Document{
		ID:          d.ID.Hex(),
		Original:    d.Original,
		ProcessedAt: d.ProcessedAt,
		Status:      d.Status,
	}
}
