package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/jonathan/skillbuddy/internal/store"
)

// MongoDB stores each record kind in its own collection with _id set to the record id.
// Records pass through their JSON encoding so field names match the other backends.
type MongoDB struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Backend = (*MongoDB)(nil)

// ConnectMongo connects to MongoDB and verifies the connection
func ConnectMongo(ctx context.Context, uri, database string) (*MongoDB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &MongoDB{client: client, db: client.Database(database)}, nil
}

// Close disconnects the client
func (m *MongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Name implements store.Backend
func (m *MongoDB) Name() string { return "mongo" }

// indexedKinds are the collections queried by user_id.
var indexedKinds = []store.Kind{store.KindSessions, store.KindFeedback}

// Migrate creates the user_id and updated_at indexes used by List. It is idempotent.
func (m *MongoDB) Migrate(ctx context.Context) error {
	for _, kind := range indexedKinds {
		_, err := m.collection(kind).Indexes().CreateMany(ctx, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: store.UpdatedAtField, Value: -1}}},
			{Keys: bson.D{{Key: store.UpdatedAtField, Value: -1}}},
		})
		if err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", kind, err)
		}
	}
	return nil
}

func (m *MongoDB) collection(kind store.Kind) *mongo.Collection {
	return m.db.Collection(string(kind))
}

// toDocument converts any JSON-encodable value into a BSON document. updated_at is
// stored as a BSON date so that sorting on it is chronological.
func toDocument(v any) (bson.M, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, err
	}
	if s, ok := doc[store.UpdatedAtField].(string); ok {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", store.UpdatedAtField, err)
		}
		doc[store.UpdatedAtField] = t
	}
	return doc, nil
}

// fromDocument renders a BSON document as plain JSON without the _id field.
func fromDocument(raw bson.Raw) (json.RawMessage, error) {
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	delete(doc, "_id")
	if dt, ok := doc[store.UpdatedAtField].(primitive.DateTime); ok {
		doc[store.UpdatedAtField] = dt.Time().UTC().Format(time.RFC3339Nano)
	}
	data, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// Get implements store.Backend
func (m *MongoDB) Get(ctx context.Context, kind store.Kind, id string, dst any) (bool, error) {
	raw, err := m.collection(kind).FindOne(ctx, bson.M{"_id": id}).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s/%s: %w", kind, id, err)
	}
	data, err := fromDocument(raw)
	if err != nil {
		return false, fmt.Errorf("failed to decode %s/%s: %w", kind, id, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("failed to decode %s/%s: %w", kind, id, err)
	}
	return true, nil
}

// Put implements store.Backend with an upserting replace
func (m *MongoDB) Put(ctx context.Context, kind store.Kind, id string, record any) error {
	doc, err := toDocument(record)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", kind, id, err)
	}
	doc["_id"] = id

	_, err = m.collection(kind).ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to put %s/%s: %w", kind, id, err)
	}
	return nil
}

// Update implements store.Backend with $set. Returns store.ErrNotFound when nothing matched.
func (m *MongoDB) Update(ctx context.Context, kind store.Kind, id string, fields store.Fields) error {
	set, err := toDocument(fields)
	if err != nil {
		return fmt.Errorf("failed to encode update for %s/%s: %w", kind, id, err)
	}

	result, err := m.collection(kind).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", kind, id, err)
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// List implements store.Backend. Filters match string fields only.
func (m *MongoDB) List(ctx context.Context, kind store.Kind, filter store.Filter, limit int) ([]json.RawMessage, error) {
	query := bson.M{}
	if !filter.IsZero() {
		if err := checkField(filter.Field); err != nil {
			return nil, err
		}
		query[filter.Field] = filter.Value
	}

	opts := options.Find().SetSort(bson.D{{Key: store.UpdatedAtField, Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := m.collection(kind).Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	defer cursor.Close(ctx)

	var docs []json.RawMessage
	for cursor.Next(ctx) {
		data, err := fromDocument(cursor.Current)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", kind, err)
		}
		docs = append(docs, data)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	return docs, nil
}
