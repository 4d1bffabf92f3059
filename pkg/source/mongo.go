package source

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dnamaps/arlequin/pkg/corr"
	"github.com/dnamaps/arlequin/pkg/errors"
	"github.com/dnamaps/arlequin/pkg/table"
)

// MongoSource reads precomputed statistics from a MongoDB database. Keyed
// tables are stored one document per oligomer:
//
//	{key: "AGGT", raw: 1.02, diff: -0.4}
//
// and flat correlation matrices one document per row key:
//
//	{key: "AGGT", shift: 0.12, slide: -0.3, ...}
type MongoSource struct {
	client *mongo.Client
	db     string
}

// NewMongoSource connects to MongoDB and verifies the connection.
func NewMongoSource(ctx context.Context, uri, db string) (*MongoSource, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connect to %s", uri)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "ping %s", uri)
	}
	return &MongoSource{client: client, db: db}, nil
}

// LoadTable reads a keyed table from a collection, keeping only the named
// value columns. Documents missing a column load the missing sentinel for it.
func (s *MongoSource) LoadTable(ctx context.Context, collection string, columns []string) (*table.Table, error) {
	if len(columns) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no value columns requested")
	}

	docs, err := s.find(ctx, collection)
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(docs))
	cols := make([]table.Column, len(columns))
	for c, name := range columns {
		cols[c] = table.Column{Name: name, Values: make([]float64, len(docs))}
	}
	for i, doc := range docs {
		key, err := docKey(doc, collection, i)
		if err != nil {
			return nil, err
		}
		keys[i] = key
		for c, name := range columns {
			cols[c].Values[i] = docValue(doc, name)
		}
	}
	return table.New(keys, cols...)
}

// LoadFlat reads a flat correlation matrix from a collection.
func (s *MongoSource) LoadFlat(ctx context.Context, collection string, columns []string) (*corr.Flat, error) {
	if len(columns) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no matrix columns requested")
	}

	docs, err := s.find(ctx, collection)
	if err != nil {
		return nil, err
	}

	index := make([]string, len(docs))
	values := make([][]float64, len(docs))
	for i, doc := range docs {
		key, err := docKey(doc, collection, i)
		if err != nil {
			return nil, err
		}
		index[i] = key
		row := make([]float64, len(columns))
		for c, name := range columns {
			row[c] = docValue(doc, name)
		}
		values[i] = row
	}
	return corr.NewFlat(index, columns, values)
}

// Close disconnects from MongoDB.
func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// find returns all documents of a collection sorted by key, so loads are
// deterministic regardless of insertion order.
func (s *MongoSource) find(ctx context.Context, collection string) ([]bson.M, error) {
	coll := s.client.Database(s.db).Collection(collection)
	cursor, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "key", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "query %s", collection)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode %s", collection)
	}
	if len(docs) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "collection %s is empty", collection)
	}
	return docs, nil
}

func docKey(doc bson.M, collection string, i int) (string, error) {
	key, ok := doc["key"].(string)
	if !ok || key == "" {
		return "", errors.New(errors.ErrCodeInvalidFormat,
			"document %d in %s has no string key field", i, collection)
	}
	return key, nil
}

// docValue coerces the numeric BSON types a statistics field may carry.
// Absent or non-numeric fields load as missing.
func docValue(doc bson.M, field string) float64 {
	switch v := doc[field].(type) {
	case float64:
		return v
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return table.Missing()
	}
}
