package store

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	Name = "bookswap_db"

	// A conflicting Increment re-reads and retries up to this many times
	// before giving up.
	maxIncrementAttempts = 25
)

// MongoBackend maps the tree onto MongoDB: the first path segment is the
// collection, the second the document _id, and the rest a dotted field.
type MongoBackend struct {
	*mongo.Database
}

// ConnectMongo connects and creates the indexes the trigger core queries
// against.
func ConnectMongo(ctx context.Context, dbURI string) (*mongo.Client, error) {
	c, err := mongo.Connect(ctx, options.Client().ApplyURI(dbURI))
	if err != nil {
		return nil, err
	}

	_, err = c.Database(Name).Collection("conversations").Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys: bson.D{{Key: "bookId", Value: 1}},
		},
	)
	if err != nil {
		return nil, err
	}

	_, err = c.Database(Name).Collection("users").Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "credentials.email", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	)
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (b MongoBackend) Read(ctx context.Context, p Path) (Value, error) {
	if len(p) < 2 {
		return Value{}, errors.Errorf("path too short to read: %s", p)
	}
	var doc bson.M
	err := b.Collection(p[0]).FindOne(ctx, bson.M{"_id": p[1]}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Value{}, nil
		}
		return Value{}, errors.Wrapf(err, "error reading path: %s", p)
	}
	delete(doc, "_id")
	node, ok := fromBSON(doc).(map[string]any)
	if !ok {
		return Value{}, nil
	}
	if len(p) == 2 {
		if len(node) == 0 {
			return Value{}, nil
		}
		return NewValue(node), nil
	}
	return NewValue(lookup(node, p[2:])), nil
}

func (b MongoBackend) Write(ctx context.Context, p Path, v any) error {
	if len(p) < 2 {
		return errors.Errorf("path too short to write: %s", p)
	}
	norm, err := normalize(v)
	if err != nil {
		return err
	}
	if norm == nil {
		return b.Remove(ctx, p)
	}

	if len(p) == 2 {
		doc, ok := norm.(map[string]any)
		if !ok {
			return errors.Errorf("value at document path must be an object, path: %s, value: %+v", p, v)
		}
		_, err = b.Collection(p[0]).ReplaceOne(
			ctx,
			bson.M{"_id": p[1]},
			doc,
			options.Replace().SetUpsert(true),
		)
		return errors.Wrapf(err, "error writing document at path: %s", p)
	}

	_, err = b.Collection(p[0]).UpdateOne(
		ctx,
		bson.M{"_id": p[1]},
		bson.M{"$set": bson.M{dotted(p): norm}},
		options.Update().SetUpsert(true),
	)
	return errors.Wrapf(err, "error writing field at path: %s", p)
}

func (b MongoBackend) Remove(ctx context.Context, p Path) error {
	if len(p) < 2 {
		return errors.Errorf("path too short to remove: %s", p)
	}
	if len(p) == 2 {
		_, err := b.Collection(p[0]).DeleteOne(ctx, bson.M{"_id": p[1]})
		return errors.Wrapf(err, "error removing document at path: %s", p)
	}
	_, err := b.Collection(p[0]).UpdateOne(
		ctx,
		bson.M{"_id": p[1]},
		bson.M{"$unset": bson.M{dotted(p): ""}},
	)
	return errors.Wrapf(err, "error removing field at path: %s", p)
}

// Increment is a compare-and-retry loop: read the current value, compute the
// next one, and update filtered on the value read, retrying whenever a
// concurrent writer got there first.
func (b MongoBackend) Increment(ctx context.Context, p Path, t Transform) (Value, error) {
	if len(p) < 3 {
		return Value{}, errors.Errorf("path too short to increment: %s", p)
	}
	field := dotted(p)
	for attempt := 0; attempt < maxIncrementAttempts; attempt++ {
		cur, err := b.Read(ctx, p)
		if err != nil {
			return Value{}, err
		}
		norm, err := normalize(t(cur))
		if err != nil {
			return Value{}, err
		}

		filter := bson.M{"_id": p[1]}
		if cur.Exists() {
			filter[field] = cur.Raw()
		} else {
			filter[field] = bson.M{"$exists": false}
		}
		res, err := b.Collection(p[0]).UpdateOne(
			ctx,
			filter,
			bson.M{"$set": bson.M{field: norm}},
			options.Update().SetUpsert(!cur.Exists()),
		)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				// Lost the race to a concurrent upsert.
				continue
			}
			return Value{}, errors.Wrapf(err, "error incrementing path: %s", p)
		}
		if res.MatchedCount > 0 || res.UpsertedCount > 0 {
			return NewValue(norm), nil
		}
	}
	return Value{}, errors.Errorf("too much contention incrementing path: %s", p)
}

func (b MongoBackend) QueryByField(ctx context.Context, collection Path, field string, equals any) ([]Entry, error) {
	if len(collection) != 1 {
		return nil, errors.Errorf("not a collection path: %s", collection)
	}
	eq, err := normalize(equals)
	if err != nil {
		return nil, err
	}

	cur, err := b.Collection(collection[0]).Find(
		ctx,
		bson.M{strings.ReplaceAll(field, "/", "."): eq},
		options.Find().SetSort(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor querying %s where %s == %v", collection, field, equals)
	}
	var docs []bson.M
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrapf(err, "error getting documents querying %s where %s == %v", collection, field, equals)
	}

	es := make([]Entry, 0, len(docs))
	for _, doc := range docs {
		id, ok := doc["_id"].(string)
		if !ok {
			continue
		}
		delete(doc, "_id")
		es = append(es, Entry{
			Path:  collection.Child(id),
			Value: NewValue(fromBSON(doc)),
		})
	}
	return es, nil
}

func dotted(p Path) string {
	return strings.Join(p[2:], ".")
}

// fromBSON rewrites driver document types into the plain JSON-shaped values
// the rest of the store traffics in.
func fromBSON(v any) any {
	switch n := v.(type) {
	case bson.M:
		m := make(map[string]any, len(n))
		for k, cv := range n {
			m[k] = fromBSON(cv)
		}
		return m
	case bson.D:
		m := make(map[string]any, len(n))
		for _, e := range n {
			m[e.Key] = fromBSON(e.Value)
		}
		return m
	case bson.A:
		a := make([]any, len(n))
		for i, cv := range n {
			a[i] = fromBSON(cv)
		}
		return a
	}
	return v
}
