package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/altedy/core"
)

type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

func Open(ctx context.Context) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(core.Conf.GetString("databaseUrl")))
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	if err := ping(ctx, client); err != nil {
		return nil, err
	}
	return &DB{client: client, db: client.Database(core.Conf.GetString("databaseName"))}, nil
}

func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, client *mongo.Client) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = client.Ping(ctx, nil)
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// collection wraps a mongo collection with the generic record operations the
// typed repositories are built on. All mutations are targeted field/array
// updates keyed by a primary-key predicate.
type collection struct {
	coll *mongo.Collection
}

func (db *DB) collection(name string) collection {
	return collection{coll: db.db.Collection(name)}
}

// upsert replaces the whole record matching key, creating it if absent.
func (c collection) upsert(ctx context.Context, key bson.M, doc interface{}) error {
	_, err := c.coll.ReplaceOne(ctx, key, doc, options.Replace().SetUpsert(true))
	return err
}

func (c collection) find(ctx context.Context, query bson.M, out interface{}) error {
	cur, err := c.coll.Find(ctx, query)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

// findOne decodes the first record matching query into out; an absent record
// is (false, nil), never an error.
func (c collection) findOne(ctx context.Context, query bson.M, out interface{}) (bool, error) {
	err := c.coll.FindOne(ctx, query).Decode(out)
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// updateFields applies a $set of the given fields; false when no record
// matched.
func (c collection) updateFields(ctx context.Context, key, fields bson.M) (bool, error) {
	res, err := c.coll.UpdateOne(ctx, key, bson.M{"$set": fields})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (c collection) arrayAppend(ctx context.Context, key bson.M, arrayName string, elements ...interface{}) (bool, error) {
	res, err := c.coll.UpdateOne(ctx, key, bson.M{"$push": bson.M{arrayName: bson.M{"$each": elements}}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (c collection) arrayRemove(ctx context.Context, key bson.M, arrayName string, match bson.M) (bool, error) {
	res, err := c.coll.UpdateOne(ctx, key, bson.M{"$pull": bson.M{arrayName: match}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (c collection) removeOne(ctx context.Context, key bson.M) (bool, error) {
	res, err := c.coll.DeleteOne(ctx, key)
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// moveElement moves the first element of fromArray matching match into
// toArray. The element is addressed by its logical id fields, resolved by
// scanning, never by positional offset.
func (c collection) moveElement(ctx context.Context, key bson.M, fromArray string, match bson.M, toArray string) (bool, error) {
	var doc bson.M
	ok, err := c.findOne(ctx, key, &doc)
	if err != nil || !ok {
		return false, err
	}

	arr, ok := doc[fromArray].(bson.A)
	if !ok {
		return false, nil
	}
	var element interface{}
	for _, el := range arr {
		if matches(el, match) {
			element = el
			break
		}
	}
	if element == nil {
		return false, nil
	}

	res, err := c.coll.UpdateOne(ctx, key, bson.M{
		"$pull": bson.M{fromArray: match},
		"$push": bson.M{toArray: element},
	})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// matches compares an element's logical id fields; elements decode as bson.D
// (default) or bson.M depending on registry settings.
func matches(el interface{}, match bson.M) bool {
	for k, v := range match {
		got, ok := lookup(el, k)
		if !ok || got != v {
			return false
		}
	}
	return true
}

func lookup(el interface{}, key string) (interface{}, bool) {
	switch doc := el.(type) {
	case bson.M:
		v, ok := doc[key]
		return v, ok
	case bson.D:
		for _, e := range doc {
			if e.Key == key {
				return e.Value, true
			}
		}
	}
	return nil, false
}
