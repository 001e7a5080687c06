package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	ferrors "github.com/matzehuels/figstyle/pkg/errors"
	"github.com/matzehuels/figstyle/pkg/template"
)

// DefaultCollection is the collection used by NewMongoStore.
const DefaultCollection = "templates"

// MongoStore keeps templates in a MongoDB collection, one document per
// name. The template body is stored as a JSON string because BSON
// documents decoded into Go maps lose key order.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

type mongoDoc struct {
	ID         string    `bson:"_id"`
	Name       string    `bson:"name"`
	Template   string    `bson:"template"`
	SchemaHash string    `bson:"schema_hash,omitempty"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

// NewMongoStore connects to uri and uses the templates collection of
// database. It creates a unique index on the template name.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" || database == "" {
		return nil, fmt.Errorf("mongo: uri and database are required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s, err := NewMongoStoreFromCollection(ctx, client.Database(database).Collection(DefaultCollection))
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	s.client = client
	s.owned = true
	return s, nil
}

// NewMongoStoreFromCollection wraps an existing collection. Close does not
// disconnect the collection's client.
func NewMongoStoreFromCollection(ctx context.Context, coll *mongo.Collection) (*MongoStore, error) {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("mongo create index: %w", err)
	}
	return &MongoStore{coll: coll}, nil
}

func (s *MongoStore) find(ctx context.Context, name string) (*Entry, error) {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"name": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find %s: %w", name, err)
	}
	return doc.entry()
}

func (s *MongoStore) Put(ctx context.Context, name string, t *template.Template, schemaHash string) (*Entry, error) {
	if err := ferrors.ValidateTemplateName(name); err != nil {
		return nil, err
	}

	prev, err := s.find(ctx, name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	e := newEntry(prev, name, t, schemaHash, time.Now().UTC().Truncate(time.Millisecond))

	body, err := t.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal template: %w", err)
	}
	doc := mongoDoc{
		ID:         e.ID,
		Name:       e.Name,
		Template:   string(body),
		SchemaHash: e.SchemaHash,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"name": name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, fmt.Errorf("mongo replace %s: %w", name, err)
	}
	return e, nil
}

func (s *MongoStore) Get(ctx context.Context, name string) (*Entry, error) {
	if err := ferrors.ValidateTemplateName(name); err != nil {
		return nil, err
	}
	return s.find(ctx, name)
}

func (s *MongoStore) List(ctx context.Context) ([]*Entry, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	defer cur.Close(ctx)

	var out []*Entry
	for cur.Next(ctx) {
		var doc mongoDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo decode: %w", err)
		}
		e, err := doc.entry()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongo cursor: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := ferrors.ValidateTemplateName(name); err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("mongo delete %s: %w", name, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close disconnects the client if the store created it.
func (s *MongoStore) Close() error {
	if !s.owned || s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (d *mongoDoc) entry() (*Entry, error) {
	t, err := template.Parse([]byte(d.Template))
	if err != nil {
		return nil, fmt.Errorf("parse stored template %s: %w", d.Name, err)
	}
	return &Entry{
		ID:         d.ID,
		Name:       d.Name,
		Template:   t,
		SchemaHash: d.SchemaHash,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}, nil
}

var _ Store = (*MongoStore)(nil)
