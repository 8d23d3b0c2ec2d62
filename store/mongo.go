package store

import (
	"context"
	"errors"

	ierr "github.com/Modeva-Ecommerce/modeva-commerce-backend/errors"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore maps each resource onto a collection of the same name.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(client *mongo.Client, db *mongo.Database) *MongoStore {
	return &MongoStore{client: client, db: db}
}

func (s *MongoStore) Collection(name string) Collection {
	return &mongoCollection{name: name, coll: s.db.Collection(name)}
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type mongoCollection struct {
	name string
	coll *mongo.Collection
}

func (c *mongoCollection) Name() string { return c.name }

func (c *mongoCollection) Create(ctx context.Context, doc models.Record) (models.Record, error) {
	stored := doc.Clone()
	if _, ok := stored[models.FieldID]; !ok {
		stored[models.FieldID] = primitive.NewObjectID()
	}
	if _, err := c.coll.InsertOne(ctx, bson.M(stored)); err != nil {
		return nil, c.wrap(err)
	}
	return stored, nil
}

func (c *mongoCollection) CreateMany(ctx context.Context, docs []models.Record) (int64, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	batch := make([]any, len(docs))
	for i, d := range docs {
		stored := d.Clone()
		if _, ok := stored[models.FieldID]; !ok {
			stored[models.FieldID] = primitive.NewObjectID()
		}
		batch[i] = bson.M(stored)
	}
	res, err := c.coll.InsertMany(ctx, batch)
	if err != nil {
		return 0, c.wrap(err)
	}
	return int64(len(res.InsertedIDs)), nil
}

func (c *mongoCollection) FindOne(ctx context.Context, filter Filter) (models.Record, error) {
	var out models.Record
	if err := c.coll.FindOne(ctx, bson.M(filter)).Decode(&out); err != nil {
		return nil, c.wrap(err)
	}
	return out, nil
}

func (c *mongoCollection) Find(ctx context.Context, filter Filter, opts *FindOptions) ([]models.Record, error) {
	findOpts := options.Find()
	if opts != nil {
		if len(opts.Sort) > 0 {
			findOpts.SetSort(sortDoc(opts.Sort))
		}
		if len(opts.Select) > 0 {
			findOpts.SetProjection(projectionDoc(opts.Select))
		}
		if opts.Skip > 0 {
			findOpts.SetSkip(opts.Skip)
		}
		if opts.Limit > 0 {
			findOpts.SetLimit(opts.Limit)
		}
	}
	return c.find(ctx, filter, findOpts)
}

func (c *mongoCollection) Paginate(ctx context.Context, filter Filter, opts *Options) (*Page, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	total, err := c.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, ierr.NewNotFound(c.name + " not found")
	}

	findOpts := options.Find()
	if len(opts.Sort) > 0 {
		findOpts.SetSort(sortDoc(opts.Sort))
	}
	if len(opts.Select) > 0 {
		findOpts.SetProjection(projectionDoc(opts.Select))
	}
	if opts.Pagination {
		findOpts.SetSkip(opts.skip()).SetLimit(opts.limit())
	}
	docs, err := c.find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	return newPage(docs, total, opts), nil
}

func (c *mongoCollection) Count(ctx context.Context, filter Filter) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, bson.M(filter))
	if err != nil {
		return 0, c.wrap(err)
	}
	return n, nil
}

func (c *mongoCollection) UpdateOne(ctx context.Context, filter Filter, patch models.Record) (models.Record, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out models.Record
	err := c.coll.FindOneAndUpdate(ctx, bson.M(filter), setDoc(patch), opts).Decode(&out)
	if err != nil {
		return nil, c.wrap(err)
	}
	return out, nil
}

func (c *mongoCollection) UpdateMany(ctx context.Context, filter Filter, patch models.Record) (int64, error) {
	res, err := c.coll.UpdateMany(ctx, bson.M(filter), setDoc(patch))
	if err != nil {
		return 0, c.wrap(err)
	}
	return res.MatchedCount, nil
}

func (c *mongoCollection) DeleteOne(ctx context.Context, filter Filter) (models.Record, error) {
	var out models.Record
	if err := c.coll.FindOneAndDelete(ctx, bson.M(filter)).Decode(&out); err != nil {
		return nil, c.wrap(err)
	}
	return out, nil
}

func (c *mongoCollection) DeleteMany(ctx context.Context, filter Filter) (int64, error) {
	res, err := c.coll.DeleteMany(ctx, bson.M(filter))
	if err != nil {
		return 0, c.wrap(err)
	}
	return res.DeletedCount, nil
}

func (c *mongoCollection) find(ctx context.Context, filter Filter, opts *options.FindOptions) ([]models.Record, error) {
	cur, err := c.coll.Find(ctx, bson.M(filter), opts)
	if err != nil {
		return nil, c.wrap(err)
	}
	defer cur.Close(ctx)

	docs := make([]models.Record, 0)
	if err := cur.All(ctx, &docs); err != nil {
		return nil, c.wrap(err)
	}
	return docs, nil
}

func (c *mongoCollection) wrap(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ierr.NewNotFound(c.name + " not found")
	case mongo.IsDuplicateKeyError(err):
		return ierr.NewBadRequest("duplicate key: " + err.Error())
	default:
		return ierr.Database(err)
	}
}

func setDoc(patch models.Record) bson.M {
	set := bson.M{}
	for k, v := range patch {
		if k == models.FieldID {
			continue
		}
		set[k] = v
	}
	return bson.M{"$set": set}
}

func sortDoc(fields []SortField) bson.D {
	d := make(bson.D, 0, len(fields))
	for _, f := range fields {
		dir := 1
		if f.Desc {
			dir = -1
		}
		d = append(d, bson.E{Key: f.Field, Value: dir})
	}
	return d
}

func projectionDoc(fields []string) bson.M {
	p := bson.M{}
	for _, f := range fields {
		if len(f) > 1 && f[0] == '-' {
			p[f[1:]] = 0
			continue
		}
		p[f] = 1
	}
	return p
}
