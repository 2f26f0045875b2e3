package database

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDriver struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type mongoElement struct {
	ID    int64  `bson:"_id"`
	Value string `bson:"value"`
}

func (md *MongoDriver) Connect(dsn string) error {
	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(dsn))
	if err != nil {
		return err
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return err
	}
	md.client = client
	md.collection = client.Database(databaseName).Collection(tableName)
	return nil
}

func (md *MongoDriver) Close() error {
	if md.client == nil {
		return nil
	}
	return md.client.Disconnect(context.Background())
}

func (md *MongoDriver) Reset(ctx context.Context) error {
	_, err := md.collection.DeleteMany(ctx, bson.M{})
	return errors.Wrap(err, "emptying collection")
}

func (md *MongoDriver) Insert(ctx context.Context, key int64, value string) error {
	_, err := md.collection.InsertOne(ctx, mongoElement{ID: key, Value: value})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	return err
}

func (md *MongoDriver) Select(ctx context.Context, key int64) (string, error) {
	var element mongoElement
	err := md.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&element)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrNotFound
	}
	return element.Value, err
}

func (md *MongoDriver) Update(ctx context.Context, key int64, value string) error {
	res, err := md.collection.UpdateOne(ctx, bson.M{"_id": key}, bson.M{"$set": bson.M{"value": value}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (md *MongoDriver) Delete(ctx context.Context, key int64) error {
	res, err := md.collection.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
