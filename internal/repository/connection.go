package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

// EnsureIndexes creates the indexes every collection relies on. Safe to call
// on every startup; Mongo treats an existing index as a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for name, create := range map[string]func(context.Context) error{
		"products": (&productMongoRepository{collection: db.Collection("products")}).CreateIndexes,
		"orders":   (&orderMongoRepository{collection: db.Collection("orders")}).CreateIndexes,
		"carts":    (&cartMongoRepository{collection: db.Collection("carts")}).CreateIndexes,
		"users":    (&userMongoRepository{collection: db.Collection("users")}).CreateIndexes,
	} {
		if err := create(ctx); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}
	return nil
}
