// Package mongodb opens MongoDB clients for the stores and the log sink.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Options tunes the client pool. Zero values fall back to sane defaults.
type Options struct {
	MaxPoolSize    uint64
	ConnectTimeout time.Duration
}

// Connect dials uri and verifies the deployment with a ping.
// The caller owns the client and must Disconnect it.
func Connect(ctx context.Context, uri string, opts Options) (*mongo.Client, error) {
	if opts.MaxPoolSize == 0 {
		opts.MaxPoolSize = 25
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	clientOpts := options.Client().ApplyURI(uri).
		SetConnectTimeout(opts.ConnectTimeout).
		SetServerSelectionTimeout(opts.ConnectTimeout).
		SetMaxPoolSize(opts.MaxPoolSize)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongodb: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb: ping: %w", err)
	}

	return client, nil
}

// Disconnect closes client with a bounded timeout.
func Disconnect(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}
