package activity

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionOrderHistory = "order_status_history"
	CollectionListingOps   = "listing_operations"
)

// OrderStatusEntry records one order status change.
type OrderStatusEntry struct {
	OrderID   uint      `bson:"order_id"`
	ActorID   uint      `bson:"actor_id"`
	From      string    `bson:"from"`
	To        string    `bson:"to"`
	Tracking  string    `bson:"tracking_number,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

// ListingEntry records a seller-side listing operation (single or bulk).
type ListingEntry struct {
	SellerID   uint      `bson:"seller_id"`
	Action     string    `bson:"action"`
	ProductIDs []uint    `bson:"product_ids"`
	Status     string    `bson:"status,omitempty"`
	CreatedAt  time.Time `bson:"created_at"`
}

type Logger interface {
	OrderStatus(ctx context.Context, e OrderStatusEntry) error
	Listing(ctx context.Context, e ListingEntry) error
}

type mongoLogger struct {
	orders   *mongo.Collection
	listings *mongo.Collection
}

// Connect opens a Mongo-backed Logger.
func Connect(ctx context.Context, uri, database string) (Logger, func(context.Context) error, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	return &mongoLogger{
		orders:   db.Collection(CollectionOrderHistory),
		listings: db.Collection(CollectionListingOps),
	}, client.Disconnect, nil
}

func (l *mongoLogger) OrderStatus(ctx context.Context, e OrderStatusEntry) error {
	return l.insert(ctx, l.orders, e)
}

func (l *mongoLogger) Listing(ctx context.Context, e ListingEntry) error {
	return l.insert(ctx, l.listings, e)
}

func (l *mongoLogger) insert(ctx context.Context, coll *mongo.Collection, doc interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", coll.Name(), err)
	}
	return nil
}

// Stdout logs entries with the standard logger; used when Mongo is not configured.
type Stdout struct{}

func (Stdout) OrderStatus(_ context.Context, e OrderStatusEntry) error {
	log.Printf("order %d: %s -> %s by user %d", e.OrderID, e.From, e.To, e.ActorID)
	return nil
}

func (Stdout) Listing(_ context.Context, e ListingEntry) error {
	log.Printf("seller %d: %s %v %s", e.SellerID, e.Action, e.ProductIDs, e.Status)
	return nil
}
