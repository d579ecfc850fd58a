package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/milkledger/internal/domain/models"
)

const reportsCollection = "milk_reports"

// Repository defines the interface for report storage.
type Repository interface {
	SaveReport(ctx context.Context, snapshot models.ReportSnapshot) error
	LatestReports(ctx context.Context, kind models.ReportKind, limit int64) ([]models.ReportSnapshot, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

var _ Repository = (*MongoDBRepository)(nil)

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: reportsCollection,
	}, nil
}

// SaveReport stores a rendered report.
func (r *MongoDBRepository) SaveReport(ctx context.Context, snapshot models.ReportSnapshot) error {
	_, err := r.collection().InsertOne(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("failed to insert %s report: %w", snapshot.Kind, err)
	}
	return nil
}

// LatestReports returns the most recently archived reports of a kind, newest
// first. An empty kind lists every kind.
func (r *MongoDBRepository) LatestReports(ctx context.Context, kind models.ReportKind, limit int64) ([]models.ReportSnapshot, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection().Find(ctx, reportFilter(kind), opts)
	if err != nil {
		return nil, fmt.Errorf("find %s reports: %w", kind, err)
	}
	defer cursor.Close(ctx)

	var out []models.ReportSnapshot
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s reports: %w", kind, err)
	}
	return out, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

func reportFilter(kind models.ReportKind) bson.M {
	if kind == "" {
		return bson.M{}
	}
	return bson.M{"kind": kind}
}
