package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Migration struct {
	Version     int
	Description string
	Up          func(ctx context.Context, db *mongo.Database) error
}

type Migrator struct {
	db         *mongo.Database
	migrations []Migration
}

func NewMigrator(db *mongo.Database) *Migrator {
	return &Migrator{
		db:         db,
		migrations: getMigrations(),
	}
}

// Up applies all migrations newer than the recorded version, in order.
func (m *Migrator) Up(ctx context.Context) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if migration.Version <= currentVersion {
			continue
		}

		if err := migration.Up(ctx, m.db); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Description, err)
		}

		if err := m.setVersion(ctx, migration.Version); err != nil {
			return fmt.Errorf("failed to record migration version %d: %w", migration.Version, err)
		}
	}

	return nil
}

func (m *Migrator) getCurrentVersion(ctx context.Context) (int, error) {
	var doc struct {
		Version int `bson:"version"`
	}

	err := m.db.Collection("migrations").FindOne(ctx, bson.M{"_id": "schema"}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read migration version: %w", err)
	}

	return doc.Version, nil
}

func (m *Migrator) setVersion(ctx context.Context, version int) error {
	_, err := m.db.Collection("migrations").UpdateOne(
		ctx,
		bson.M{"_id": "schema"},
		bson.M{"$set": bson.M{"version": version, "updated_at": time.Now()}},
		options.Update().SetUpsert(true),
	)
	return err
}

func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "user indexes",
			Up: func(ctx context.Context, db *mongo.Database) error {
				_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
					{
						Keys:    bson.D{{Key: "email", Value: 1}},
						Options: options.Index().SetUnique(true),
					},
				})
				return err
			},
		},
		{
			Version:     2,
			Description: "pool indexes",
			Up: func(ctx context.Context, db *mongo.Database) error {
				_, err := db.Collection("pools").Indexes().CreateMany(ctx, []mongo.IndexModel{
					{Keys: bson.D{{Key: "date", Value: 1}, {Key: "status", Value: 1}}},
					{Keys: bson.D{{Key: "created_by", Value: 1}}},
					{Keys: bson.D{{Key: "participants.user_id", Value: 1}}},
				})
				return err
			},
		},
		{
			Version:     3,
			Description: "feedback indexes, one record per (ride, rater, rated) triple",
			Up: func(ctx context.Context, db *mongo.Database) error {
				_, err := db.Collection("feedback").Indexes().CreateMany(ctx, []mongo.IndexModel{
					{
						Keys: bson.D{
							{Key: "ride_id", Value: 1},
							{Key: "rater_id", Value: 1},
							{Key: "rated_user_id", Value: 1},
						},
						Options: options.Index().SetUnique(true),
					},
					{Keys: bson.D{{Key: "rated_user_id", Value: 1}}},
					{Keys: bson.D{{Key: "rater_id", Value: 1}}},
					{Keys: bson.D{{Key: "ride_id", Value: 1}}},
				})
				return err
			},
		},
	}
}
