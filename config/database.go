package config

import (
	"context"
	"fmt"
	"time"

	"github.com/Modeva-Ecommerce/modeva-commerce-backend/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConnectMongo opens the document store connection and verifies it with a ping.
// Embedded documents decode as bson.M so records stay plain maps end to end.
func ConnectMongo(ctx context.Context, cfg DatabaseConfig, log *logger.Logger) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true}).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	log.Infow("document database connected", "database", cfg.MongoDatabase)
	return client, client.Database(cfg.MongoDatabase), nil
}

// OpenActivityDB opens the relational database that stores activity logs.
// It returns (nil, nil) when activity logging is not configured.
func OpenActivityDB(cfg ActivityLogConfig, appEnv string, log *logger.Logger) (*gorm.DB, error) {
	if cfg.Driver == "" {
		log.Warnw("activity log database not configured, activity logging disabled")
		return nil, nil
	}

	gormLogger := gormlogger.Default.LogMode(gormlogger.Info)
	if appEnv == "production" {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported activity db driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  gormLogger,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to activity database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(5)
		sqlDB.SetMaxIdleConns(2)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
		sqlDB.SetConnMaxIdleTime(2 * time.Minute)
	}

	log.Infow("activity database connected", "driver", cfg.Driver)
	return db, nil
}

// CloseActivityDB releases the pool behind db, if any.
func CloseActivityDB(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
