// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"github.com/mentorhq/mentorhub/internal/app/system/indexes"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB establishes the MongoDB connection and, when configured, the
// Redis client backing the notification debounce store.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	clientOpts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase))

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}

	if appCfg.NotifyRedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: appCfg.NotifyRedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = client.Disconnect(ctx)
			return DBDeps{}, fmt.Errorf("redis ping %s: %w", appCfg.NotifyRedisAddr, err)
		}
		logger.Info("connected to Redis for notification debounce",
			zap.String("addr", appCfg.NotifyRedisAddr))
		deps.Redis = rdb
	}

	return deps, nil
}

// EnsureSchema reconciles all MongoDB indexes at startup. The unique
// indexes it creates are the arbiters for the concurrent-enrollment and
// thread-pair guarantees, so startup fails fast if any cannot be built.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return indexes.EnsureAll(ctx, deps.MongoDatabase)
}
