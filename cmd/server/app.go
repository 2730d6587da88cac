package main

import (
	"context"

	"anoa.com/devconnector/internal/bootstrap"
	"anoa.com/devconnector/internal/config"
	"anoa.com/devconnector/pkg/database"
	"anoa.com/devconnector/pkg/event"
	"anoa.com/devconnector/pkg/logger"
	"anoa.com/devconnector/pkg/ratelimit"
	"anoa.com/devconnector/pkg/search"
	"anoa.com/devconnector/pkg/storage"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app owns every long-lived handle opened for a command.
type app struct {
	cfg   *config.Config
	log   logger.Logger
	repos bootstrap.Repositories

	gormDB      *gorm.DB
	mongoClient *mongo.Client
	mongoDB     *mongo.Database
	redisClient *redis.Client
	publisher   event.Publisher
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: logger.NewZapLogger(cfg.AppEnv)}, nil
}

// openStore connects the primary store selected by STORE_DRIVER.
func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := database.ConnectMongo(ctx, a.cfg.MongoURI, a.cfg.MongoDatabase)
		if err != nil {
			return err
		}
		a.mongoClient, a.mongoDB = client, db
		a.repos = bootstrap.NewMongoRepositories(db)
	default:
		db, err := database.Connect(a.cfg.PostgresDSN(), !a.cfg.IsProduction())
		if err != nil {
			return err
		}
		a.gormDB = db
		a.repos = bootstrap.NewGormRepositories(db)
	}
	a.log.Info("store connected", zap.String("driver", a.cfg.StoreDriver))
	return nil
}

func (a *app) migrate(ctx context.Context) error {
	if a.mongoDB != nil {
		return bootstrap.MigrateMongo(ctx, a.mongoDB)
	}
	return bootstrap.Migrate(a.gormDB)
}

// profileIndex returns nil when Meilisearch is not configured or unreachable.
func (a *app) profileIndex() search.ProfileIndex {
	if a.cfg.MeiliSearchHost == "" {
		return nil
	}
	index, err := search.NewMeiliProfileIndex(search.NewMeiliClient(a.cfg.MeiliSearchHost, a.cfg.MeiliMasterKey))
	if err != nil {
		a.log.Warn("meilisearch unavailable, profile search disabled", zap.Error(err))
		return nil
	}
	return index
}

func (a *app) imageStorage() storage.ImageStorage {
	if a.cfg.CloudinaryURL == "" {
		a.log.Warn("CLOUDINARY_URL not set, avatar uploads disabled")
		return nil
	}
	s, err := storage.NewCloudinaryStorage(a.cfg.CloudinaryURL)
	if err != nil {
		a.log.Warn("cloudinary unavailable, avatar uploads disabled", zap.Error(err))
		return nil
	}
	return s
}

func (a *app) limiter(ctx context.Context) ratelimit.Limiter {
	if a.cfg.RedisURL == "" {
		a.log.Warn("REDIS_URL not set, post rate limiting disabled")
		return ratelimit.NewRedisLimiter(nil)
	}
	rdb, err := database.NewRedisClient(ctx, a.cfg.RedisURL)
	if err != nil {
		a.log.Warn("redis unavailable, post rate limiting disabled", zap.Error(err))
		return ratelimit.NewRedisLimiter(nil)
	}
	a.redisClient = rdb
	return ratelimit.NewRedisLimiter(rdb)
}

func (a *app) eventPublisher() event.Publisher {
	a.publisher = event.NewKafkaPublisher(a.cfg.KafkaBrokers)
	return a.publisher
}

func (a *app) close(ctx context.Context) {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Error("failed to close kafka writer", err)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("failed to close redis client", err)
		}
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.log.Error("failed to disconnect mongo", err)
		}
	}
	if a.gormDB != nil {
		if err := database.Close(a.gormDB); err != nil {
			a.log.Error("failed to close database", err)
		}
	}
	_ = a.log.Sync()
}
