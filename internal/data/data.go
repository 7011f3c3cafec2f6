package data

import (
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	accessdata "github.com/aldersonarchive/archive-backend/internal/access/data"
	catalogdata "github.com/aldersonarchive/archive-backend/internal/catalog/data"
	"github.com/aldersonarchive/archive-backend/internal/conf"
	"github.com/aldersonarchive/archive-backend/internal/pkg/database"
	"github.com/aldersonarchive/archive-backend/internal/pkg/logger"
	"github.com/aldersonarchive/archive-backend/internal/pkg/redis"
	userdata "github.com/aldersonarchive/archive-backend/internal/user/data"
)

// Data bundles the shared infrastructure clients
type Data struct {
	DB          *database.DB
	RedisClient *redis.Client
	MinIOClient *minio.Client
}

func NewData(config *conf.Config, log *logger.Logger) (*Data, func(), error) {
	db, err := database.New(&config.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, nil, err
	}

	redisClient, err := redis.New(&config.Redis, log)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to init redis: %w", err)
	}

	minioClient, err := minio.New(config.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.MinIO.AccessKey, config.MinIO.SecretKey, ""),
		Secure: config.MinIO.UseSSL,
	})
	if err != nil {
		redisClient.Close()
		db.Close()
		return nil, nil, fmt.Errorf("failed to init minio: %w", err)
	}

	d := &Data{
		DB:          db,
		RedisClient: redisClient,
		MinIOClient: minioClient,
	}

	cleanup := func() {
		log.Info("cleaning up data resources")
		redisClient.Close()
		db.Close()
	}

	return d, cleanup, nil
}

func migrate(db *database.DB) error {
	err := db.AutoMigrate(
		&userdata.UserPO{},
		&catalogdata.ContributorPO{},
		&catalogdata.CollectionPO{},
		&catalogdata.ItemTypePO{},
		&catalogdata.ItemPO{},
		&accessdata.AccessEventPO{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	return nil
}
