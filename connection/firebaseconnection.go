package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"google.golang.org/api/option"

	"tasky/config"
	"tasky/store"
)

// FBConnection opens a Firestore client from a service account key file.
func FBConnection(ctx context.Context, credentialsFile, projectID string) (*firestore.Client, error) {
	if credentialsFile == "" {
		return nil, errors.New("environment variable GOOGLE_APPLICATION_CREDENTIALS_1 is not set")
	}

	var fbConfig *firebase.Config
	if projectID != "" {
		fbConfig = &firebase.Config{ProjectID: projectID}
	}
	app, err := firebase.NewApp(ctx, fbConfig, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("get firestore client: %w", err)
	}
	return client, nil
}

// OpenStore opens the task store selected by STORE_DRIVER.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.TaskStore, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		st, err := store.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("sqlite store opened", slog.String("path", cfg.SQLitePath))
		return st, nil
	case config.DriverFirestore:
		client, err := FBConnection(ctx, cfg.CredentialsFile, cfg.FirebaseProjectID)
		if err != nil {
			return nil, err
		}
		logger.Info("firestore connection successful", slog.String("collection", cfg.TaskCollection))
		return store.NewFirestoreStore(client, cfg.TaskCollection), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
