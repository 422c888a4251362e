package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/acvora/acvora/internal/utils"
	"github.com/acvora/acvora/pkg/api"
	"github.com/acvora/acvora/pkg/saved"
	"github.com/acvora/acvora/pkg/storage"
)

// newAPIClient builds the catalog client from config and global flags.
func newAPIClient() (*api.Client, error) {
	proxy, _ := rootCmd.PersistentFlags().GetString("proxy")
	return api.NewClient(
		viper.GetString("api.baseurl"),
		api.WithTimeout(time.Duration(viper.GetInt("api.timeout"))*time.Second),
		api.WithRetries(viper.GetInt("api.retries")),
		api.WithRateLimit(viper.GetInt("api.ratelimit")),
		api.WithProxy(proxy),
		api.WithLogger(utils.Log),
	)
}

// openState opens the local state database at the configured path.
func openState() (*storage.DB, string, error) {
	path, err := utils.StatePath(viper.GetString("state.path"))
	if err != nil {
		return nil, "", err
	}
	db, err := storage.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("could not open local state %s: %w", path, err)
	}
	return db, path, nil
}

// newTracker creates a saved-course tracker for the stored user and hydrates
// it from the local cache and the remote list. The cache is rewritten, so
// callers hold the state lock.
func newTracker(ctx context.Context, client *api.Client, db *storage.DB) (*saved.Tracker, error) {
	userID, err := db.UserID(ctx)
	if err != nil {
		return nil, err
	}
	t := saved.NewTracker(client, userID, saved.WithCache(db), saved.WithLogger(utils.Log))
	if err := t.Hydrate(ctx); err != nil {
		utils.Log.Warn("Using locally cached saved courses")
	}
	return t, nil
}
