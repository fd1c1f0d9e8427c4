package cfg

import (
	"context"
	"fmt"

	"tubevault/internal/app"
	"tubevault/internal/contracts"
	"tubevault/internal/database"
	"tubevault/internal/database/repo"
	"tubevault/internal/domain/keys"
	"tubevault/internal/domain/paths"
	"tubevault/internal/downloads"
	"tubevault/internal/events"
	"tubevault/internal/metadata"
	"tubevault/internal/platform"
	"tubevault/internal/utils/logging"

	"github.com/spf13/viper"
)

// Runtime bundles the wired application and everything needing teardown.
type Runtime struct {
	App   *app.App
	Relay *events.Relay

	db *database.Database
}

// Close shuts down transfers, the database, and the log file, in that order.
func (rt *Runtime) Close() {
	rt.App.Shutdown()
	if err := rt.db.Close(); err != nil {
		logging.E("Failed to close database: %v", err)
	}
	logging.CloseLogging()
}

// bootstrap wires the full application from viper configuration: paths,
// logging, database, stores, platform client, transfer manager, relay.
func bootstrap() (*Runtime, error) {
	if err := paths.InitProgFilesDirs(viper.GetString(keys.DataDir)); err != nil {
		return nil, err
	}
	if err := loadConfigFile(paths.ConfigFilePath); err != nil {
		return nil, err
	}
	logging.Level = viper.GetInt(keys.DebugLevel)

	if err := logging.SetupLogging(paths.LogFilePath); err != nil {
		fmt.Printf("\n\nNotice: Log file was not created\nReason: %s\n\n", err)
	}

	db, err := database.InitDB(paths.DBFilePath)
	if err != nil {
		return nil, err
	}

	store := repo.InitStores(db.DB).VideoStore()

	useBrowserCookies := viper.GetBool(keys.BrowserCookies)
	holder := platform.NewClientHolder(func(ctx context.Context) (contracts.PlatformClient, error) {
		httpClient, err := platform.NewHTTPClient(ctx, useBrowserCookies)
		if err != nil {
			return nil, err
		}
		return platform.NewYouTube(httpClient), nil
	})

	relay := events.NewRelay()
	manager := downloads.NewManager(store, holder.Client(), relay, paths.DownloadDir, downloads.Options{
		MaxConcurrent: viper.GetInt(keys.MaxConcurrent),
		StallTimeout:  stallTimeout(),
	})
	resolver := metadata.NewResolver(holder)

	return &Runtime{
		App:   app.New(store, resolver, manager, relay, holder, paths.ThumbnailDir),
		Relay: relay,
		db:    db,
	}, nil
}
