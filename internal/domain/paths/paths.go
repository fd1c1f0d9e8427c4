// Package paths initializes tubevault's filepaths, directories, etc.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tubevault/internal/domain/consts"
)

const (
	tvDir      = ".tubevault"
	tvDBFile   = "tubevault.db"
	tvLogFile  = "tubevault.log"
	dlSubDir   = "downloads"
	thumbs     = "thumbnails"
	configFile = "config.toml"
)

// File and directory path strings.
var (
	HomeVaultDir   string
	DBFilePath     string
	LogFilePath    string
	DownloadDir    string
	ThumbnailDir   string
	ConfigFilePath string
)

// InitProgFilesDirs initializes necessary program directories and filepaths.
//
// An empty dataDir places the application root at ~/.tubevault.
func InitProgFilesDirs(dataDir string) error {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.New("failed to get home directory")
		}
		dataDir = filepath.Join(home, tvDir)
	}

	HomeVaultDir = dataDir
	DownloadDir = filepath.Join(dataDir, dlSubDir)
	ThumbnailDir = filepath.Join(dataDir, thumbs)

	for _, d := range []struct {
		path  string
		perms os.FileMode
	}{
		{HomeVaultDir, consts.PermsGenericDir},
		{DownloadDir, consts.PermsVideoDir},
		{ThumbnailDir, consts.PermsThumbDir},
	} {
		if _, err := os.Stat(d.path); os.IsNotExist(err) {
			if err := os.MkdirAll(d.path, d.perms); err != nil {
				return fmt.Errorf("failed to make directories: %w", err)
			}
		}
	}

	DBFilePath = filepath.Join(HomeVaultDir, tvDBFile)
	LogFilePath = filepath.Join(HomeVaultDir, tvLogFile)
	ConfigFilePath = filepath.Join(HomeVaultDir, configFile)
	return nil
}
