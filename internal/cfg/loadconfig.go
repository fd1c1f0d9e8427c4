package cfg

import (
	"fmt"
	"os"

	"tubevault/internal/utils/logging"

	"github.com/spf13/viper"
)

// loadConfigFile reads the optional config file in the data dir into viper.
// A missing file is not an error; flags and environment variables still
// apply, and explicitly-set flags take precedence over file values.
func loadConfigFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed check for config file path: %w", err)
	}

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed loading config file %q: %w", path, err)
	}

	logging.I("Loaded configuration from %q", path)
	return nil
}
