package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")
	viper.SetDefault("dataDir", "./data")

	viper.SetDefault("db.driver", "mysql")
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "3306")
	viper.SetDefault("db.username", "")
	viper.SetDefault("db.password", "")
	viper.SetDefault("db.database", "weaponpaints")
	viper.SetDefault("db.sqlitePath", "./weaponpaints.db")

	viper.SetDefault("cooldown.commandSeconds", 30)
	viper.SetDefault("cooldown.selectionSeconds", 5)

	viper.SetDefault("features.skins", true)
	viper.SetDefault("features.knives", true)
	viper.SetDefault("features.gloves", true)
	viper.SetDefault("features.agents", true)
	viper.SetDefault("features.music", true)
	viper.SetDefault("features.pins", true)

	viper.SetDefault("preview.enabled", true)
	viper.SetDefault("preview.seconds", 2)

	viper.SetDefault("syncer.maxRetries", 3)
	viper.SetDefault("syncer.retryDelayMs", 250)

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "weaponpaints-metrics")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetConfigName("weaponpaints.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// Validate rejects configurations the process cannot start with. SQLite needs
// no credentials, the server drivers do.
func Validate() error {
	driver := viper.GetString("db.driver")
	switch driver {
	case "sqlite":
	case "mysql", "postgres":
		if viper.GetString("db.username") == "" {
			return fmt.Errorf("db.username is required for driver %s", driver)
		}
		if viper.GetString("db.database") == "" {
			return fmt.Errorf("db.database is required for driver %s", driver)
		}
	default:
		return fmt.Errorf("unknown db.driver %q", driver)
	}

	if viper.GetString("dataDir") == "" {
		return fmt.Errorf("dataDir must point at the catalog directory")
	}
	if viper.GetInt("cooldown.commandSeconds") < 0 || viper.GetInt("cooldown.selectionSeconds") < 0 {
		return fmt.Errorf("cooldown durations must not be negative")
	}
	return nil
}

// CommandCooldown returns the command cooldown window.
func CommandCooldown() time.Duration {
	return time.Duration(viper.GetInt("cooldown.commandSeconds")) * time.Second
}

// SelectionCooldown returns the selection cooldown window.
func SelectionCooldown() time.Duration {
	return time.Duration(viper.GetInt("cooldown.selectionSeconds")) * time.Second
}

// PreviewTTL returns how long a preview entry stays visible.
func PreviewTTL() time.Duration {
	return time.Duration(viper.GetInt("preview.seconds")) * time.Second
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}
