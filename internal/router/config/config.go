package config

import "github.com/spf13/viper"

// Config holds the application configuration.
type Config struct {
	ServerAddress  string `mapstructure:"SERVER_ADDRESS"`
	PostgresConn   string `mapstructure:"POSTGRES_CONN"`
	MigrationURL   string `mapstructure:"MIGRATION_URL"`
	SentryDSN      string `mapstructure:"SENTRY_DSN"`
	AuthBaseURL    string `mapstructure:"AUTH_BASE_URL"`
	StorageBaseURL string `mapstructure:"STORAGE_BASE_URL"`
	AnalysisURL    string `mapstructure:"ANALYSIS_URL"`
	RequestTimeout int    `mapstructure:"REQUEST_TIMEOUT"`
}

// LoadConfig loads the configuration from an env file at the given path.
func LoadConfig(path string) (cfg Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.SetDefault("REQUEST_TIMEOUT", 5)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}
	err = viper.Unmarshal(&cfg)
	return
}
