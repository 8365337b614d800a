package initialization

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	HTTPAddress string

	PostgresURI string

	GoogleClientID       string
	GoogleClientSecret   string
	AirtableClientID     string
	AirtableClientSecret string

	OpenAIAPIKey string
	OpenAIModel  string

	HunterAPIKey     string
	CompanySearchURL string
}

// LoadConfig loads configuration from a yaml file and environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envMappings := map[string]string{
		"HTTPAddress":          "HTTP_ADDRESS",
		"PostgresURI":          "POSTGRES_URI",
		"GoogleClientID":       "GOOGLE_CLIENT_ID",
		"GoogleClientSecret":   "GOOGLE_CLIENT_SECRET",
		"AirtableClientID":     "AIRTABLE_CLIENT_ID",
		"AirtableClientSecret": "AIRTABLE_CLIENT_SECRET",
		"OpenAIAPIKey":         "OPENAI_API_KEY",
		"OpenAIModel":          "OPENAI_MODEL",
		"HunterAPIKey":         "HUNTER_API_KEY",
		"CompanySearchURL":     "COMPANY_SEARCH_URL",
	}

	for configKey, envVar := range envMappings {
		if err := v.BindEnv(configKey, envVar); err != nil {
			log.Warn().Err(err).Msgf("Failed to bind environment variable %s for %s", envVar, configKey)
		}
	}

	v.SetConfigName("leadflow_config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.leadflow")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug().Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Info().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTPAddress", ":8080")
}

func validateConfig(config *Config) error {
	var missingVars []string

	if config.PostgresURI == "" {
		missingVars = append(missingVars, "POSTGRES_URI")
	}

	if config.OpenAIAPIKey == "" {
		missingVars = append(missingVars, "OPENAI_API_KEY")
	}

	if config.GoogleClientID == "" {
		missingVars = append(missingVars, "GOOGLE_CLIENT_ID")
	}

	if config.GoogleClientSecret == "" {
		missingVars = append(missingVars, "GOOGLE_CLIENT_SECRET")
	}

	if config.AirtableClientID == "" {
		missingVars = append(missingVars, "AIRTABLE_CLIENT_ID")
	}

	if config.AirtableClientSecret == "" {
		missingVars = append(missingVars, "AIRTABLE_CLIENT_SECRET")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missingVars, ", "))
	}

	if config.HunterAPIKey == "" {
		log.Warn().Msg("HUNTER_API_KEY not set, enrichment will skip email lookup")
	}

	if config.CompanySearchURL == "" {
		log.Warn().Msg("COMPANY_SEARCH_URL not set, prospecting will be unavailable")
	}

	return nil
}
