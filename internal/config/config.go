package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Data      DataConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
	MongoDB   MongoDBConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// DataConfig lists the milk-weight files loaded at startup and on reload.
type DataConfig struct {
	Files []string
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
// The integration is disabled when AccessToken is empty.
type WhatsAppConfig struct {
	AccessToken     string
	PhoneNumberID   string
	VerifyToken     string
	AppSecret       string
	BaseURL         string
	APIVersion      string
	ReportRecipient string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
// The integration is disabled when SpreadsheetID is empty.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	MilkRange       string
	ReportRange     string
}

// ReportingConfig holds rendering and scheduler-related settings.
type ReportingConfig struct {
	PercentPlaces      int32
	ReportCronSchedule string
	ReloadCronSchedule string
	Timezone           string
}

// MongoDBConfig holds settings for the report archive. Disabled when URI is empty.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Enabled reports whether outbound WhatsApp messaging is configured.
func (c WhatsAppConfig) Enabled() bool { return c.AccessToken != "" }

// Enabled reports whether a spreadsheet is configured.
func (c SheetsConfig) Enabled() bool { return c.SpreadsheetID != "" }

// Enabled reports whether the MongoDB archive is configured.
func (c MongoDBConfig) Enabled() bool { return c.URI != "" }

// Location resolves the scheduler timezone.
func (c ReportingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	places, err := getenvInt("REPORT_PERCENT_PLACES", 2)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			Files: splitList(os.Getenv("MILK_DATA_FILES")),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:     os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID:   os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:     os.Getenv("META_VERIFY_TOKEN"),
			AppSecret:       os.Getenv("META_APP_SECRET"),
			BaseURL:         getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:      getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			ReportRecipient: os.Getenv("WHATSAPP_REPORT_RECIPIENT"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			MilkRange:       getenvWithDefault("GOOGLE_SHEET_MILK_RANGE", "Milk!A:C"),
			ReportRange:     getenvWithDefault("GOOGLE_SHEET_REPORT_RANGE", "Reports!A:G"),
		},
		Reporting: ReportingConfig{
			PercentPlaces:      int32(places),
			ReportCronSchedule: os.Getenv("REPORT_CRON_SCHEDULE"),
			ReloadCronSchedule: os.Getenv("RELOAD_CRON_SCHEDULE"),
			Timezone:           getenvWithDefault("TIMEZONE", "UTC"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "milkledger"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("APP_PORT %q must be a number between 1 and 65535", c.Server.Port)
	}

	if c.Reporting.PercentPlaces < 0 || c.Reporting.PercentPlaces > 10 {
		return fmt.Errorf("REPORT_PERCENT_PLACES must be between 0 and 10, got %d", c.Reporting.PercentPlaces)
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}
	if _, err := c.Reporting.Location(); err != nil {
		return fmt.Errorf("TIMEZONE %q is invalid: %w", c.Reporting.Timezone, err)
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.VerifyToken == "":
			return errors.New("META_VERIFY_TOKEN must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if c.Sheets.Enabled() {
		if c.Sheets.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
		}
		if c.Sheets.MilkRange == "" || c.Sheets.ReportRange == "" {
			return errors.New("GOOGLE_SHEET_MILK_RANGE and GOOGLE_SHEET_REPORT_RANGE must not be empty")
		}
	}

	if c.MongoDB.Enabled() && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return i, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
