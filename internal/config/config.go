package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Billing   BillingConfig
	Payment   PaymentConfig
	Printer   PrinterConfig
	Barcode   BarcodeConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver     string
	Host       string
	Port       string
	Name       string
	User       string
	Password   string
	SSLMode    string
	Timezone   string
	SQLitePath string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type BillingConfig struct {
	// Timeout bounds a whole bill submission, transaction included.
	Timeout time.Duration
	// LowStockThreshold marks catalog rows worth reordering on the dashboard.
	LowStockThreshold int
	// IdempotencyTTL is how long a replayable POST /bills response is kept.
	IdempotencyTTL time.Duration
}

// PaymentConfig seeds the payee settings on first start. The settings
// table is authoritative afterwards.
type PaymentConfig struct {
	PayeeVPA  string
	PayeeName string
	Currency  string
}

type PrinterConfig struct {
	Type      string
	USBPath   string
	Address   string
	Timeout   time.Duration
	CharWidth int
}

type BarcodeConfig struct {
	APIURL  string
	APIKey  string
	Timeout time.Duration
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "pharmacy-pos-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "pharmacy")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("SQLITE_PATH", "inventory.db")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("BILLING_TIMEOUT_SECONDS", 15)
	viper.SetDefault("BILLING_LOW_STOCK_THRESHOLD", 10)
	viper.SetDefault("IDEMPOTENCY_TTL_HOURS", 24)
	viper.SetDefault("PAYMENT_PAYEE_VPA", "")
	viper.SetDefault("PAYMENT_PAYEE_NAME", "")
	viper.SetDefault("PAYMENT_CURRENCY", "INR")
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_USB_PATH", "/dev/usb/lp0")
	viper.SetDefault("PRINTER_ADDRESS", "")
	viper.SetDefault("PRINTER_TIMEOUT_SECONDS", 5)
	viper.SetDefault("PRINTER_CHAR_WIDTH", 32)
	viper.SetDefault("BARCODE_API_URL", "https://api.upcitemdb.com/prod/trial/lookup")
	viper.SetDefault("BARCODE_API_KEY", "")
	viper.SetDefault("BARCODE_TIMEOUT_SECONDS", 10)

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Driver:     viper.GetString("DB_DRIVER"),
			Host:       viper.GetString("DB_HOST"),
			Port:       viper.GetString("DB_PORT"),
			Name:       viper.GetString("DB_NAME"),
			User:       viper.GetString("DB_USER"),
			Password:   viper.GetString("DB_PASSWORD"),
			SSLMode:    viper.GetString("DB_SSL_MODE"),
			Timezone:   viper.GetString("DB_TIMEZONE"),
			SQLitePath: viper.GetString("SQLITE_PATH"),
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Billing: BillingConfig{
			Timeout:           time.Duration(viper.GetInt("BILLING_TIMEOUT_SECONDS")) * time.Second,
			LowStockThreshold: viper.GetInt("BILLING_LOW_STOCK_THRESHOLD"),
			IdempotencyTTL:    time.Duration(viper.GetInt("IDEMPOTENCY_TTL_HOURS")) * time.Hour,
		},
		Payment: PaymentConfig{
			PayeeVPA:  viper.GetString("PAYMENT_PAYEE_VPA"),
			PayeeName: viper.GetString("PAYMENT_PAYEE_NAME"),
			Currency:  viper.GetString("PAYMENT_CURRENCY"),
		},
		Printer: PrinterConfig{
			Type:      viper.GetString("PRINTER_TYPE"),
			USBPath:   viper.GetString("PRINTER_USB_PATH"),
			Address:   viper.GetString("PRINTER_ADDRESS"),
			Timeout:   time.Duration(viper.GetInt("PRINTER_TIMEOUT_SECONDS")) * time.Second,
			CharWidth: viper.GetInt("PRINTER_CHAR_WIDTH"),
		},
		Barcode: BarcodeConfig{
			APIURL:  viper.GetString("BARCODE_API_URL"),
			APIKey:  viper.GetString("BARCODE_API_KEY"),
			Timeout: time.Duration(viper.GetInt("BARCODE_TIMEOUT_SECONDS")) * time.Second,
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
