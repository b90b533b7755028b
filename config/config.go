package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	// Server Settings
	AppName     string
	AppEnv      string
	AppPort     string
	HOST        string
	DatabaseURL string

	// JWT Settings
	JWTSecret     string
	JWTExpiration time.Duration

	// CORS Settings
	CORSAllowOrigins string
	CORSAllowMethods string
	CORSAllowHeaders string

	// Media host
	CloudinaryCloudName  string
	CloudinaryAPIKey     string
	CloudinaryAPISecret  string
	CloudinaryRootFolder string

	// Marketplace limits
	MaxUploadSize      int64
	MaxImagesPerUpload int
	MaxListingPrice    decimal.Decimal
	PasswordResetTTL   time.Duration

	// Activity log (optional)
	MongoURI      string
	MongoDatabase string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "EcoFinds API")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("JWT_EXPIRES_IN", "72h")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("CORS_ALLOW_METHODS", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
	v.SetDefault("CORS_ALLOW_HEADERS", "Origin,Content-Type,Accept,Authorization")
	v.SetDefault("CLOUDINARY_ROOT_FOLDER", "ecofinds")
	v.SetDefault("MAX_UPLOAD_SIZE", 10<<20)
	v.SetDefault("MAX_IMAGES_PER_UPLOAD", 10)
	v.SetDefault("MAX_LISTING_PRICE", "100000")
	v.SetDefault("PASSWORD_RESET_TTL", "1h")
	v.SetDefault("MONGO_DATABASE", "ecofinds")
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	maxPrice, err := decimal.NewFromString(v.GetString("MAX_LISTING_PRICE"))
	if err != nil || !maxPrice.IsPositive() {
		log.Printf("Invalid MAX_LISTING_PRICE %q, falling back to 100000", v.GetString("MAX_LISTING_PRICE"))
		maxPrice = decimal.NewFromInt(100000)
	}

	jwtTTL := v.GetDuration("JWT_EXPIRES_IN")
	if jwtTTL <= 0 {
		jwtTTL = 72 * time.Hour
	}

	return &Config{
		AppName:     v.GetString("APP_NAME"),
		AppEnv:      v.GetString("APP_ENV"),
		AppPort:     v.GetString("PORT"),
		HOST:        v.GetString("HOST"),
		DatabaseURL: v.GetString("DATABASE_URL"),

		JWTSecret:     v.GetString("JWT_SECRET"),
		JWTExpiration: jwtTTL,

		CORSAllowOrigins: v.GetString("CORS_ALLOW_ORIGINS"),
		CORSAllowMethods: v.GetString("CORS_ALLOW_METHODS"),
		CORSAllowHeaders: v.GetString("CORS_ALLOW_HEADERS"),

		CloudinaryCloudName:  v.GetString("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:     v.GetString("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:  v.GetString("CLOUDINARY_API_SECRET"),
		CloudinaryRootFolder: strings.Trim(v.GetString("CLOUDINARY_ROOT_FOLDER"), "/"),

		MaxUploadSize:      v.GetInt64("MAX_UPLOAD_SIZE"),
		MaxImagesPerUpload: v.GetInt("MAX_IMAGES_PER_UPLOAD"),
		MaxListingPrice:    maxPrice,
		PasswordResetTTL:   v.GetDuration("PASSWORD_RESET_TTL"),

		MongoURI:      v.GetString("MONGO_URI"),
		MongoDatabase: v.GetString("MONGO_DATABASE"),
	}
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// BodyLimit is large enough for a full multi-image upload plus form overhead.
func (c *Config) BodyLimit() int {
	return int(c.MaxUploadSize)*c.MaxImagesPerUpload + 1<<20
}
