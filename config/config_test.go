package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	if cfg.AppPort != "8080" || cfg.JWTExpiration != 72*time.Hour {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.MaxListingPrice.String() != "100000" || cfg.MaxImagesPerUpload != 10 {
		t.Errorf("limits = %s / %d", cfg.MaxListingPrice, cfg.MaxImagesPerUpload)
	}
	if cfg.CloudinaryRootFolder != "ecofinds" || cfg.IsProduction() {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("APP_ENV", "Production")
	v.Set("MAX_LISTING_PRICE", "-3")
	v.Set("JWT_EXPIRES_IN", "15m")
	v.Set("CLOUDINARY_ROOT_FOLDER", "/shop/")
	cfg := fromViper(v)

	if !cfg.IsProduction() {
		t.Error("APP_ENV match should ignore case")
	}
	if cfg.MaxListingPrice.String() != "100000" {
		t.Errorf("invalid price cap not replaced: %s", cfg.MaxListingPrice)
	}
	if cfg.JWTExpiration != 15*time.Minute || cfg.CloudinaryRootFolder != "shop" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestBodyLimitFitsMultiUpload(t *testing.T) {
	cfg := &Config{MaxUploadSize: 10 << 20, MaxImagesPerUpload: 10}
	if got := cfg.BodyLimit(); got <= 100<<20 {
		t.Errorf("BodyLimit = %d", got)
	}
}
