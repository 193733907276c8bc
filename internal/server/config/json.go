package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/pixo/internal/flagx"
	"github.com/dmitrijs2005/pixo/internal/timex"
	"github.com/tidwall/jsonc"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// strings such as "1h" or integer nanoseconds. Comments and trailing commas
// are allowed.
type JsonConfig struct {
	HTTPAddr              string         `json:"http_addr"`
	GRPCAddr              string         `json:"grpc_addr"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	BcryptCost            int            `json:"bcrypt_cost"`
	StoreTimeout          timex.Duration `json:"store_timeout"`
	FeedPageSize          int            `json:"feed_page_size"`
	SearchDefaultLimit    int            `json:"search_default_limit"`
	SearchMaxLimit        int            `json:"search_max_limit"`
	CORSOrigins           []string       `json:"cors_origins"`
	RequireLikeAuth       *bool          `json:"require_like_auth"`
	LogLevel              string         `json:"log_level"`
	RedisURL              string         `json:"redis_url"`
	ProfileCacheTTL       timex.Duration `json:"profile_cache_ttl"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	S3PublicURL           string         `json:"s3_public_url"`
	PresignExpiry         timex.Duration `json:"presign_expiry"`
}

// parseJson overlays values from the file named by -c/-config. Keys absent
// from the file leave the current values untouched. An unreadable or
// malformed file panics: the server must not start half-configured.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(jsonc.ToJSON(file), c); err != nil {
		panic(err)
	}

	c.applyTo(config)
}

func (c *JsonConfig) applyTo(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.RedisURL, c.RedisURL)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3PublicURL, c.S3PublicURL)

	if c.TokenValidityDuration.Duration > 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.StoreTimeout.Duration > 0 {
		config.StoreTimeout = c.StoreTimeout.Duration
	}
	if c.ProfileCacheTTL.Duration > 0 {
		config.ProfileCacheTTL = c.ProfileCacheTTL.Duration
	}
	if c.PresignExpiry.Duration > 0 {
		config.PresignExpiry = c.PresignExpiry.Duration
	}
	if validBcryptCost(c.BcryptCost) {
		config.BcryptCost = c.BcryptCost
	}
	if c.FeedPageSize > 0 {
		config.FeedPageSize = c.FeedPageSize
	}
	if c.SearchDefaultLimit > 0 {
		config.SearchDefaultLimit = c.SearchDefaultLimit
	}
	if c.SearchMaxLimit > 0 {
		config.SearchMaxLimit = c.SearchMaxLimit
	}
	if len(c.CORSOrigins) > 0 {
		config.CORSOrigins = c.CORSOrigins
	}
	if c.RequireLikeAuth != nil {
		config.RequireLikeAuth = *c.RequireLikeAuth
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
