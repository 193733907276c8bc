package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// loadDotEnv reads .env into the process environment without overriding
// variables that are already set. A missing file is not an error.
var loadDotEnv = func() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// parseEnv overlays values from environment variables. PORT is honoured for
// platforms that only hand out a port number.
func parseEnv(config *Config) {
	if err := loadDotEnv(); err != nil {
		panic(err)
	}

	if port, ok := os.LookupEnv("PORT"); ok && port != "" {
		config.HTTPAddr = ":" + port
	}
	envString("HTTP_ADDR", &config.HTTPAddr)
	envString("GRPC_ADDR", &config.GRPCAddr)
	envString("DATABASE_DSN", &config.DatabaseDSN)
	envString("JWT_SECRET", &config.SecretKey)
	envString("LOG_LEVEL", &config.LogLevel)
	envString("REDIS_URL", &config.RedisURL)
	envString("S3_ROOT_USER", &config.S3RootUser)
	envString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	envString("S3_BUCKET", &config.S3Bucket)
	envString("S3_REGION", &config.S3Region)
	envString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	envString("S3_PUBLIC_URL", &config.S3PublicURL)

	envDuration("TOKEN_TTL", &config.TokenValidityDuration)
	envDuration("STORE_TIMEOUT", &config.StoreTimeout)
	envDuration("PROFILE_CACHE_TTL", &config.ProfileCacheTTL)
	envDuration("PRESIGN_EXPIRY", &config.PresignExpiry)

	envInt("BCRYPT_COST", &config.BcryptCost, validBcryptCost)
	envInt("FEED_PAGE_SIZE", &config.FeedPageSize, positive)

	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok && v != "" {
		config.CORSOrigins = splitList(v)
	}
	if v, ok := os.LookupEnv("REQUIRE_LIKE_AUTH"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		config.RequireLikeAuth = b
	}
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envDuration(key string, dst *time.Duration) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}

func envInt(key string, dst *int, valid func(int) bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(err)
	}
	if !valid(n) {
		panic(fmt.Sprintf("%s: value %d out of range", key, n))
	}
	*dst = n
}

func positive(n int) bool { return n > 0 }

func validBcryptCost(n int) bool { return n >= bcrypt.MinCost && n <= bcrypt.MaxCost }

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
