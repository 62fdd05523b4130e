package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	// DefaultBucket is used for both the archive and the table destination
	// when S3_BUCKET / DEST_BUCKET are unset.
	DefaultBucket = "parcials"

	DefaultBaseURL = "https://casas.mitula.com.co/find?" +
		"operationType=sell&propertyType=mitula_studio_apartment&" +
		"geoId=mitula-CO-poblacion-0000014156&" +
		"text=Bogot%C3%A1%2C++%28Cundinamarca%29"

	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/110.0.0.0 Safari/537.36"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	ArchiveBucket string
	TableBucket   string

	BaseURL   string
	Pages     int
	UserAgent string
	FetchMode string
	ChromeBin string

	StoreMode   string
	FSStoreRoot string
	AWSRegion   string

	PostgresDSN string

	LogLevel string
	HTTPAddr string
}

// fileConfig mirrors the optional YAML overlay named by CONFIG_FILE.
type fileConfig struct {
	ArchiveBucket string `yaml:"archive_bucket"`
	TableBucket   string `yaml:"table_bucket"`
	BaseURL       string `yaml:"base_url"`
	Pages         int    `yaml:"pages"`
	UserAgent     string `yaml:"user_agent"`
	FetchMode     string `yaml:"fetch_mode"`
	StoreMode     string `yaml:"store_mode"`
	FSStoreRoot   string `yaml:"fs_store_root"`
	AWSRegion     string `yaml:"aws_region"`
	PostgresDSN   string `yaml:"postgres_dsn"`
	HTTPAddr      string `yaml:"http_addr"`
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	var file fileConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		f, err := readFile(path)
		if err != nil {
			log.Printf("[config] Ignoring %s: %v", path, err)
		} else {
			file = f
		}
	}

	return &Config{
		ArchiveBucket: getEnv("S3_BUCKET", or(file.ArchiveBucket, DefaultBucket)),
		TableBucket:   getEnv("DEST_BUCKET", or(file.TableBucket, DefaultBucket)),

		BaseURL:   getEnv("BASE_URL", or(file.BaseURL, DefaultBaseURL)),
		Pages:     getEnvInt("PAGES", orInt(file.Pages, 10)),
		UserAgent: getEnv("USER_AGENT", or(file.UserAgent, DefaultUserAgent)),
		FetchMode: getEnv("FETCH_MODE", or(file.FetchMode, "http")),
		ChromeBin: getEnv("CHROME_BIN", ""),

		StoreMode:   getEnv("STORE_MODE", or(file.StoreMode, "s3")),
		FSStoreRoot: getEnv("FS_STORE_ROOT", or(file.FSStoreRoot, "./data")),
		AWSRegion:   getEnv("AWS_REGION", file.AWSRegion),

		PostgresDSN: getEnv("POSTGRES_DSN", file.PostgresDSN),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPAddr: getEnv("HTTP_ADDR", or(file.HTTPAddr, ":8080")),
	}
}

func readFile(path string) (fileConfig, error) {
	var out fileConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("config: decode %q: %w", path, err)
	}
	return out, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt reads a positive integer; anything else yields fallback.
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func or(val, fallback string) string {
	if val != "" {
		return val
	}
	return fallback
}

func orInt(val, fallback int) int {
	if val > 0 {
		return val
	}
	return fallback
}
