package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Fetching / pacing
	RequestBudget  int // hard per-session request ceiling
	MinDelayMs     int // inter-source delay lower bound
	MaxDelayMs     int // inter-source delay upper bound
	MaxRetries     int
	RetryBaseMs    int
	TimeoutSec     int // per-attempt deadline
	BlockCooldownS int // extra sleep after bot-block detection

	// Extraction
	MaxPerSource int
	TitleMinLen  int
	TitleMaxLen  int
	AffiliateTag string
	SourcesFile  string // optional YAML override for source selector packs

	// Quality filters
	MinPrice       float64
	MaxPrice       float64
	PopularityMin  int
	DiscountMin    int
	ResultLimit    int
	ResultHardCap  int

	// Storage
	StoreBackend string // "mongo" or "postgres"
	MongoURI     string
	MongoDB      string
	MongoColl    string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	CSVOutputPath string
	ChromeBin     string
	RenderJS      bool // allow chromedp rendering for sources that ask for it
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		RequestBudget:  getEnvInt("REQUEST_BUDGET", 25),
		MinDelayMs:     getEnvInt("MIN_DELAY_MS", 2000),
		MaxDelayMs:     getEnvInt("MAX_DELAY_MS", 6000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		RetryBaseMs:    getEnvInt("RETRY_BASE_MS", 2000),
		TimeoutSec:     getEnvInt("TIMEOUT_SEC", 15),
		BlockCooldownS: getEnvInt("BLOCK_COOLDOWN_SEC", 60),

		MaxPerSource: getEnvInt("MAX_PER_SOURCE", 30),
		TitleMinLen:  getEnvInt("TITLE_MIN_LEN", 8),
		TitleMaxLen:  getEnvInt("TITLE_MAX_LEN", 120),
		AffiliateTag: getEnv("AFFILIATE_TAG", "dealscout-20"),
		SourcesFile:  getEnv("SOURCES_FILE", ""),

		MinPrice:      getEnvFloat("MIN_PRICE", 10),
		MaxPrice:      getEnvFloat("MAX_PRICE", 5000),
		PopularityMin: getEnvInt("POPULARITY_MIN", 0),
		DiscountMin:   getEnvInt("DISCOUNT_MIN", 10),
		ResultLimit:   getEnvInt("RESULT_LIMIT", 20),
		ResultHardCap: getEnvInt("RESULT_HARD_CAP", 50),

		StoreBackend: getEnv("STORE_BACKEND", "mongo"),
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getEnv("MONGO_DB", "dealscout"),
		MongoColl:    getEnv("MONGO_COLLECTION", "deals"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scout"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scout123"),
		PostgresDB:       getEnv("POSTGRES_DB", "deals_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/top_deals.csv"),
		ChromeBin:     getEnv("CHROME_BIN", ""),
		RenderJS:      getEnvBool("RENDER_JS", false),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
