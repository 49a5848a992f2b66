package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	DBDriver string // sqlite|postgres|memory
	DBDSN    string

	BankPath string

	OracleDir     string
	OracleTimeout time.Duration
	OracleWorkers int
	OracleWarmup  bool   // resolve every dynamic question at startup
	RedisAddr     string // empty keeps oracle labels in process memory
	RedisTTL      time.Duration

	BlobBasePath string

	AuthHMACSecret string
	TokenTTL       time.Duration

	EnableGuestAuth bool

	AdminUser     string
	AdminPassHash string // bcrypt
	Users         []User

	CORSOrigins []string

	LogLevel  string
	LogFormat string // json|text
}

// User is a local account. Hash is a bcrypt hash.
type User struct {
	Name string
	Role string
	Hash string
}

// Load reads a .env file when one exists, then the environment.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	return FromEnv(), nil
}

func FromEnv() Config {
	admin := User{
		Name: envOr("ADMIN_USER", "admin"),
		Role: "teacher",
		Hash: envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),
	}
	return Config{
		HTTPAddr:        envOr("HTTP_ADDR", ":8080"),
		DBDriver:        envOr("DB_DRIVER", "sqlite"),
		DBDSN:           envOr("DB_DSN", "file:examgrader.db?_pragma=busy_timeout(5000)"),
		BankPath:        envOr("BANK_PATH", "./data/questions.json"),
		OracleDir:       envOr("ORACLE_DIR", "./data/algorithms"),
		OracleTimeout:   envDuration("ORACLE_TIMEOUT", 20*time.Second),
		OracleWorkers:   envInt("ORACLE_WORKERS", 2),
		OracleWarmup:    envBool("ORACLE_WARMUP", false),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisTTL:        envDuration("REDIS_TTL", 24*time.Hour),
		BlobBasePath:    envOr("BLOB_BASE_PATH", "./data/reports"),
		AuthHMACSecret:  envOr("AUTH_HMAC_SECRET", "dev-secret-change-me"),
		TokenTTL:        envDuration("TOKEN_TTL", 8*time.Hour),
		EnableGuestAuth: envBool("ENABLE_GUEST_AUTH", false),
		AdminUser:       admin.Name,
		AdminPassHash:   admin.Hash,
		Users:           append([]User{admin}, usersOr("USERS")...),
		CORSOrigins:     csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		LogLevel:        envOr("LOG_LEVEL", "info"),
		LogFormat:       envOr("LOG_FORMAT", "json"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// usersOr parses "name:role:hash" entries separated by commas. Malformed
// entries are skipped.
func usersOr(k string) []User {
	var out []User
	for _, entry := range csvOr(k, "") {
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
			continue
		}
		out = append(out, User{Name: parts[0], Role: parts[1], Hash: parts[2]})
	}
	return out
}
