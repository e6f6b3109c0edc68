// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jason-s-yu/pinaki/internal/bot"
	"github.com/jason-s-yu/pinaki/internal/game"
	"github.com/sirupsen/logrus"
)

// Config is the process-wide server configuration read from the environment.
type Config struct {
	Port           string
	Env            string
	AllowedOrigins []string
	LogLevel       logrus.Level
	RedisAddr      string
	RedisDB        int
	TicketTTL      time.Duration
	// Raw ed25519 key files for seat tickets. Keys are generated at startup
	// unless both are set.
	TicketPrivateKey string
	TicketPublicKey  string
	BotStrategy      bot.Kind
	// Rules are the defaults for rooms created without overrides.
	Rules game.RoomRules
}

// TicketKeyFiles reports whether both ticket key paths are configured.
func (c Config) TicketKeyFiles() bool { return c.TicketPrivateKey != "" && c.TicketPublicKey != "" }

// Production reports whether PINAKI_ENV is "production".
func (c Config) Production() bool { return c.Env == "production" }

// Load reads the configuration. Malformed values fall back to their defaults.
func Load() Config {
	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		Env:              strings.ToLower(getEnv("PINAKI_ENV", "development")),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		TicketTTL:        time.Duration(getEnvInt("TICKET_EXPIRE_TIME", 24)) * time.Hour,
		TicketPrivateKey: getEnv("TICKET_PRIVATE_KEY", ""),
		TicketPublicKey:  getEnv("TICKET_PUBLIC_KEY", ""),
		BotStrategy:      bot.Kind(getEnv("BOT_STRATEGY", string(bot.KindHeuristic))),
		Rules:            game.DefaultRoomRules(),
	}

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "debug"))
	if err != nil {
		level = logrus.DebugLevel
	}
	cfg.LogLevel = level

	if cfg.Production() {
		for _, o := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{"https://*", "http://*"}
	}

	// route through Update so env overrides get the same validation as room rules
	overrides := map[string]interface{}{}
	if v := getEnvInt("MIN_BID", 0); v > 0 {
		overrides["minBid"] = v
	}
	if v := getEnvInt("TARGET_SCORE", 0); v > 0 {
		overrides["targetScore"] = v
	}
	if err := cfg.Rules.Update(overrides); err != nil {
		logrus.Warnf("config: ignoring rule overrides: %v", err)
		cfg.Rules = game.DefaultRoomRules()
	}
	return cfg
}

// getEnv retrieves an environment variable's value or returns a default.
func getEnv(key, defVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defVal
}

// getEnvInt retrieves an integer value from an environment variable or returns a default value.
func getEnvInt(key string, defVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defVal
	}
	return i
}
