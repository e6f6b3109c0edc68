package config

import (
	"testing"
	"time"

	"github.com/jason-s-yu/pinaki/internal/bot"
	"github.com/jason-s-yu/pinaki/internal/game"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "PINAKI_ENV", "ALLOWED_ORIGINS", "LOG_LEVEL", "REDIS_ADDR", "REDIS_DB", "TICKET_EXPIRE_TIME", "MIN_BID", "TARGET_SCORE", "BOT_STRATEGY", "TICKET_PRIVATE_KEY", "TICKET_PUBLIC_KEY"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.Production())
	assert.Equal(t, []string{"https://*", "http://*"}, cfg.AllowedOrigins)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 24*time.Hour, cfg.TicketTTL)
	assert.False(t, cfg.TicketKeyFiles())
	assert.Equal(t, bot.KindHeuristic, cfg.BotStrategy)
	assert.Equal(t, game.DefaultRoomRules(), cfg.Rules)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PINAKI_ENV", "Production")
	t.Setenv("ALLOWED_ORIGINS", "https://pinaki.example, https://www.pinaki.example,")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("TICKET_EXPIRE_TIME", "1")
	t.Setenv("MIN_BID", "200")
	t.Setenv("TARGET_SCORE", "1000")
	t.Setenv("BOT_STRATEGY", "random")
	t.Setenv("TICKET_PRIVATE_KEY", "/etc/pinaki/ticket.key")
	t.Setenv("TICKET_PUBLIC_KEY", "/etc/pinaki/ticket.pub")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.Production())
	assert.Equal(t, []string{"https://pinaki.example", "https://www.pinaki.example"}, cfg.AllowedOrigins)
	assert.Equal(t, logrus.WarnLevel, cfg.LogLevel)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, time.Hour, cfg.TicketTTL)
	assert.Equal(t, 200, cfg.Rules.MinBid)
	assert.Equal(t, 1000, cfg.Rules.TargetScore)
	assert.Equal(t, bot.KindRandom, cfg.BotStrategy)
	assert.True(t, cfg.TicketKeyFiles())
	assert.Equal(t, "/etc/pinaki/ticket.key", cfg.TicketPrivateKey)
}

func TestTicketKeyFilesNeedsBoth(t *testing.T) {
	t.Setenv("TICKET_PRIVATE_KEY", "/etc/pinaki/ticket.key")
	t.Setenv("TICKET_PUBLIC_KEY", "")
	assert.False(t, Load().TicketKeyFiles())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	t.Setenv("REDIS_DB", "two")
	t.Setenv("MIN_BID", "155")

	cfg := Load()
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, game.DefaultMinBid, cfg.Rules.MinBid)
}
