package config

import "os"

type Config struct {
	Token       string
	GuildID     string
	DatabaseDSN string
	RedisURL    string
	HTTPAddr    string
}

// Load reads configuration from the environment. GuildID scopes command
// registration to one guild for fast iteration; empty registers
// commands globally. RedisURL and HTTPAddr are optional; leaving them
// unset disables the event stream and the HTTP surface respectively.
func Load() Config {
	return Config{
		Token:       os.Getenv("DISCORD_TOKEN"),
		GuildID:     os.Getenv("GUILD_ID"),
		DatabaseDSN: getenv("DATABASE_DSN", "bot.db"),
		RedisURL:    os.Getenv("REDIS_URL"),
		HTTPAddr:    os.Getenv("HTTP_ADDR"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
