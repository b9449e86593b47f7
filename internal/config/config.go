package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	DBURL          string
	RedisAddr      string
	MQTTBroker     string
	MQTTClientID   string
	JWTSecret      string
	HTTPPort       int
	MDNSLocalName  string
	TickInterval   time.Duration
	CooldownWindow time.Duration

	RemoteAccessEnabled bool
	RemoteAccessWS      string
	RemoteAccessRetry   time.Duration
	AgentID             string
}

// LoadConfig reads configuration from .env and the environment
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("CONFIG: No .env file loaded: %v", err)
	}

	viper.AutomaticEnv()
	viper.SetDefault("HTTP_PORT", 5069)
	viper.SetDefault("MQTT_CLIENT_ID", "homepanel-backend")
	viper.SetDefault("MDNS_LOCAL_NAME", "homepanel.local")
	viper.SetDefault("TICK_INTERVAL", "5s")
	viper.SetDefault("COOLDOWN_WINDOW", "5s")
	viper.SetDefault("REMOTE_ACCESS_RETRY", "2s")

	cfg := &Config{
		DBURL:          viper.GetString("DB_URL"),
		RedisAddr:      viper.GetString("REDIS_ADDR"),
		MQTTBroker:     viper.GetString("MQTT_BROKER"),
		MQTTClientID:   viper.GetString("MQTT_CLIENT_ID"),
		JWTSecret:      viper.GetString("JWT_SECRET"),
		HTTPPort:       viper.GetInt("HTTP_PORT"),
		MDNSLocalName:  viper.GetString("MDNS_LOCAL_NAME"),
		TickInterval:   viper.GetDuration("TICK_INTERVAL"),
		CooldownWindow: viper.GetDuration("COOLDOWN_WINDOW"),

		RemoteAccessEnabled: viper.GetBool("REMOTE_ACCESS_ENABLED"),
		RemoteAccessWS:      viper.GetString("REMOTE_ACCESS_WS"),
		RemoteAccessRetry:   viper.GetDuration("REMOTE_ACCESS_RETRY"),
		AgentID:             viper.GetString("AGENT_ID"),
	}
	return cfg, nil
}
