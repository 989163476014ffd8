package global

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type HTTPConfig struct {
	Addr string `yaml:"addr"` // listen address, e.g. ":8080"
}

type MongoConfig struct {
	Uri         string   `yaml:"uri"`
	Address     []string `yaml:"address"`
	Database    string   `yaml:"database"`
	Username    string   `yaml:"username"`
	Password    string   `yaml:"password"`
	AuthSource  string   `yaml:"auth_source"`
	MaxPoolSize int      `yaml:"max_pool_size"`
	MaxRetry    int      `yaml:"max_retry"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Alg    string        `yaml:"alg"`
	TTL    time.Duration `yaml:"ttl"`
}

type GatewayConfig struct {
	NodeID        int64 `yaml:"node_id"`         // snowflake node, 0~1023
	SendQueueSize int   `yaml:"send_queue_size"` // per-connection outbound buffer
	ReadLimit     int64 `yaml:"read_limit"`      // max inbound frame bytes
}

type ChatConfig struct {
	// ReactionRequiresMembership gates whether toggling a reaction
	// re-checks channel membership. Off matches the original behavior:
	// a user removed from a channel can still react to messages they can
	// address by id.
	ReactionRequiresMembership bool `yaml:"reaction_requires_membership"`
}

type AppConfig struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Mongo   MongoConfig   `yaml:"mongo"`
	Redis   RedisConfig   `yaml:"redis"`
	JWT     JWTConfig     `yaml:"jwt"`
	Gateway GatewayConfig `yaml:"gateway"`
	Chat    ChatConfig    `yaml:"chat"`
}

func Default() AppConfig {
	return AppConfig{
		HTTP: HTTPConfig{Addr: ":8080"},
		Mongo: MongoConfig{
			Address:     []string{"127.0.0.1:27017"},
			Database:    "connectify",
			MaxPoolSize: 100,
			MaxRetry:    3,
		},
		Redis: RedisConfig{Addr: "127.0.0.1:6379", PoolSize: 50},
		JWT:   JWTConfig{Secret: "dev-secret-change-me", Alg: "HS256", TTL: 2 * time.Hour},
		Gateway: GatewayConfig{
			NodeID:        1,
			SendQueueSize: 256,
			ReadLimit:     1 << 20, // 1MB
		},
		Chat: ChatConfig{ReactionRequiresMembership: false},
	}
}

// Load reads the YAML config at path (CONNECTIFY_CONFIG wins over the
// argument, then "config.yaml"). A missing file is not an error: defaults
// apply, which is how tests and local dev run.
func Load(path string) (AppConfig, error) {
	cfg := Default()

	if env := os.Getenv("CONNECTIFY_CONFIG"); env != "" {
		path = env
	}
	if path == "" {
		path = "config.yaml"
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
