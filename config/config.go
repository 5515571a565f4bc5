package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend names accepted by StorageSettings.Backend.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendDynamoDB = "dynamodb"
)

// RedisSettings configures the Redis storage backend.
type RedisSettings struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// DynamoDBSettings configures the DynamoDB storage backend.
type DynamoDBSettings struct {
	TableName string `yaml:"table_name"`
	Region    string `yaml:"region"`
}

// StorageSettings selects and configures the storage backend. The backend
// is chosen at startup and not switchable at runtime.
type StorageSettings struct {
	Backend  string           `yaml:"backend"`
	Redis    RedisSettings    `yaml:"redis"`
	DynamoDB DynamoDBSettings `yaml:"dynamodb"`
}

// LogSettings configures the structured logger.
type LogSettings struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// Settings is the assembled configuration of a machine instance.
type Settings struct {
	// BotID is the platform user id of the bot, used to detect addressing
	// and to ignore the bot's own messages.
	BotID string `yaml:"bot_id"`

	// BotName is the bot's display name; "name: text" addresses the bot.
	BotName string `yaml:"bot_name"`

	// Aliases are extra tokens that address the bot, e.g. "!".
	Aliases []string `yaml:"aliases"`

	// LogHandledMessages emits an info line for every handled message.
	LogHandledMessages bool `yaml:"log_handled_messages"`

	// ErrorReply is the best-effort in-channel notice after a handler
	// failure. Empty disables the notice.
	ErrorReply string `yaml:"error_reply"`

	// DrainTimeout bounds the shutdown grace period for in-flight handler
	// invocations.
	DrainTimeout time.Duration `yaml:"drain_timeout"`

	// DisableHelp skips registration of the built-in help plugin.
	DisableHelp bool `yaml:"disable_help"`

	Storage StorageSettings `yaml:"storage"`
	Log     LogSettings     `yaml:"log"`
}

// Default returns the baseline settings: in-memory storage, handled-message
// logging on, a 10 second drain grace period.
func Default() Settings {
	return Settings{
		BotName:            "machine",
		LogHandledMessages: true,
		ErrorReply:         "Something went wrong while handling that, sorry!",
		DrainTimeout:       10 * time.Second,
		Storage: StorageSettings{
			Backend: BackendMemory,
			Redis:   RedisSettings{Addr: "localhost:6379", KeyPrefix: "SM"},
			DynamoDB: DynamoDBSettings{
				TableName: "slackmachine",
			},
		},
		Log: LogSettings{Level: "info", Format: "json"},
	}
}

// Load reads settings from a YAML file, layered over Default. Unknown
// fields are rejected.
func Load(path string) (Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return Settings{}, fmt.Errorf("opening settings file: %w", err)
	}
	defer f.Close()

	s := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Settings{}, fmt.Errorf("parsing settings file %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks cross-field consistency.
func (s Settings) Validate() error {
	switch s.Storage.Backend {
	case BackendMemory, BackendRedis, BackendDynamoDB:
	case "":
		return fmt.Errorf("storage backend must be set")
	default:
		return fmt.Errorf("unknown storage backend %q", s.Storage.Backend)
	}
	if s.Storage.Backend == BackendRedis && s.Storage.Redis.Addr == "" {
		return fmt.Errorf("redis backend requires an address")
	}
	if s.Storage.Backend == BackendDynamoDB && s.Storage.DynamoDB.TableName == "" {
		return fmt.Errorf("dynamodb backend requires a table name")
	}
	switch s.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", s.Log.Level)
	}
	if s.DrainTimeout < 0 {
		return fmt.Errorf("drain timeout must not be negative")
	}
	return nil
}
