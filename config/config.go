package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort     int
	RequestTimeout time.Duration
	Log            LogConfig
	Database       DatabaseConfig
	Cognito        CognitoConfig
	MQ             MQConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// CognitoConfig holds the user pool settings of the identity provider.
type CognitoConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UserPoolID      string
	ClientID        string
	ClientSecret    string
	// Endpoint overrides the service endpoint, e.g. for a local emulator.
	Endpoint string
}

// MQConfig selects the broker used for todo events. An empty Backend
// disables publishing.
type MQConfig struct {
	Backend   string
	TodoTopic string
	RabbitMQ  RabbitMQConfig
	PubSub    PubSubConfig
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

type PubSubConfig struct {
	ProjectID       string
	CredentialsFile string
}

const (
	MQBackendNone     = ""
	MQBackendRabbitMQ = "rabbitmq"
	MQBackendPubSub   = "pubsub"
)

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "tasklane"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "tasklane_db"),
		UseSSL:   getEnvBool("DB_USE_SSL", false),
	}

	cognitoConfig := CognitoConfig{
		Region:          getEnv("AWS_REGION", ""),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		UserPoolID:      getEnv("COGNITO_USER_POOL_ID", ""),
		ClientID:        getEnv("COGNITO_CLIENT_ID", ""),
		ClientSecret:    getEnv("COGNITO_CLIENT_SECRET", ""),
		Endpoint:        getEnv("COGNITO_ENDPOINT", ""),
	}

	mqConfig := MQConfig{
		Backend:   strings.ToLower(getEnv("MQ_BACKEND", MQBackendNone)),
		TodoTopic: getEnv("MQ_TODO_TOPIC", "todo-events"),
		RabbitMQ: RabbitMQConfig{
			URL:      getEnv("RABBITMQ_URL", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "tasklane"),
		},
		PubSub: PubSubConfig{
			ProjectID:       getEnv("PUBSUB_PROJECT_ID", ""),
			CredentialsFile: getEnv("PUBSUB_CREDENTIALS_FILE", ""),
		},
	}

	return Config{
		ServerPort:     getEnvInt("SERVER_PORT", 3000),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 60*time.Second),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Database: dbConfig,
		Cognito:  cognitoConfig,
		MQ:       mqConfig,
	}
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	var missing []string
	required := []struct {
		key   string
		value string
	}{
		{"AWS_REGION", c.Cognito.Region},
		{"COGNITO_USER_POOL_ID", c.Cognito.UserPoolID},
		{"COGNITO_CLIENT_ID", c.Cognito.ClientID},
		{"COGNITO_CLIENT_SECRET", c.Cognito.ClientSecret},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("identity provider is not configured: missing %s", strings.Join(missing, ", "))
	}

	switch c.MQ.Backend {
	case MQBackendNone:
	case MQBackendRabbitMQ:
		if strings.TrimSpace(c.MQ.RabbitMQ.URL) == "" {
			return errors.New("RABBITMQ_URL is required when MQ_BACKEND=rabbitmq")
		}
	case MQBackendPubSub:
		if strings.TrimSpace(c.MQ.PubSub.ProjectID) == "" {
			return errors.New("PUBSUB_PROJECT_ID is required when MQ_BACKEND=pubsub")
		}
	default:
		return fmt.Errorf("unknown MQ_BACKEND %q", c.MQ.Backend)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := strconv.ParseBool(strings.TrimSpace(valueStr))
		if err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := time.ParseDuration(strings.TrimSpace(valueStr))
		if err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}
