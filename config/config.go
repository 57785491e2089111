package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emrahsandernet/kasarcim/internal/database"

	"go.uber.org/zap"
)

type Config struct {
	Port        string
	FrontendURL string
	CORSOrigins []string
	DB          DB
	Redis       Redis
	JWT         JWT
	Notify      Notify
}

type DB struct {
	database.Config
}

type Redis struct {
	Enabled    bool
	Addr       string
	Password   string
	DB         int
	TTLSeconds int
}

type JWT struct {
	Secret    string
	Issuer    string
	Audience  string
	AccessExp time.Duration
}

// Notify selects how email notifications leave the API process.
// Transport is one of kafka, amqp or none.
type Notify struct {
	Transport    string
	KafkaBrokers []string
	KafkaTopic   string
	AMQPURL      string
	AMQPExchange string
}

type Notifier struct {
	Notify
	KafkaGroupID string
	AMQPQueue    string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMTPSSL      bool

	TMPLDir string
}

func Load(log *zap.Logger) *Config {
	return &Config{
		Port:        getEnv("APP_PORT", log),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", log), "/"),
		CORSOrigins: splitAndTrim(getEnvDefault("CORS_ORIGINS", "*")),
		DB: DB{
			Config: database.Config{
				Driver:   getEnvDefault("DB_DRIVER", database.DriverPostgres),
				Host:     getEnv("DB_HOST", log),
				Port:     getEnv("DB_PORT", log),
				User:     getEnv("DB_USER", log),
				Password: getEnv("DB_PASSWORD", log),
				Name:     getEnv("DB_NAME", log),
				SSLMode:  getEnvDefault("DB_SSLMODE", "disable"),
			},
		},
		Redis: Redis{
			Enabled:    getEnvDefault("REDIS_ENABLED", "false") == "true",
			Addr:       getEnvDefault("REDIS_ADDR", "localhost:6379"),
			Password:   getEnvDefault("REDIS_PASSWORD", ""),
			DB:         atoiDefault(getEnvDefault("REDIS_DB", "0"), 0),
			TTLSeconds: atoiDefault(getEnvDefault("CACHE_TTL_SECONDS", "60"), 60),
		},
		JWT: JWT{
			Secret:    getEnv("JWT_SECRET", log),
			Issuer:    getEnvDefault("JWT_ISSUER", "kasarcim"),
			Audience:  getEnvDefault("JWT_AUDIENCE", "kasarcim-web"),
			AccessExp: parseDurationWithDays(getEnvDefault("ACCESS_EXP", "7d")),
		},
		Notify: loadNotify(log),
	}
}

func LoadNotifier(log *zap.Logger) *Notifier {
	return &Notifier{
		Notify:       loadNotify(log),
		KafkaGroupID: getEnvDefault("KAFKA_GROUP_ID", "kasarcim-notifier"),
		AMQPQueue:    getEnvDefault("AMQP_QUEUE", "kasarcim.email"),
		SMTPHost:     getEnv("SMTP_HOST", log),
		SMTPPort:     getEnvInt("SMTP_PORT", log),
		SMTPUser:     getEnv("SMTP_USER", log),
		SMTPPassword: getEnv("SMTP_PASSWORD", log),
		SMTPFrom:     getEnv("SMTP_FROM", log),
		SMTPSSL:      getEnvDefault("SMTP_SSL", "true") == "true",
		TMPLDir:      getEnvDefault("TMPL_DIR", "templates"),
	}
}

func loadNotify(log *zap.Logger) Notify {
	n := Notify{
		Transport:    strings.ToLower(getEnvDefault("NOTIFY_TRANSPORT", "kafka")),
		KafkaBrokers: splitAndTrim(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getEnvDefault("KAFKA_TOPIC_EMAIL", "kasarcim.email"),
		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getEnvDefault("AMQP_EXCHANGE", "kasarcim.notifications"),
	}
	switch n.Transport {
	case "kafka":
		if len(n.KafkaBrokers) == 0 {
			log.Error("KAFKA_BROKERS is empty for kafka transport")
			panic("missing required environment variable: KAFKA_BROKERS")
		}
	case "amqp":
		if n.AMQPURL == "" {
			log.Error("AMQP_URL is empty for amqp transport")
			panic("missing required environment variable: AMQP_URL")
		}
	case "none":
	default:
		log.Error("unknown notification transport", zap.String("transport", n.Transport))
		panic("invalid NOTIFY_TRANSPORT: " + n.Transport)
	}
	return n
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("required environment variable is not set", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func getEnvDefault(key, def string) string {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, log *zap.Logger) int {
	valStr := getEnv(key, log)
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Error("environment variable is not an int", zap.String("key", key), zap.Error(err))
		panic("invalid int value for environment variable: " + key)
	}
	return val
}

// parseDurationWithDays accepts Go durations plus a "d" suffix ("7d").
func parseDurationWithDays(s string) time.Duration {
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0
		}
		return time.Duration(days) * 24 * time.Hour
	}

	duration, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return duration
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
