package config

import (
	"os"
	"strconv"
	"strings"
)

// Config 应用配置，统一从环境变量读取
type Config struct {
	Addr string

	MySQLDSN string

	JWTAccessSecret  string
	JWTRefreshSecret string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string
	KafkaTopic   string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// 业务上限，超出返回 limit_exceeded
	MaxManagedCommunities int
	MaxGroupsPerCommunity int
}

func Load() *Config {
	return &Config{
		Addr:     getEnv("ADDR", ":8080"),
		MySQLDSN: getEnv("MYSQL_DSN", "user:password@tcp(127.0.0.1:3306)/campushub?charset=utf8mb4&parseTime=True"),

		JWTAccessSecret:  getEnv("JWT_ACCESS_SECRET", ""),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		KafkaBrokers: strings.Split(getEnv("KAFKA_BROKERS", "127.0.0.1:9092"), ","),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "campushub.notifications"),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.example.com"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "NoReply <no-reply@example.com>"),

		MaxManagedCommunities: getEnvInt("MAX_MANAGED_COMMUNITIES", 5),
		MaxGroupsPerCommunity: getEnvInt("MAX_GROUPS_PER_COMMUNITY", 20),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
