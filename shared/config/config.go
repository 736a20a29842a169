// shared/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
)

// CommonConfig holds infrastructure details used by MULTIPLE services.
// Every field comes from the environment variable of the same name.
type CommonConfig struct {
	//Database (PostgreSQL) config
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string
	DB_HOST     string
	DB_PORT     string
	//Kafka config
	KAFKA_TOPIC  string
	KAFKA_BROKER string
	//RabbitMQ config
	RABBITMQ_USER     string
	RABBITMQ_PASSWORD string
	RABBITMQ_HOST     string
	RABBITMQ_PORT     string
}

// LoadCommonConfig returns the shared infrastructure config read from the process environment.
func LoadCommonConfig() *CommonConfig {
	return LoadCommonConfigFrom(os.Getenv)
}

// LoadCommonConfigFrom reads the same variables through getenv.
func LoadCommonConfigFrom(getenv func(string) string) *CommonConfig {
	return &CommonConfig{
		DB_USER:     getenv("DB_USER"),
		DB_PASSWORD: getenv("DB_PASSWORD"),
		DB_HOST:     getenv("DB_HOST"),
		DB_PORT:     getenv("DB_PORT"),
		DB_NAME:     getenv("DB_NAME"),

		KAFKA_TOPIC:  getenv("KAFKA_TOPIC"),
		KAFKA_BROKER: getenv("KAFKA_BROKER"),

		RABBITMQ_USER:     getenv("RABBITMQ_USER"),
		RABBITMQ_PASSWORD: getenv("RABBITMQ_PASSWORD"),
		RABBITMQ_HOST:     getenv("RABBITMQ_HOST"),
		RABBITMQ_PORT:     getenv("RABBITMQ_PORT"),
	}
}

// GetDBURL formats the config into a PostgreSQL connection string
func (c *CommonConfig) GetDBURL() string {
	port := c.DB_PORT
	if port == "" {
		port = "5432"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB_USER, c.DB_PASSWORD),
		Host:     fmt.Sprintf("%s:%s", c.DB_HOST, port),
		Path:     "/" + c.DB_NAME,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// GetRabbitMQURL formats the config into a RabbitMQ connection string
func (c *CommonConfig) GetRabbitMQURL() string {
	//default standard host and port when missing
	host := c.RABBITMQ_HOST
	if host == "" {
		host = "localhost"
	}
	port := c.RABBITMQ_PORT
	if port == "" {
		port = "5672"
	}
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(c.RABBITMQ_USER, c.RABBITMQ_PASSWORD),
		Host:   fmt.Sprintf("%s:%s", host, port),
		Path:   "/",
	}
	return u.String()
}

// KafkaEnabled reports whether both a broker and a topic are configured.
func (c *CommonConfig) KafkaEnabled() bool {
	return c.KAFKA_BROKER != "" && c.KAFKA_TOPIC != ""
}

// RabbitMQEnabled reports whether a RabbitMQ host is configured.
func (c *CommonConfig) RabbitMQEnabled() bool {
	return c.RABBITMQ_HOST != ""
}

// PostgresEnabled reports whether enough is set to open a database connection.
func (c *CommonConfig) PostgresEnabled() bool {
	return c.DB_HOST != "" && c.DB_NAME != ""
}
