package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	ServerPort string

	QuestionServiceURL string
	UserServiceURL     string
	ClientTimeout      time.Duration

	PointsPerCorrect     int
	DefaultQuestionCount int
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "quiz_service"),
		JWTSecret:  getEnv("JWT_SECRET", "secret"),
		ServerPort: getEnv("SERVER_PORT", "8083"),

		QuestionServiceURL: getEnv("QUESTION_SERVICE_URL", "http://localhost:8081"),
		UserServiceURL:     getEnv("USER_SERVICE_URL", "http://localhost:8082"),
		ClientTimeout:      time.Duration(getEnvInt("CLIENT_TIMEOUT_SECONDS", 5)) * time.Second,

		PointsPerCorrect:     getEnvInt("POINTS_PER_CORRECT", 1),
		DefaultQuestionCount: getEnvInt("DEFAULT_QUESTION_COUNT", 10),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
