package config

import (
	"github.com/joho/godotenv"
	"os"
)

type Config struct {
	MongoURI          string
	MongoDB           string
	RedisURL          string
	ServerPort        string
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string
}

// LoadConfig подгружает переменные окружения из .env
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		return nil, err
	}

	return &Config{
		MongoURI:          os.Getenv("MONGO_URI"),
		MongoDB:           os.Getenv("MONGO_DB"),
		RedisURL:          os.Getenv("REDIS_URL"),
		ServerPort:        os.Getenv("SERVER_PORT"),
		TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber: os.Getenv("TWILIO_PHONE_NUMBER"),
	}, nil
}
