package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	DatabaseDSN string
	BaseURL     string // allowed CORS origin (dashboard)
	AppURL      string // public app URL used in email links

	AccessSecret string

	KafkaBroker   string
	KafkaTopic    string
	KafkaGroupID  string
	KafkaUsername string
	KafkaPassword string

	CloudinaryURL string

	PaymentAPIKey  string
	PaymentAPIBase string

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	MailFromName string

	// Resending a verification email un-verifies the account. Set
	// MARK_UNVERIFIED_ON_RESEND=false to keep the verified flag untouched
	// on resend.
	MarkUnverifiedOnResend bool
}

func LoadConfig() Config {
	if os.Getenv("ENV") != "prod" {
		if err := godotenv.Overload(); err != nil {
			log.Println("Warning: .env not loaded:", err)
		}
	}

	markUnverified := true
	if v := os.Getenv("MARK_UNVERIFIED_ON_RESEND"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			markUnverified = b
		}
	}

	return Config{
		ServerPort:             os.Getenv("SERVER_PORT"),
		DatabaseDSN:            os.Getenv("DATABASE_DSN"),
		BaseURL:                os.Getenv("BASE_URL"),
		AppURL:                 os.Getenv("APP_URL"),
		AccessSecret:           os.Getenv("ACCESS_SECRET"),
		KafkaBroker:            os.Getenv("KAFKA_BROKER"),
		KafkaTopic:             os.Getenv("KAFKA_TOPIC"),
		KafkaGroupID:           os.Getenv("KAFKA_GROUP_ID"),
		KafkaUsername:          os.Getenv("KAFKA_USERNAME"),
		KafkaPassword:          os.Getenv("KAFKA_PASSWORD"),
		CloudinaryURL:          os.Getenv("CLOUDINARY_URL"),
		PaymentAPIKey:          os.Getenv("PAYMENT_API_KEY"),
		PaymentAPIBase:         os.Getenv("PAYMENT_API_BASE"),
		SMTPHost:               os.Getenv("SMTP_HOST"),
		SMTPPort:               os.Getenv("SMTP_PORT"),
		SMTPUser:               os.Getenv("SMTP_USER"),
		SMTPPassword:           os.Getenv("SMTP_PASSWORD"),
		MailFrom:               os.Getenv("MAIL_FROM"),
		MailFromName:           os.Getenv("MAIL_FROM_NAME"),
		MarkUnverifiedOnResend: markUnverified,
	}
}
