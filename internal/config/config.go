package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type SMTPConfig struct {
	Host          string
	Port          string
	Username      string
	Password      string
	TLSMode       string // none | starttls | tls
	SkipVerifyTLS bool
}

type StorageConfig struct {
	Driver          string // local | s3
	UploadDir       string
	UploadURLPrefix string
	S3Region        string
	S3Bucket        string
	S3Prefix        string
	S3PublicBaseURL string
}

type Config struct {
	Port    string
	DBDSN   string
	LogFile string

	JWTSecret string
	TokenTTL  time.Duration

	AdminVerificationCode string
	OwnerVerificationCode string

	StrictOrderTransitions bool

	Storage StorageConfig

	MailDriver   string // log | smtp
	MailFrom     string
	MailFromName string
	AdminNotify  string
	SMTP         SMTPConfig

	CORSOrigins string
}

// Load reads the environment, after merging an optional .env file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env not loaded: %v", err)
	}

	cfg := Config{
		Port:    env("PORT", "5000"),
		DBDSN:   env("DB_DSN", "kicks.db"),
		LogFile: env("LOG_FILE", "./kicks.log"),

		JWTSecret: env("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:  envDuration("TOKEN_TTL", 7*24*time.Hour),

		AdminVerificationCode: env("ADMIN_VERIFICATION_CODE", ""),
		OwnerVerificationCode: env("OWNER_VERIFICATION_CODE", ""),

		StrictOrderTransitions: envBool("ORDER_STRICT_TRANSITIONS", false),

		Storage: StorageConfig{
			Driver:          env("STORAGE_DRIVER", "local"),
			UploadDir:       env("UPLOAD_DIR", "./uploads"),
			UploadURLPrefix: env("UPLOAD_URL_PREFIX", "/uploads"),
			S3Region:        env("S3_REGION", ""),
			S3Bucket:        env("S3_BUCKET", ""),
			S3Prefix:        env("S3_PREFIX", "kicks/products"),
			S3PublicBaseURL: env("S3_PUBLIC_BASE_URL", ""),
		},

		MailDriver:   env("MAIL_DRIVER", "log"),
		MailFrom:     env("MAIL_FROM", "no-reply@kicksdontstink.test"),
		MailFromName: env("MAIL_FROM_NAME", "Kicks Don't Stink"),
		AdminNotify:  env("ADMIN_NOTIFY_EMAIL", ""),
		SMTP: SMTPConfig{
			Host:          env("SMTP_HOST", "localhost"),
			Port:          env("SMTP_PORT", "1025"),
			Username:      env("SMTP_USERNAME", ""),
			Password:      env("SMTP_PASSWORD", ""),
			TLSMode:       strings.ToLower(env("SMTP_TLS_MODE", "none")),
			SkipVerifyTLS: envBool("SMTP_SKIP_VERIFY", false),
		},

		CORSOrigins: env("CORS_ORIGINS", "http://localhost:5173,http://localhost:5174"),
	}

	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s STORAGE=%s MAIL=%s STRICT_ORDERS=%t",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.Storage.Driver, cfg.MailDriver, cfg.StrictOrderTransitions)
	if cfg.AdminVerificationCode == "" || cfg.OwnerVerificationCode == "" {
		log.Printf("[config] admin/owner verification code unset; admin registration is disabled for that role")
	}
	return cfg
}

func env(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	v, err := strconv.ParseBool(env(k, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return v
}

func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(env(k, def.String()))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
