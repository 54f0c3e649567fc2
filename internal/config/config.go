package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config agrupa toda la configuración del proceso, cargada desde env vars.
type Config struct {
	App  App
	HTTP HTTP
	DB   DB
	JWT  JWT
	SMTP SMTP
}

type App struct {
	Name    string `env:"APP_NAME" envDefault:"vet-clinic-api"`
	Version string `env:"APP_VERSION" envDefault:"1.0.0"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type HTTP struct {
	Port string `env:"PORT" envDefault:"8080"`

	// Orígenes permitidos para CORS, separados por coma.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
}

type DB struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"gdcv"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

type JWT struct {
	Secret        string `env:"JWT_SECRET,required"`
	Issuer        string `env:"JWT_ISSUER" envDefault:"vet-clinic-api"`
	ExpireMinutes int    `env:"JWT_EXPIRE_MINUTES" envDefault:"30"`
}

// Expiry devuelve la vigencia del token como duración.
func (j JWT) Expiry() time.Duration {
	return time.Duration(j.ExpireMinutes) * time.Minute
}

type SMTP struct {
	Host     string `env:"SMTP_HOST"`
	Port     string `env:"SMTP_PORT" envDefault:"587"`
	User     string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
	FromName string `env:"SMTP_FROM_NAME" envDefault:"Clínica Veterinaria"`

	// Correos que reciben alertas operativas (stock bajo).
	AlertRecipients []string `env:"ALERT_EMAILS" envSeparator:","`
}

// Load parsea la configuración desde variables de entorno.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("error getting env configs: %w", err)
	}
	return cfg, nil
}

// DSN arma la cadena de conexión para el driver pgx (database/sql).
func (d DB) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Configured indica si hay un servidor SMTP real configurado.
// Sin host, el proceso usa el sender de log (modo dev).
func (s SMTP) Configured() bool {
	return strings.TrimSpace(s.Host) != "" && strings.TrimSpace(s.From) != ""
}

// Addr devuelve host:port para net/smtp.
func (s SMTP) Addr() string {
	return s.Host + ":" + s.Port
}
