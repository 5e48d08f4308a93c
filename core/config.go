package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		Addr                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// AIConfig configures the external generative-text endpoint.
	// The endpoint has no SLA; RequestTimeout bounds every call.
	AIConfig struct {
		BaseURL          string
		APIKey           string
		Model            string
		Temperature      float64
		RequestTimeout   time.Duration
		CapstoneModuleID string
	}

	Config struct {
		Debug                     bool
		TestMode                  bool
		Env                       string
		Build                     string
		AppName                   string
		SecretKey                 []byte
		FrontendBaseURL           string
		DefaultFromEmail          mail.Address
		PasswordResetTimeoutDelta time.Duration
		SendgridApiKey            string
		RollbarToken              string

		Server   ServerConfig
		Database DatabaseConfig
		AI       AIConfig
	}
)

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Njia")
	v.SetDefault("secretKey", "w#5k=y1q&+@0g^vz(n$8m!c4*ju)p7s_e-xh9r2db%tf3la6o")
	v.SetDefault("frontendBaseUrl", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.debugHost", "localhost:4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.name", "njia")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.disableTls", true)

	v.SetDefault("ai.baseUrl", "https://api.openai.com")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.requestTimeout", 15*time.Second)
	// module id awarding the capstone badge; placeholder until content
	// settles on a stable id (see badge rules in core/user)
	v.SetDefault("ai.capstoneModuleId", "capstone-project")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	var testMode bool
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		testMode = true
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Debug:                     v.GetBool("debug"),
		TestMode:                  testMode,
		Env:                       env,
		Build:                     v.GetString("build"),
		AppName:                   v.GetString("appName"),
		SecretKey:                 []byte(v.GetString("secretKey")),
		FrontendBaseURL:           v.GetString("frontendBaseUrl"),
		DefaultFromEmail:          mail.Address{Address: v.GetString("defaultFromEmail")},
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
		SendgridApiKey:            v.GetString("sendgridApiKey"),
		RollbarToken:              v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			Addr:                      v.GetString("server.addr"),
			DebugHost:                 v.GetString("server.debugHost"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Name:          v.GetString("database.name"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTls"),
		},
		AI: AIConfig{
			BaseURL:          v.GetString("ai.baseUrl"),
			APIKey:           v.GetString("ai.apiKey"),
			Model:            v.GetString("ai.model"),
			Temperature:      v.GetFloat64("ai.temperature"),
			RequestTimeout:   v.GetDuration("ai.requestTimeout"),
			CapstoneModuleID: v.GetString("ai.capstoneModuleId"),
		},
	}
}
