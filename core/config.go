package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	// Config holds the process-wide configuration. It is loaded once at startup
	// and passed around by reference; nothing mutates it afterwards.
	Config struct {
		Debug     bool
		TestMode  bool
		AppName   string
		Env       string // DEV (default), TEST, QA, PROD
		Build     string
		SecretKey []byte

		RollbarToken string

		JWTExpirationDelta time.Duration

		Server   ServerConfig
		Database DatabaseConfig
	}

	ServerConfig struct {
		Host            string
		Addr            string
		DebugAddr       string
		BaseURL         string // external URL embedded in grading QR references
		ShutdownTimeout time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}
)

func (dc DatabaseConfig) Address() string {
	return dc.Host + ":" + dc.Port
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Labtrack")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "v01x-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("jwtExpirationDelta", 30*time.Minute)
	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverAddr", ":8000")
	conf.SetDefault("serverDebugAddr", ":8001")
	conf.SetDefault("serverBaseURL", "http://localhost:8000")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("databaseEngine", "postgres")
	conf.SetDefault("databaseName", "labtrack")
	conf.SetDefault("databaseUser", "labtrack")
	conf.SetDefault("databasePassword", "labtrack")
	conf.SetDefault("databaseAdminUser", "")
	conf.SetDefault("databaseAdminPassword", "")
	conf.SetDefault("databaseHost", "localhost")
	conf.SetDefault("databasePort", "5432")
	conf.SetDefault("databaseDisableTLS", true)

	env := os.Getenv("ENV")
	var testMode bool
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		testMode = true
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:              conf.GetBool("debug"),
		TestMode:           testMode,
		AppName:            conf.GetString("appName"),
		Env:                env,
		Build:              conf.GetString("build"),
		SecretKey:          []byte(conf.GetString("secretKey")),
		RollbarToken:       conf.GetString("rollbarToken"),
		JWTExpirationDelta: conf.GetDuration("jwtExpirationDelta"),
		Server: ServerConfig{
			Host:            conf.GetString("serverHost"),
			Addr:            conf.GetString("serverAddr"),
			DebugAddr:       conf.GetString("serverDebugAddr"),
			BaseURL:         conf.GetString("serverBaseURL"),
			ShutdownTimeout: conf.GetDuration("serverShutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("databaseEngine"),
			Name:          conf.GetString("databaseName"),
			User:          conf.GetString("databaseUser"),
			Password:      conf.GetString("databasePassword"),
			AdminUser:     conf.GetString("databaseAdminUser"),
			AdminPassword: conf.GetString("databaseAdminPassword"),
			Host:          conf.GetString("databaseHost"),
			Port:          conf.GetString("databasePort"),
			DisableTLS:    conf.GetBool("databaseDisableTLS"),
		},
	}
}

// NewTestConfig returns a Config usable in unit tests without any environment set up.
func NewTestConfig() *Config {
	return &Config{
		Debug:              true,
		TestMode:           true,
		AppName:            "Labtrack",
		Env:                "TEST",
		Build:              "test",
		SecretKey:          []byte("secret"),
		JWTExpirationDelta: 10 * time.Minute,
		Server: ServerConfig{
			Host:    "localhost",
			BaseURL: "http://localhost:8000",
		},
	}
}
