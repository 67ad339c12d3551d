package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Promotion policies for students in the highest class whose average qualifies.
const (
	TopClassSkip     = "skip"
	TopClassGraduate = "graduate"
)

type Config struct {
	Env              string
	Build            string
	Debug            bool
	TestMode         bool
	AppName          string
	SecretKey        string
	WorkDir          string
	RollbarToken     string
	SendgridApiKey   string
	ReportRecipients []mail.Address
	defaultFromEmail string

	Server struct {
		Host               string
		Address            string
		DebugHost          string
		DisableReqLogs     bool
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	Database struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		MaxOpenConns  int
	}

	Promotion struct {
		Threshold      float64
		TopClassPolicy string
		Atomic         bool
	}

	Inactivity struct {
		Days     int
		Atomic   bool
		Schedule string // cron spec; empty disables the scheduled sweep
	}
}

// NewConfig loads the configuration for the current ENV (DEV by default) from
// defaults, an optional config/.env.<env> file and the environment.
func NewConfig() *Config {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()
	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		WorkDir:          wd,
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		ReportRecipients: parseAddresses(v.GetString("reportRecipients")),
		defaultFromEmail: v.GetString("defaultFromEmail"),
	}

	conf.Server.Host, _ = os.Hostname()
	conf.Server.Address = v.GetString("server.address")
	conf.Server.DebugHost = v.GetString("server.debugHost")
	conf.Server.DisableReqLogs = v.GetBool("server.disableReqLogs")
	conf.Server.ShutdownTimeout = v.GetDuration("server.shutdownTimeout")
	conf.Server.JWTExpirationDelta = v.GetDuration("server.jwtExpirationDelta")

	conf.Database.Engine = v.GetString("database.engine")
	conf.Database.Host = v.GetString("database.host")
	conf.Database.Port = v.GetString("database.port")
	conf.Database.Name = v.GetString("database.name")
	conf.Database.User = v.GetString("database.user")
	conf.Database.Password = v.GetString("database.password")
	conf.Database.AdminUser = v.GetString("database.adminUser")
	conf.Database.AdminPassword = v.GetString("database.adminPassword")
	conf.Database.DisableTLS = v.GetBool("database.disableTLS")
	conf.Database.MaxOpenConns = v.GetInt("database.maxOpenConns")

	conf.Promotion.Threshold = v.GetFloat64("promotion.threshold")
	conf.Promotion.TopClassPolicy = strings.ToLower(v.GetString("promotion.topClassPolicy"))
	conf.Promotion.Atomic = v.GetBool("promotion.atomic")

	conf.Inactivity.Days = v.GetInt("inactivity.days")
	conf.Inactivity.Atomic = v.GetBool("inactivity.atomic")
	conf.Inactivity.Schedule = v.GetString("inactivity.schedule")

	if conf.Promotion.TopClassPolicy != TopClassGraduate {
		conf.Promotion.TopClassPolicy = TopClassSkip
	}
	return conf
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "Academia")
	v.SetDefault("secretKey", "k3v!9z-0qf$ra+2m=w_lh7(#p6x)t8s@n1e^c4yu%jd5o&g")
	v.SetDefault("defaultFromEmail", "Academia <noreply@localhost>")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("reportRecipients", "")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "academia")
	v.SetDefault("database.user", "academia")
	v.SetDefault("database.password", "academia")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.maxOpenConns", 10)

	v.SetDefault("promotion.threshold", 60.0)
	v.SetDefault("promotion.topClassPolicy", TopClassSkip)
	v.SetDefault("promotion.atomic", false)

	v.SetDefault("inactivity.days", 30)
	v.SetDefault("inactivity.atomic", false)
	v.SetDefault("inactivity.schedule", "")
}

func (conf *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(conf.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: conf.AppName, Address: "noreply@localhost"}
	}
	return *addr
}

func (conf *Config) IsDummyDB() bool {
	return conf.Database.Engine == "dummy"
}

func (conf *Config) DatabaseAddress() string {
	return net.JoinHostPort(conf.Database.Host, conf.Database.Port)
}

// parseAddresses parses a comma separated list of RFC 5322 addresses, skipping invalid ones.
func parseAddresses(list string) []mail.Address {
	var addrs []mail.Address
	for _, s := range strings.Split(list, ",") {
		if s = CleanString(s); s == "" {
			continue
		}
		if addr, err := mail.ParseAddress(s); err == nil {
			addrs = append(addrs, *addr)
		}
	}
	return addrs
}
