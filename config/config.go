// config/config.go
package config

import (
	"time"

	"github.com/spf13/viper"
)

// --- Sub-structs mirroring the YAML layout ---

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Expiration string `mapstructure:"expiration"`
}

// TTL parses Expiration, falling back to 24h.
func (j JWTConfig) TTL() time.Duration {
	d, err := time.ParseDuration(j.Expiration)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

type OTPConfig struct {
	LoginTTL  time.Duration `mapstructure:"loginTTL"`
	ResendTTL time.Duration `mapstructure:"resendTTL"`
	// ExposeCode echoes the code in the login response. Development only.
	ExposeCode bool `mapstructure:"exposeCode"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

// Enabled reports whether uploads can be attempted at all.
func (s S3Config) Enabled() bool {
	return s.Bucket != "" && s.Region != ""
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type SeedConfig struct {
	AdminUsername string `mapstructure:"adminUsername"`
	AdminPassword string `mapstructure:"adminPassword"`
	AdminPhone    string `mapstructure:"adminPhone"`
}

type ClientConfig struct {
	BaseURL   string `mapstructure:"baseURL"`
	TokenFile string `mapstructure:"tokenFile"`
}

// --- Root config ---

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	OTP     OTPConfig     `mapstructure:"otp"`
	S3      S3Config      `mapstructure:"s3"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Seed    SeedConfig    `mapstructure:"seed"`
	Client  ClientConfig  `mapstructure:"client"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "prod")
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.allowedOrigins", []string{"*"})
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.dbName", "construction_site")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("otp.loginTTL", 5*time.Minute)
	v.SetDefault("otp.resendTTL", 3*time.Minute)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("seed.adminUsername", "admin")
	v.SetDefault("client.baseURL", "http://localhost:5000")
	v.SetDefault("client.tokenFile", ".sitectl-token")
}

// LoadConfig reads config.yaml from path and overrides it with environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	setDefaults(v)

	// Each key is mapped to its env var explicitly, e.g. "mongo.uri" -> MONGO_URI.
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("mongo.uri", "MONGO_URI")
	v.BindEnv("mongo.dbName", "MONGO_DBNAME")
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	v.BindEnv("otp.exposeCode", "OTP_EXPOSE_CODE")
	v.BindEnv("s3.bucket", "S3_BUCKET")
	v.BindEnv("s3.region", "S3_REGION")
	v.BindEnv("s3.accessKeyID", "S3_ACCESS_KEY_ID")
	v.BindEnv("s3.secretAccessKey", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("s3.cloudFrontDomain", "S3_CLOUDFRONT_DOMAIN")
	v.BindEnv("metrics.enabled", "METRICS_ENABLED")
	v.BindEnv("seed.adminUsername", "SEED_ADMIN_USERNAME")
	v.BindEnv("seed.adminPassword", "SEED_ADMIN_PASSWORD")
	v.BindEnv("seed.adminPhone", "SEED_ADMIN_PHONE")
	v.BindEnv("client.baseURL", "SITECTL_BASE_URL")
	v.BindEnv("client.tokenFile", "SITECTL_TOKEN_FILE")

	// A missing config.yaml is fine; env vars and defaults are used instead.
	err = v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	err = v.Unmarshal(&config)
	return
}
