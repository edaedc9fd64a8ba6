package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath     = "config/config.yaml"
	DefaultTimezone = "Asia/Tokyo"
	DefaultAddr     = ":8443"
	DefaultTokenTTL = 24 * time.Hour
)

type DatabaseConfig struct {
	Driver       string `yaml:"driver"` // mysql | sqlite3
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"user"`
	Password     string `yaml:"password"`
	DBName       string `yaml:"dbname"`
	Path         string `yaml:"path"` // sqlite3 のみ
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	AllowOrigins []string `yaml:"allow_origins"`
}

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type Config struct {
	Version     string         `yaml:"version"`
	Mode        string         `yaml:"mode"`
	Timezone    string         `yaml:"timezone"`
	DB          DatabaseConfig `yaml:"database"`
	Auth        AuthConfig     `yaml:"auth"`
	Server      ServerConfig   `yaml:"server"`
	Certificate Certs          `yaml:"certificate"`

	loc *time.Location
}

// Load は .env → YAML → 環境変数上書き の順で設定を組み立てる
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] no .env file found, using process environment")
	}
	if p := os.Getenv("ROSTER_CONFIG"); p != "" {
		path = p
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込み失敗: %w", err)
	}
	return Parse(buf)
}

// Parse は YAML を読み込み、デフォルト値と環境変数を適用して検証する
func Parse(buf []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("設定ファイルのパース失敗: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ROSTER_MODE"); v != "" {
		c.Mode = v
	}
	if v := os.Getenv("ROSTER_DB_PASSWORD"); v != "" {
		c.DB.Password = v
	}
	if v := os.Getenv("ROSTER_DB_PATH"); v != "" {
		c.DB.Path = v
	}
	if v := os.Getenv("ROSTER_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
}

func (c *Config) applyDefaults() {
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.DB.Driver == "" {
		c.DB.Driver = "mysql"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 3306
	}
	// 接続プール（合算がMySQLの max_connections を超えないよう配分する）
	if c.DB.MaxOpenConns <= 0 {
		c.DB.MaxOpenConns = 80
	}
	if c.DB.MaxIdleConns <= 0 {
		c.DB.MaxIdleConns = 20
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = DefaultTokenTTL
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
}

func (c *Config) validate() error {
	if c.Mode != "dev" && c.Mode != "release" {
		return fmt.Errorf("mode must be dev or release, got %q", c.Mode)
	}
	switch c.DB.Driver {
	case "mysql":
		if c.DB.DBName == "" {
			return fmt.Errorf("database.dbname is required for mysql")
		}
	case "sqlite3":
		if c.DB.Path == "" {
			return fmt.Errorf("database.path is required for sqlite3")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", c.DB.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required (or ROSTER_JWT_SECRET)")
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.loc = loc
	return nil
}

// Location はトレーナーの勤務タイムゾーン
func (c *Config) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// TLSFiles は mode に応じた証明書パスを返す。未設定なら ok=false
func (c *Config) TLSFiles() (certFile, keyFile string, ok bool) {
	if c.Certificate.Cert == "" || c.Certificate.Key == "" {
		return "", "", false
	}
	certFile = fmt.Sprintf("config/tls/%s/%s", c.Mode, c.Certificate.Cert)
	keyFile = fmt.Sprintf("config/tls/%s/%s", c.Mode, c.Certificate.Key)
	return certFile, keyFile, true
}
