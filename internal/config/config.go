package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/authcore/internal/security/secretbox"
)

// MinSecretLength es el largo mínimo del secreto de firma de tokens.
const MinSecretLength = 32

type Config struct {
	App struct {
		// dev | staging | prod
		Env     string `yaml:"env" env:"APP_ENV"`
		Version string `yaml:"version" env:"APP_VERSION"`
	} `yaml:"app"`

	Server struct {
		Addr            string        `yaml:"addr" env:"SERVER_ADDR"`
		ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
		// TrustedProxies (IPs o CIDRs) son los únicos peers cuyo
		// X-Forwarded-For se toma en cuenta.
		TrustedProxies []string `yaml:"trusted_proxies" env:"SERVER_TRUSTED_PROXIES" envSeparator:","`
	} `yaml:"server"`

	Log struct {
		Env   string `yaml:"env" env:"LOG_ENV"`
		Level string `yaml:"level" env:"LOG_LEVEL"`
	} `yaml:"log"`

	Storage struct {
		// fs | postgres | mysql | sqlite
		Driver          string        `yaml:"driver" env:"STORAGE_DRIVER"`
		DSN             string        `yaml:"dsn" env:"STORAGE_DSN"`
		FSPath          string        `yaml:"fs_path" env:"STORAGE_FS_PATH"`
		MaxOpenConns    int           `yaml:"max_open_conns" env:"STORAGE_MAX_OPEN_CONNS"`
		MaxIdleConns    int           `yaml:"max_idle_conns" env:"STORAGE_MAX_IDLE_CONNS"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"STORAGE_CONN_MAX_LIFETIME"`
		Migrate         bool          `yaml:"migrate" env:"STORAGE_MIGRATE"`
		// ClientCacheTTL > 0 activa el cache de clientes delante del store.
		ClientCacheTTL time.Duration `yaml:"client_cache_ttl" env:"STORAGE_CLIENT_CACHE_TTL"`
	} `yaml:"storage"`

	Cache struct {
		// memory | redis
		Kind  string `yaml:"kind" env:"CACHE_KIND"`
		Redis struct {
			Addr     string `yaml:"addr" env:"REDIS_ADDR"`
			Password string `yaml:"password" env:"REDIS_PASSWORD"`
			DB       int    `yaml:"db" env:"REDIS_DB"`
			Prefix   string `yaml:"prefix" env:"REDIS_PREFIX"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Token struct {
		Secret    string        `yaml:"secret" env:"TOKEN_SECRET"`
		AccessTTL time.Duration `yaml:"access_ttl" env:"TOKEN_ACCESS_TTL"`
		LoginTTL  time.Duration `yaml:"login_ttl" env:"TOKEN_LOGIN_TTL"`
		CodeTTL   time.Duration `yaml:"code_ttl" env:"TOKEN_CODE_TTL"`
	} `yaml:"token"`

	OAuth struct {
		PasswordGrantEnabled bool     `yaml:"password_grant_enabled" env:"OAUTH_PASSWORD_GRANT_ENABLED"`
		SingleUseTokens      bool     `yaml:"single_use_tokens" env:"OAUTH_SINGLE_USE_TOKENS"`
		AllowedReturnHosts   []string `yaml:"allowed_return_hosts" env:"OAUTH_ALLOWED_RETURN_HOSTS" envSeparator:","`
		// TokenInfoScope es el scope exigido por /oauth/tokeninfo ("" = cualquiera).
		TokenInfoScope string `yaml:"tokeninfo_scope" env:"OAUTH_TOKENINFO_SCOPE"`
	} `yaml:"oauth"`

	Security struct {
		Argon2 struct {
			Memory      uint32 `yaml:"memory_kib" env:"ARGON2_MEMORY_KIB"`
			Time        uint32 `yaml:"time" env:"ARGON2_TIME"`
			Parallelism uint8  `yaml:"parallelism" env:"ARGON2_PARALLELISM"`
			KeyLen      uint32 `yaml:"key_len" env:"ARGON2_KEY_LEN"`
		} `yaml:"argon2"`
		PasswordPolicy struct {
			MinLength     int  `yaml:"min_length"`
			RequireUpper  bool `yaml:"require_upper"`
			RequireLower  bool `yaml:"require_lower"`
			RequireDigit  bool `yaml:"require_digit"`
			RequireSymbol bool `yaml:"require_symbol"`
		} `yaml:"password_policy"`
		PasswordBlacklistPath string `yaml:"password_blacklist_path" env:"PASSWORD_BLACKLIST_PATH"`
	} `yaml:"security"`

	Rate struct {
		Enabled bool `yaml:"enabled" env:"RATE_ENABLED"`
		Login   struct {
			Limit  int           `yaml:"limit" env:"RATE_LOGIN_LIMIT"`
			Window time.Duration `yaml:"window" env:"RATE_LOGIN_WINDOW"`
		} `yaml:"login"`
		Token struct {
			Limit  int           `yaml:"limit" env:"RATE_TOKEN_LIMIT"`
			Window time.Duration `yaml:"window" env:"RATE_TOKEN_WINDOW"`
		} `yaml:"token"`
	} `yaml:"rate"`
}

// Load lee el YAML en path (opcional: path vacío usa solo defaults + env),
// aplica overrides de entorno y valida.
func Load(path string) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("config: env: %w", err)
	}
	if err := c.openSealed(); err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// openSealed descifra los valores "enc:" (secretbox). La clave maestra
// solo se exige si hay algún valor cifrado.
func (c *Config) openSealed() error {
	fields := map[string]*string{
		"storage.dsn":          &c.Storage.DSN,
		"cache.redis.password": &c.Cache.Redis.Password,
		"token.secret":         &c.Token.Secret,
	}
	var box *secretbox.Box
	for name, v := range fields {
		if !secretbox.IsSealed(*v) {
			continue
		}
		if box == nil {
			b, err := secretbox.FromEnv()
			if err != nil {
				return fmt.Errorf("config: %s is encrypted: %w", name, err)
			}
			box = b
		}
		plain, err := box.Open(*v)
		if err != nil {
			return fmt.Errorf("config: decrypt %s: %w", name, err)
		}
		*v = plain
	}
	return nil
}

// sane defaults
func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.Log.Env == "" {
		c.Log.Env = c.App.Env
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "fs"
	}
	if c.Storage.MaxOpenConns == 0 {
		c.Storage.MaxOpenConns = 10
	}
	if c.Storage.MaxIdleConns == 0 {
		c.Storage.MaxIdleConns = 2
	}
	if c.Storage.ConnMaxLifetime == 0 {
		c.Storage.ConnMaxLifetime = 15 * time.Minute
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "authcore"
	}
	if c.Token.AccessTTL == 0 {
		c.Token.AccessTTL = time.Hour
	}
	if c.Token.LoginTTL == 0 {
		c.Token.LoginTTL = 5 * time.Minute
	}
	if c.Token.CodeTTL == 0 {
		c.Token.CodeTTL = time.Minute
	}
	if c.Security.Argon2.Memory == 0 {
		c.Security.Argon2.Memory = 64 * 1024
	}
	if c.Security.Argon2.Time == 0 {
		c.Security.Argon2.Time = 3
	}
	if c.Security.Argon2.Parallelism == 0 {
		c.Security.Argon2.Parallelism = 1
	}
	if c.Security.Argon2.KeyLen == 0 {
		c.Security.Argon2.KeyLen = 32
	}
	if c.Security.PasswordPolicy.MinLength == 0 {
		c.Security.PasswordPolicy.MinLength = 10
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == 0 {
		c.Rate.Login.Window = time.Minute
	}
	if c.Rate.Token.Limit == 0 {
		c.Rate.Token.Limit = 60
	}
	if c.Rate.Token.Window == 0 {
		c.Rate.Token.Window = time.Minute
	}
}

// Validate revisa combinaciones inválidas. Se llama desde Load.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Token.Secret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("token.secret must be at least %d bytes", MinSecretLength))
	}
	if c.Token.AccessTTL < 0 || c.Token.LoginTTL < 0 || c.Token.CodeTTL < 0 {
		errs = append(errs, errors.New("token ttls must be positive"))
	}
	switch c.Storage.Driver {
	case "fs":
		if c.Storage.FSPath == "" {
			errs = append(errs, errors.New("storage.fs_path is required for driver fs"))
		}
	case "postgres", "mysql", "sqlite":
		if c.Storage.DSN == "" {
			errs = append(errs, fmt.Errorf("storage.dsn is required for driver %s", c.Storage.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}
	switch c.Cache.Kind {
	case "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("cache.redis.addr is required for cache kind redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache.kind %q", c.Cache.Kind))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
