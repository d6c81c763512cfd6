package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr          string
	DBUrl         string
	PublicDir     string
	TokenSecret   string
	TokenTTL      time.Duration
	DraftTTL      time.Duration
	AdminUser     string
	AdminPassword string
	Debug         bool
}

// ParseFlags reads the command line. Every flag defaults to a FORMS_*
// environment variable, which may come from a .env file in the working
// directory.
func ParseFlags() (Config, error) {
	return Parse(flag.CommandLine, os.Args[1:])
}

func Parse(fs *flag.FlagSet, args []string) (cfg Config, err error) {
	if err = godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}

	var host string
	fs.StringVar(&host, "host", env("FORMS_HOST", "0.0.0.0"), "listen host name")
	var port uint
	fs.UintVar(&port, "port", envUint("FORMS_PORT", 8080), "listen port number")
	fs.StringVar(&cfg.DBUrl, "db-url", env("FORMS_DB_URL", "forms.sqlite"), "path to SQLite3 DB file")
	fs.StringVar(&cfg.PublicDir, "public-dir", env("FORMS_PUBLIC_DIR", "public"), "directory of the static front end")
	fs.StringVar(&cfg.TokenSecret, "token-secret", env("FORMS_TOKEN_SECRET", ""), "secret key for token encryption and decryption")
	var ttl uint
	fs.UintVar(&ttl, "token-ttl", envUint("FORMS_TOKEN_TTL", 120), "token TTL in seconds")
	fs.DurationVar(&cfg.DraftTTL, "draft-ttl", envDuration("FORMS_DRAFT_TTL", 2*time.Hour), "drop builder drafts idle for longer than this")
	fs.StringVar(&cfg.AdminUser, "admin-user", env("FORMS_ADMIN_USER", ""), "create this admin user on an empty database")
	fs.StringVar(&cfg.AdminPassword, "admin-password", env("FORMS_ADMIN_PASSWORD", ""), "password of -admin-user")
	fs.BoolVar(&cfg.Debug, "debug", envBool("FORMS_DEBUG", false), "log at DEBUG level")
	if err = fs.Parse(args); err != nil {
		return cfg, err
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second

	switch {
	case cfg.TokenSecret == "":
		err = errors.New("missing parameter -token-secret")
	case cfg.AdminUser != "" && cfg.AdminPassword == "":
		err = errors.New("-admin-user needs -admin-password")
	}
	return cfg, err
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envUint(key string, def uint) uint {
	if n, err := strconv.ParseUint(os.Getenv(key), 10, 0); err == nil {
		return uint(n)
	}
	return def
}

func envBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}
