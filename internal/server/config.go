package server

import "time"

// Config holds HTTP surface settings.
type Config struct {
	Addr          string `env:"HTTP_ADDR" envDefault:":8080"`
	BaseURL       string `env:"BASE_URL"`
	AfterLoginURL string `env:"AFTER_LOGIN_URL" envDefault:"/"`
	// Where the browser lands after logout.
	AfterLogoutURL string `env:"AFTER_LOGOUT_URL" envDefault:"/"`

	CookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"__oauthlink_sid"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"true"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	ReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	WriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}
