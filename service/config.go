package service

import "time"

// Defaults applied by Config.withDefaults
const (
	DefaultAccessTTL   = 15 * time.Minute
	DefaultRefreshTTL  = 7 * 24 * time.Hour
	DefaultLoginLimit  = 5
	DefaultLoginWindow = 15 * time.Minute
	DefaultRole        = "user"
)

// Config carries every tunable of the session core. It is constructed once
// at startup and passed into NewAuthService; nothing reads the process
// environment after that point.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	LoginLimit  int64
	LoginWindow time.Duration

	DefaultRole string
}

// withDefaults fills zero values with the documented defaults
func (c Config) withDefaults() Config {
	if c.AccessTTL == 0 {
		c.AccessTTL = DefaultAccessTTL
	}
	if c.RefreshTTL == 0 {
		c.RefreshTTL = DefaultRefreshTTL
	}
	if c.LoginLimit == 0 {
		c.LoginLimit = DefaultLoginLimit
	}
	if c.LoginWindow == 0 {
		c.LoginWindow = DefaultLoginWindow
	}
	if c.DefaultRole == "" {
		c.DefaultRole = DefaultRole
	}
	return c
}
