// Package config loads operator-tunable settings from a TOML file,
// auto-creating one with sane defaults when none exists, mirroring
// ftpserverlib's own confFile/autoCreate pattern in its main().
package config

import (
	"os"
	"time"

	"github.com/jinzhu/configor"

	"github.com/oxipack/cmsftpd/internal/ftpserver"
)

// Config is the on-disk shape of settings.toml.
type Config struct {
	ListenAddr   string `default:"0.0.0.0:21" toml:"listen_addr"`
	PublicHost   string `toml:"public_host"`
	DataPortBase uint16 `default:"55600" toml:"data_port_base"`
	MaxClients   int    `default:"2" toml:"max_clients"`
	IdleTimeout  int    `default:"600" toml:"idle_timeout_seconds"`
	LoginTimeout int    `default:"10" toml:"login_timeout_seconds"`
	Banner       string `default:"CMS FTP Server, FTP Version 2020-02-19" toml:"banner"`
	BaseDir      string `default:"." toml:"base_dir"`
}

// ToSettings converts the loaded Config into the ftpserver.Settings the
// core consumes.
func (c Config) ToSettings() ftpserver.Settings {
	return ftpserver.Settings{
		ListenAddr:   c.ListenAddr,
		PublicHost:   c.PublicHost,
		DataPortBase: c.DataPortBase,
		MaxClients:   c.MaxClients,
		IdleTimeout:  time.Duration(c.IdleTimeout) * time.Second,
		LoginTimeout: time.Duration(c.LoginTimeout) * time.Second,
		Banner:       c.Banner,
	}
}

// Load reads path with configor, writing out a default file first if path
// does not exist yet.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if writeErr := os.WriteFile(path, []byte(defaultConfigContent), 0o644); writeErr != nil {
			return nil, writeErr
		}
	}

	cfg := &Config{}
	if err := configor.Load(cfg, path); err != nil {
		return nil, err
	}

	return cfg, nil
}

const defaultConfigContent = `# cmsftpd configuration file
#
# These are all the config parameters with their default values. If a
# key is omitted it falls back to the value shown here.

# Address to listen on for control connections.
listen_addr = "0.0.0.0:21"

# Public IPv4 advertised in PASV replies. Left empty, it is derived from
# the control connection's local address.
public_host = ""

# Base of the passive/active data port range: each session slot is
# assigned data_port_base + slot_index.
data_port_base = 55600

# Size of the session-slot table (FTP_NBR_CLIENTS).
max_clients = 2

# Inactivity timeout, in seconds, once logged in.
idle_timeout_seconds = 600

# Timeout, in seconds, for the USER/PASS exchange.
login_timeout_seconds = 10

banner = "CMS FTP Server, FTP Version 2020-02-19"

# Directory served as the FTP root.
base_dir = "."
`
