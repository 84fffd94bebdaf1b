package config

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"voyager.com/cardclient/internal/util"
)

const (
	TransportWebsocket = "websocket"
	TransportNats      = "nats"

	DefaultHistorySize = 64
)

// Config is the client configuration file content.
type Config struct {
	ServerURL        string `yaml:"server-url"`
	Transport        string `yaml:"transport"`
	Nats             Nats   `yaml:"nats"`
	PlayerName       string `yaml:"player-name"`
	DeckSize         int    `yaml:"deck-size"`
	DebugPort        uint   `yaml:"debug-port"`
	DelaysFile       string `yaml:"delays-file"`
	ActionIntervalMs uint32 `yaml:"action-interval-ms"`
	KeepaliveSec     uint32 `yaml:"keepalive-sec"`
	HistorySize      int    `yaml:"history-size"`

	// Delays is loaded from DelaysFile, or defaults.
	Delays Delays `yaml:"-"`
}

// Nats holds the subjects used when the table is reached through NATS.
type Nats struct {
	URL             string `yaml:"url"`
	InboundSubject  string `yaml:"inbound-subject"`
	OutboundSubject string `yaml:"outbound-subject"`
}

func Default() Config {
	return Config{
		ServerURL:        "ws://127.0.0.1:3000/ws",
		Transport:        TransportWebsocket,
		DeckSize:         52,
		ActionIntervalMs: 250,
		KeepaliveSec:     15,
		HistorySize:      DefaultHistorySize,
		Delays:           DefaultDelays(),
	}
}

// Load reads the YAML config file. An empty path returns the defaults.
// Environment variables are applied on top in both cases.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		bytes, err := ioutil.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, fmt.Sprintf("Error reading config file [%s]", path))
		}
		if err := yaml.Unmarshal(bytes, &cfg); err != nil {
			return Config{}, errors.Wrap(err, fmt.Sprintf("Error parsing config YAML file [%s]", path))
		}
		if cfg.DelaysFile != "" {
			delaysFile := cfg.DelaysFile
			if !filepath.IsAbs(delaysFile) {
				delaysFile = filepath.Join(filepath.Dir(path), delaysFile)
			}
			delays, err := ParseDelayConfig(delaysFile)
			if err != nil {
				return Config{}, err
			}
			cfg.Delays = delays
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := util.Env.GetServerURL(); v != "" {
		c.ServerURL = v
	}
	if v := util.Env.GetTransport(); v != "" {
		c.Transport = v
	}
	if v := util.Env.GetNatsURL(); v != "" {
		c.Nats.URL = v
	}
	if v := util.Env.GetPlayerName(); v != "" {
		c.PlayerName = v
	}
	port, err := util.Env.GetDebugPort()
	if err != nil {
		return err
	}
	if port != 0 {
		c.DebugPort = port
	}
	if util.Env.ShouldDisableDelays() {
		c.Delays = NoDelays()
	}
	return nil
}

func (c *Config) Validate() error {
	c.Transport = strings.ToLower(c.Transport)
	switch c.Transport {
	case TransportWebsocket:
		if c.ServerURL == "" {
			return errors.New("server-url is required for the websocket transport")
		}
	case TransportNats:
		if c.Nats.URL == "" || c.Nats.InboundSubject == "" || c.Nats.OutboundSubject == "" {
			return errors.New("nats url, inbound-subject and outbound-subject are required for the nats transport")
		}
	default:
		return errors.Errorf("unsupported transport [%s]", c.Transport)
	}
	if c.DeckSize < 0 {
		return errors.Errorf("invalid deck-size [%d]", c.DeckSize)
	}
	if c.HistorySize <= 0 {
		c.HistorySize = DefaultHistorySize
	}
	return nil
}

func (c Config) ActionInterval() time.Duration {
	return ms(c.ActionIntervalMs)
}

func (c Config) KeepaliveInterval() time.Duration {
	return time.Duration(c.KeepaliveSec) * time.Second
}
