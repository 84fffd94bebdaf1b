package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var environmentLogger = log.With().Str("logger_name", "util::environment").Logger()

type environment struct {
	ServerURL     string
	Transport     string
	NatsURL       string
	PlayerName    string
	DebugPort     string
	PrintMsg      string
	PrintStateMsg string
	DisableDelays string
	LogLevel      string
}

// Env is a helper object for accessing environment variables.
var Env = &environment{
	ServerURL:     "CARDCLIENT_SERVER_URL",
	Transport:     "CARDCLIENT_TRANSPORT",
	NatsURL:       "CARDCLIENT_NATS_URL",
	PlayerName:    "CARDCLIENT_PLAYER_NAME",
	DebugPort:     "CARDCLIENT_DEBUG_PORT",
	PrintMsg:      "PRINT_MSG",
	PrintStateMsg: "PRINT_STATE_MSG",
	DisableDelays: "DISABLE_DELAYS",
	LogLevel:      "LOG_LEVEL",
}

func (e *environment) GetServerURL() string {
	return os.Getenv(e.ServerURL)
}

func (e *environment) GetTransport() string {
	return strings.ToLower(os.Getenv(e.Transport))
}

func (e *environment) GetNatsURL() string {
	return os.Getenv(e.NatsURL)
}

func (e *environment) GetPlayerName() string {
	return os.Getenv(e.PlayerName)
}

// GetDebugPort returns 0 when the variable is not set.
func (e *environment) GetDebugPort() (uint, error) {
	v := os.Getenv(e.DebugPort)
	if v == "" {
		return 0, nil
	}
	portNum, err := strconv.ParseUint(v, 10, 16)
	if err != nil {
		environmentLogger.Error().Msgf("Invalid debug port %s", v)
		return 0, fmt.Errorf("invalid %s: %s", e.DebugPort, v)
	}
	return uint(portNum), nil
}

func (e *environment) GetPrintMsg() string {
	v := os.Getenv(e.PrintMsg)
	if v == "" {
		return "false"
	}
	return v
}

func (e *environment) GetPrintStateMsg() string {
	v := os.Getenv(e.PrintStateMsg)
	if v == "" {
		return "false"
	}
	return v
}

func (e *environment) GetDisableDelays() string {
	v := os.Getenv(e.DisableDelays)
	if v == "" {
		return "false"
	}
	return v
}

func (e *environment) ShouldPrintMsg() bool {
	return isTrue(e.GetPrintMsg())
}

func (e *environment) ShouldPrintStateMsg() bool {
	return isTrue(e.GetPrintStateMsg())
}

func (e *environment) ShouldDisableDelays() bool {
	return isTrue(e.GetDisableDelays())
}

func (e *environment) GetLogLevel() string {
	v := os.Getenv(e.LogLevel)
	if v == "" {
		return "info"
	}
	return v
}

func (e *environment) GetZeroLogLogLevel() (zerolog.Level, error) {
	l := e.GetLogLevel()
	switch strings.ToLower(l) {
	case "trace":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn":
		fallthrough
	case "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disabled":
		return zerolog.Disabled, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unsupported %s: %s", e.LogLevel, l)
	}
}

func isTrue(v string) bool {
	return v == "1" || strings.ToLower(v) == "true"
}
