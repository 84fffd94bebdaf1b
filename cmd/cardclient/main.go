package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"voyager.com/cardclient/internal/card"
	"voyager.com/cardclient/internal/client"
	"voyager.com/cardclient/internal/config"
	"voyager.com/cardclient/internal/render"
	"voyager.com/cardclient/internal/rest"
	"voyager.com/cardclient/internal/transport"
	"voyager.com/cardclient/internal/util"
)

const (
	dialTimeout    = 10 * time.Second
	maxDialRetries = 5
)

var (
	cmdArgs    arg
	mainLogger = log.With().Str("logger_name", "main::main").Logger()
)

type arg struct {
	configFile string
	serverURL  string
	transport  string
	debugPort  uint
	noStdin    bool
}

func init() {
	flag.StringVar(&cmdArgs.configFile, "config", "", "Client config YAML file")
	flag.StringVar(&cmdArgs.serverURL, "server-url", "", "Websocket URL of the table server. Overrides the config file.")
	flag.StringVar(&cmdArgs.transport, "transport", "", "websocket or nats. Overrides the config file.")
	flag.UintVar(&cmdArgs.debugPort, "debug-port", 0, "Port for the debug REST server. 0 disables it.")
	flag.BoolVar(&cmdArgs.noStdin, "no-stdin", false, "Do not read commands from stdin")
}

func main() {
	flag.Parse()
	os.Exit(cardclient())
}

func cardclient() int {
	logLevel, err := util.Env.GetZeroLogLogLevel()
	if err != nil {
		mainLogger.Error().Msgf("%s", err)
		return 1
	}
	fmt.Printf("Setting log level to %s\n", logLevel)
	zerolog.SetGlobalLevel(logLevel)

	cfg, err := config.Load(cmdArgs.configFile)
	if err != nil {
		mainLogger.Error().Msgf("Error while loading config: %+v", err)
		return 1
	}
	if cmdArgs.serverURL != "" {
		cfg.ServerURL = cmdArgs.serverURL
	}
	if cmdArgs.transport != "" {
		cfg.Transport = cmdArgs.transport
	}
	if cmdArgs.debugPort != 0 {
		cfg.DebugPort = cmdArgs.debugPort
	}
	if err := cfg.Validate(); err != nil {
		mainLogger.Error().Msgf("Invalid config: %s", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t, err := connect(ctx, cfg)
	if err != nil {
		mainLogger.Error().Msgf("Unable to connect: %s", err)
		return 1
	}

	console := render.NewConsole(os.Stdout, cfg.Delays)
	session := client.NewSession(cfg, t, console)
	console.Attach(session)
	defer func() {
		if err := session.Close(); err != nil {
			mainLogger.Debug().Msgf("Error while closing session: %s", err)
		}
	}()
	mainLogger.Info().Msgf("Session %s started. Transport: %s", session.ID, cfg.Transport)

	if cfg.DebugPort != 0 {
		go rest.RunServer(cfg.DebugPort, session, session.Actions())
	}
	if !cmdArgs.noStdin {
		go readCommands(ctx, os.Stdin, session, console, stop)
	}

	err = session.Run(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		mainLogger.Info().Msg("Shutting down.")
	case errors.Is(err, transport.ErrClosed):
		mainLogger.Info().Msg("Disconnected from the table server.")
	case err != nil:
		mainLogger.Error().Msgf("Session ended: %s", err)
	}
	return 0
}

// connect dials the configured transport, retrying with exponential backoff.
func connect(ctx context.Context, cfg config.Config) (transport.Transport, error) {
	var t transport.Transport
	op := func() error {
		var err error
		switch cfg.Transport {
		case config.TransportNats:
			mainLogger.Info().Msgf("Connecting to NATS at %s", cfg.Nats.URL)
			t, err = transport.DialNats(cfg.Nats.URL, cfg.Nats.InboundSubject, cfg.Nats.OutboundSubject)
		default:
			mainLogger.Info().Msgf("Connecting to %s", cfg.ServerURL)
			dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
			defer cancel()
			t, err = transport.DialWebsocket(dialCtx, cfg.ServerURL, cfg.KeepaliveInterval())
		}
		if err != nil {
			mainLogger.Warn().Msgf("Connection attempt failed: %s", err)
		}
		return err
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxDialRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}
	return t, nil
}

const helpText = `Commands:
  ready               tell the server you are ready
  play <rank> <suit>  play a card, e.g. "play A Spade" or "play Queen Heart"
  play <index>        play a card by index (0..51)
  end                 ask the server to end the game
  state               redraw the table
  quit                exit`

func readCommands(ctx context.Context, in io.Reader, session *client.Session, console *render.Console, quit func()) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		var err error
		switch strings.ToLower(fields[0]) {
		case "ready":
			err = session.Actions().Ready(ctx)
		case "play":
			var c card.Card
			c, err = parseCard(fields[1:])
			if err == nil {
				err = session.Actions().Play(ctx, c)
			}
		case "end":
			err = session.Actions().EndGame(ctx)
		case "state":
			console.RenderOpponents()
			console.RenderPile(session.Store().Pile())
			console.RenderTurn()
			console.RenderHand()
		case "help":
			fmt.Println(helpText)
		case "quit", "exit":
			quit()
			return
		default:
			fmt.Printf("Unknown command %q. Type help for the list of commands.\n", fields[0])
		}
		if err != nil {
			fmt.Printf("%s\n", err)
		}
	}
}

func parseCard(args []string) (card.Card, error) {
	switch len(args) {
	case 1:
		idx, err := strconv.Atoi(args[0])
		if err != nil {
			return card.Card{}, errors.Errorf("invalid card index [%s]", args[0])
		}
		return card.FromIndex(idx)
	case 2:
		rank, err := card.ParseRank(args[0])
		if err != nil {
			return card.Card{}, err
		}
		suit, err := card.ParseSuit(args[1])
		if err != nil {
			return card.Card{}, err
		}
		return card.New(rank, suit), nil
	default:
		return card.Card{}, errors.New("usage: play <rank> <suit> | play <index>")
	}
}
