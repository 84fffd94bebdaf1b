package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"voyager.com/cardclient/internal/card"
	"voyager.com/cardclient/internal/client"
	"voyager.com/cardclient/internal/table"
	"voyager.com/cardclient/logging"
)

var restLogger = logging.GetZeroLogger("rest::rest", nil)

const actionTimeout = 5 * time.Second

// View is the read side of a session.
type View interface {
	Snapshot() table.Snapshot
	History() []string
}

// Player sends actions on behalf of the local player.
type Player interface {
	Ready(ctx context.Context) error
	Play(ctx context.Context, c card.Card) error
	EndGame(ctx context.Context) error
}

type handler struct {
	view   View
	player Player
}

// NewRouter builds the debug and control API.
func NewRouter(view View, player Player) *gin.Engine {
	h := &handler{view: view, player: player}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ready", checkReady)
	r.GET("/state", h.getState)
	r.GET("/history", h.getHistory)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/actions/ready", h.sendReady)
	r.POST("/actions/play", h.playCard)
	r.POST("/actions/end-game", h.endGame)
	return r
}

// RunServer blocks serving the API on portNo.
func RunServer(portNo uint, view View, player Player) {
	restLogger.Info().Msgf("Starting debug server. Port: %d", portNo)
	if err := NewRouter(view, player).Run(fmt.Sprintf(":%d", portNo)); err != nil {
		restLogger.Error().Err(err).Msg("Debug server stopped.")
	}
}

func checkReady(c *gin.Context) {
	type resp struct {
		Status string `json:"status"`
	}
	c.JSON(http.StatusOK, resp{Status: "OK"})
}

func writeJSON(c *gin.Context, code int, v interface{}) {
	b, err := jsoniter.Marshal(v)
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to encode response: %s", err)
		return
	}
	c.Data(code, "application/json; charset=utf-8", b)
}

func (h *handler) getState(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.view.Snapshot())
}

func (h *handler) getHistory(c *gin.Context) {
	type resp struct {
		Messages []string `json:"messages"`
	}
	writeJSON(c, http.StatusOK, resp{Messages: h.view.History()})
}

func (h *handler) sendReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), actionTimeout)
	defer cancel()
	h.respond(c, "ready", h.player.Ready(ctx))
}

// playCard takes the card as the request body, either {"rank":..,"suit":..}
// or a card index.
func (h *handler) playCard(c *gin.Context) {
	var played card.Card
	if err := jsoniter.NewDecoder(c.Request.Body).Decode(&played); err != nil {
		c.String(http.StatusBadRequest, "Failed to read card from request body: %s", err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), actionTimeout)
	defer cancel()
	h.respond(c, "play", h.player.Play(ctx, played))
}

func (h *handler) endGame(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), actionTimeout)
	defer cancel()
	h.respond(c, "end-game", h.player.EndGame(ctx))
}

func (h *handler) respond(c *gin.Context, action string, err error) {
	type resp struct {
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	}
	if err == nil {
		writeJSON(c, http.StatusOK, resp{Status: "OK"})
		return
	}
	restLogger.Info().Msgf("%s refused: %s", action, err)
	writeJSON(c, statusFor(err), resp{Status: "REFUSED", Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, client.ErrTransportClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, client.ErrThrottled):
		return http.StatusTooManyRequests
	case errors.Is(err, client.ErrNotYourTurn),
		errors.Is(err, client.ErrNotActive),
		errors.Is(err, client.ErrNoPlayerID):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
