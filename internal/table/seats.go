package table

import (
	"voyager.com/cardclient/internal/game"
	"voyager.com/cardclient/logging"
)

var seatLogger = logging.GetZeroLogger("table::seats", nil)

// Rotate re-indexes the server's absolute seat order so that self comes
// first and everybody else keeps their relative order: order[i:] ++ order[:i].
// If self is not seated the order is returned unchanged.
func Rotate(absolute []game.PlayerID, self game.PlayerID) []game.PlayerID {
	out := make([]game.PlayerID, 0, len(absolute))
	idx := indexOf(absolute, self)
	if idx == -1 {
		seatLogger.Warn().
			Uint32(logging.PlayerIDKey, uint32(self)).
			Msgf("Player is not in seat order %v. Keeping server order.", absolute)
		return append(out, absolute...)
	}
	out = append(out, absolute[idx:]...)
	return append(out, absolute[:idx]...)
}

func indexOf(ids []game.PlayerID, id game.PlayerID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
