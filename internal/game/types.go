package game

import "strconv"

// PlayerID is the server-assigned player identifier. On the wire it is a bare
// JSON number.
type PlayerID uint32

func (p PlayerID) String() string {
	return strconv.FormatUint(uint64(p), 10)
}

// Lifecycle is the client-visible phase of the current game.
type Lifecycle int

const (
	Lobby Lifecycle = iota
	Active
	Ended
)

var lifecycleNames = map[Lifecycle]string{
	Lobby:  "LOBBY",
	Active: "ACTIVE",
	Ended:  "ENDED",
}

func (l Lifecycle) String() string {
	if s, ok := lifecycleNames[l]; ok {
		return s
	}
	return "UNKNOWN"
}

// Screen names the top level views a renderer switches between.
type Screen string

const (
	ScreenLobby  Screen = "lobby"
	ScreenGame   Screen = "game"
	ScreenResult Screen = "result"
)

func (l Lifecycle) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}
