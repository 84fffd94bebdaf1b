package client

import (
	"github.com/looplab/fsm"
	"github.com/rs/zerolog"
)

const (
	ProtocolState__UNSEATED string = "UNSEATED"
	ProtocolState__SEATED   string = "SEATED"
	ProtocolState__ACTIVE   string = "ACTIVE"
	ProtocolState__ENDED    string = "ENDED"

	ProtocolEvent__SEAT  string = "SEAT"
	ProtocolEvent__START string = "START"
	ProtocolEvent__END   string = "END"
	ProtocolEvent__RESET string = "RESET"
)

func newProtocolFSM(logger *zerolog.Logger, printState bool) *fsm.FSM {
	return fsm.NewFSM(
		ProtocolState__UNSEATED,
		fsm.Events{
			{
				Name: ProtocolEvent__SEAT,
				Src:  []string{ProtocolState__UNSEATED},
				Dst:  ProtocolState__SEATED,
			},
			{
				Name: ProtocolEvent__START,
				Src: []string{
					ProtocolState__UNSEATED,
					ProtocolState__SEATED,
					ProtocolState__ACTIVE,
					ProtocolState__ENDED,
				},
				Dst: ProtocolState__ACTIVE,
			},
			{
				Name: ProtocolEvent__END,
				Src:  []string{ProtocolState__ACTIVE},
				Dst:  ProtocolState__ENDED,
			},
			{
				Name: ProtocolEvent__RESET,
				Src: []string{
					ProtocolState__SEATED,
					ProtocolState__ACTIVE,
					ProtocolState__ENDED,
				},
				Dst: ProtocolState__UNSEATED,
			},
		},
		fsm.Callbacks{
			"enter_state": func(e *fsm.Event) {
				if printState {
					logger.Info().Msgf("[%s] ===> [%s]", e.Src, e.Dst)
				}
			},
		},
	)
}
