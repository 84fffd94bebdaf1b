package protocol

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var (
	ErrMalformedFrame = errors.New("malformed frame")
	ErrInvalidShape   = errors.New("frame is neither a tag string nor a single-key object")
	ErrInvalidPayload = errors.New("invalid payload")
)

type variant struct {
	// payload must be present
	payload bool
	// keys that must appear in the payload object
	required []string
	new      func() Message
}

var variants = map[Kind]variant{
	KindID:               {payload: true, required: []string{"p_id"}, new: func() Message { return &AssignID{} }},
	KindHand:             {payload: true, required: []string{"cards"}, new: func() Message { return &Hand{} }},
	KindSeatOrder:        {payload: true, required: []string{"seats"}, new: func() Message { return &SeatOrder{} }},
	KindMarkReady:        {payload: true, required: []string{"p_id"}, new: func() Message { return &MarkReady{} }},
	KindStartGame:        {new: func() Message { return &StartGame{} }},
	KindCardsDistributed: {payload: true, required: []string{"player_cards"}, new: func() Message { return &CardsDistributed{} }},
	KindNextTurn:         {payload: true, required: []string{"player_id"}, new: func() Message { return &NextTurn{} }},
	KindCardPlayed:       {payload: true, required: []string{"card", "p_id"}, new: func() Message { return &CardPlayed{} }},
	KindFoulGiven:        {payload: true, required: []string{"from", "to", "cards"}, new: func() Message { return &FoulGiven{} }},
	KindDiscardPile:      {new: func() Message { return &DiscardPile{} }},
	KindPlayerWon:        {payload: true, required: []string{"player_id"}, new: func() Message { return &PlayerWon{} }},
	KindEndGame:          {payload: true, required: []string{"p_id"}, new: func() Message { return &EndGame{} }},
	KindAbortGame:        {new: func() Message { return &AbortGame{} }},
	KindError:            {payload: true, new: func() Message { return &Error{} }},
	KindPlayerAdded:      {payload: true, required: []string{"p_id"}, new: func() Message { return &PlayerAdded{} }},
	KindPlayerLeft:       {payload: true, required: []string{"p_id"}, new: func() Message { return &PlayerLeft{} }},
	KindSpecialEvent:     {payload: true, required: []string{"p_id", "card", "from"}, new: func() Message { return &SpecialEvent{} }},
	KindInvalidCard:      {payload: true, required: []string{"p_id"}, new: func() Message { return &InvalidCard{} }},
	KindInvalidPlayer:    {new: func() Message { return &InvalidPlayer{} }},
}

// tags used by other server builds for the same variants
var kindAliases = map[string]Kind{
	"TurnChanged":   KindNextTurn,
	"PileDiscarded": KindDiscardPile,
}

var nullPayload = []byte("null")

// Decode converts one inbound frame into a typed message. A frame is either a
// bare JSON string naming the kind, or an object with exactly one key mapping
// the kind to its payload. Unrecognised kinds decode to *Unknown without error.
func Decode(frame []byte) (Message, error) {
	tag, payload, err := Split(frame)
	if err != nil {
		return nil, err
	}

	kind, ok := lookupKind(tag)
	if !ok {
		return &Unknown{Tag: tag, Payload: payload}, nil
	}
	v := variants[kind]
	msg := v.new()

	if payload == nil || bytes.Equal(bytes.TrimSpace(payload), nullPayload) {
		if v.payload {
			return nil, errors.Wrapf(ErrInvalidPayload, "%s requires a payload", tag)
		}
		return msg, nil
	}

	if len(v.required) > 0 {
		var fields map[string]jsoniter.RawMessage
		if err := jsoniter.Unmarshal(payload, &fields); err != nil {
			return nil, errors.Wrapf(ErrInvalidPayload, "%s payload is not an object: %v", tag, err)
		}
		for _, key := range v.required {
			if _, present := fields[key]; !present {
				return nil, errors.Wrapf(ErrInvalidPayload, "%s payload is missing %q", tag, key)
			}
		}
	}
	if err := jsoniter.Unmarshal(payload, msg); err != nil {
		return nil, errors.Wrapf(ErrInvalidPayload, "%s: %v", tag, err)
	}
	return msg, nil
}

// Split returns the tag and the raw payload of a frame. The payload is nil
// for bare-tag frames.
func Split(frame []byte) (string, jsoniter.RawMessage, error) {
	trimmed := bytes.TrimSpace(frame)
	if len(trimmed) == 0 || !jsoniter.Valid(trimmed) {
		return "", nil, ErrMalformedFrame
	}

	switch trimmed[0] {
	case '"':
		var tag string
		if err := jsoniter.Unmarshal(trimmed, &tag); err != nil {
			return "", nil, errors.Wrap(ErrMalformedFrame, err.Error())
		}
		if tag == "" {
			return "", nil, errors.Wrap(ErrInvalidShape, "empty tag")
		}
		return tag, nil, nil
	case '{':
		var obj map[string]jsoniter.RawMessage
		if err := jsoniter.Unmarshal(trimmed, &obj); err != nil {
			return "", nil, errors.Wrap(ErrMalformedFrame, err.Error())
		}
		if len(obj) != 1 {
			return "", nil, errors.Wrapf(ErrInvalidShape, "object has %d keys", len(obj))
		}
		for tag, payload := range obj {
			if tag == "" {
				return "", nil, errors.Wrap(ErrInvalidShape, "empty tag")
			}
			return tag, payload, nil
		}
	}
	return "", nil, ErrInvalidShape
}

func lookupKind(tag string) (Kind, bool) {
	if alias, ok := kindAliases[tag]; ok {
		return alias, true
	}
	k := Kind(tag)
	if _, ok := variants[k]; ok {
		return k, true
	}
	return KindUnknown, false
}
