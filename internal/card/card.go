package card

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

type Suit string

const (
	Heart   Suit = "Heart"
	Diamond Suit = "Diamond"
	Spade   Suit = "Spade"
	Club    Suit = "Club"
)

type Rank string

const (
	Two   Rank = "Two"
	Three Rank = "Three"
	Four  Rank = "Four"
	Five  Rank = "Five"
	Six   Rank = "Six"
	Seven Rank = "Seven"
	Eight Rank = "Eight"
	Nine  Rank = "Nine"
	Ten   Rank = "Ten"
	Jack  Rank = "Jack"
	Queen Rank = "Queen"
	King  Rank = "King"
	Ace   Rank = "Ace"
)

var (
	ErrInvalidRank  = errors.New("invalid card rank")
	ErrInvalidSuit  = errors.New("invalid card suit")
	ErrInvalidIndex = errors.New("invalid card index")
)

var (
	// index order used by the integer card encoding: A,2..K within a suit
	indexRanks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}
	indexSuits = []Suit{Spade, Heart, Diamond, Club}

	rankAliases = map[string]Rank{
		"2": Two, "3": Three, "4": Four, "5": Five, "6": Six, "7": Seven,
		"8": Eight, "9": Nine, "10": Ten, "t": Ten, "j": Jack, "q": Queen,
		"k": King, "a": Ace,
	}
	shortRanks = map[Rank]string{
		Two: "2", Three: "3", Four: "4", Five: "5", Six: "6", Seven: "7",
		Eight: "8", Nine: "9", Ten: "10", Jack: "J", Queen: "Q", King: "K", Ace: "A",
	}
	prettySuits = map[Suit]string{
		Spade:   "♠",
		Heart:   "♥",
		Diamond: "♦",
		Club:    "♣",
	}
)

// Card is identified by rank and suit. The zero value is not a valid card.
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

func New(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// ParseRank accepts the canonical names ("Ace") and the short forms ("A", "10", "T").
func ParseRank(s string) (Rank, error) {
	v := strings.TrimSpace(s)
	for _, r := range indexRanks {
		if strings.EqualFold(v, string(r)) {
			return r, nil
		}
	}
	if r, ok := rankAliases[strings.ToLower(v)]; ok {
		return r, nil
	}
	return "", errors.Wrapf(ErrInvalidRank, "[%s]", s)
}

func ParseSuit(s string) (Suit, error) {
	v := strings.TrimSpace(s)
	for _, suit := range indexSuits {
		if strings.EqualFold(v, string(suit)) {
			return suit, nil
		}
	}
	return "", errors.Wrapf(ErrInvalidSuit, "[%s]", s)
}

// FromIndex decodes the integer encoding 0..51 (suit = index/13, rank = index%13).
func FromIndex(idx int) (Card, error) {
	if idx < 0 || idx >= len(indexRanks)*len(indexSuits) {
		return Card{}, errors.Wrapf(ErrInvalidIndex, "[%d]", idx)
	}
	return Card{Rank: indexRanks[idx%13], Suit: indexSuits[idx/13]}, nil
}

// Index is the inverse of FromIndex. It returns -1 for an invalid card.
func (c Card) Index() int {
	r, s := -1, -1
	for i, rank := range indexRanks {
		if rank == c.Rank {
			r = i
		}
	}
	for i, suit := range indexSuits {
		if suit == c.Suit {
			s = i
		}
	}
	if r < 0 || s < 0 {
		return -1
	}
	return s*13 + r
}

func (c Card) Valid() bool {
	return c.Index() >= 0
}

func (c Card) String() string {
	short, ok := shortRanks[c.Rank]
	if !ok {
		short = string(c.Rank)
	}
	suit, ok := prettySuits[c.Suit]
	if !ok {
		suit = string(c.Suit)
	}
	return short + suit
}

func (c Card) MarshalJSON() ([]byte, error) {
	if !c.Valid() {
		return nil, errors.Errorf("cannot encode invalid card %+v", c)
	}
	type wire Card
	return jsoniter.Marshal(wire(c))
}

func (c *Card) UnmarshalJSON(b []byte) error {
	if strings.TrimSpace(string(b)) == "null" {
		return errors.New("card must not be null")
	}
	var idx int
	if err := jsoniter.Unmarshal(b, &idx); err == nil {
		decoded, err := FromIndex(idx)
		if err != nil {
			return err
		}
		*c = decoded
		return nil
	}

	var w struct {
		Rank string `json:"rank"`
		Suit string `json:"suit"`
	}
	if err := jsoniter.Unmarshal(b, &w); err != nil {
		return errors.Wrap(err, "card must be an object {rank, suit} or an integer index")
	}
	rank, err := ParseRank(w.Rank)
	if err != nil {
		return err
	}
	suit, err := ParseSuit(w.Suit)
	if err != nil {
		return err
	}
	*c = Card{Rank: rank, Suit: suit}
	return nil
}

// Cards formats a list of cards for logs and text rendering.
func Cards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
