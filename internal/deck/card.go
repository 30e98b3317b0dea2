// internal/deck/card.go
package deck

import "fmt"

// Suit identifies one of the four French suits.
type Suit uint8

const (
	Clubs Suit = iota
	Spades
	Hearts
	Diamonds
)

var suitNames = [...]string{"Clubs", "Spades", "Hearts", "Diamonds"}

func (s Suit) String() string {
	if int(s) < len(suitNames) {
		return suitNames[s]
	}
	return fmt.Sprintf("Suit(%d)", uint8(s))
}

const (
	// NumTypes is the number of distinct card types in the catalog.
	NumTypes = 24
	// CopiesPerType is how many physical copies of each type a deck holds.
	CopiesPerType = 2
	// Size is the number of physical cards in a full deck.
	Size = NumTypes * CopiesPerType

	// QueenOfClubs is the team-defining card type: its two holders form team Re.
	QueenOfClubs = 1
)

// Card is one of the 24 distinct card types. Rank orders cards within their
// comparison class (lower is stronger); Value is the card's scoring worth.
// All fields are fixed catalog data and never mutated.
type Card struct {
	Type    int  `json:"type"`
	Suit    Suit `json:"suit"`
	Number  int  `json:"number"`
	Rank    int  `json:"rank"`
	Value   int  `json:"value"`
	IsTrump bool `json:"isTrump"`
}

var numberNames = map[int]string{
	11: "Ace",
	12: "Jack",
	13: "Queen",
	14: "King",
}

// NumberName renders the face of a card number ("9", "10", "Ace", ...).
func NumberName(number int) string {
	if name, ok := numberNames[number]; ok {
		return name
	}
	return fmt.Sprintf("%d", number)
}

func (c Card) String() string {
	return fmt.Sprintf("%s of %s", NumberName(c.Number), c.Suit)
}

// Types is the immutable catalog of all 24 card types, indexed by Type.
var Types = [NumTypes]Card{
	{Type: 0, Suit: Hearts, Number: 10, Rank: 1, Value: 10, IsTrump: true},
	{Type: 1, Suit: Clubs, Number: 13, Rank: 2, Value: 3, IsTrump: true},
	{Type: 2, Suit: Spades, Number: 13, Rank: 3, Value: 3, IsTrump: true},
	{Type: 3, Suit: Hearts, Number: 13, Rank: 4, Value: 3, IsTrump: true},
	{Type: 4, Suit: Diamonds, Number: 13, Rank: 5, Value: 3, IsTrump: true},
	{Type: 5, Suit: Clubs, Number: 12, Rank: 6, Value: 2, IsTrump: true},
	{Type: 6, Suit: Spades, Number: 12, Rank: 7, Value: 2, IsTrump: true},
	{Type: 7, Suit: Hearts, Number: 12, Rank: 8, Value: 2, IsTrump: true},
	{Type: 8, Suit: Diamonds, Number: 12, Rank: 9, Value: 2, IsTrump: true},
	{Type: 9, Suit: Diamonds, Number: 11, Rank: 10, Value: 11, IsTrump: true},
	{Type: 10, Suit: Diamonds, Number: 10, Rank: 11, Value: 10, IsTrump: true},
	{Type: 11, Suit: Diamonds, Number: 14, Rank: 12, Value: 4, IsTrump: true},
	{Type: 12, Suit: Diamonds, Number: 9, Rank: 13, Value: 0, IsTrump: true},
	{Type: 13, Suit: Clubs, Number: 11, Rank: 1, Value: 11, IsTrump: false},
	{Type: 14, Suit: Clubs, Number: 10, Rank: 2, Value: 10, IsTrump: false},
	{Type: 15, Suit: Clubs, Number: 14, Rank: 3, Value: 4, IsTrump: false},
	{Type: 16, Suit: Clubs, Number: 9, Rank: 4, Value: 0, IsTrump: false},
	{Type: 17, Suit: Spades, Number: 11, Rank: 1, Value: 11, IsTrump: false},
	{Type: 18, Suit: Spades, Number: 10, Rank: 2, Value: 10, IsTrump: false},
	{Type: 19, Suit: Spades, Number: 14, Rank: 3, Value: 4, IsTrump: false},
	{Type: 20, Suit: Spades, Number: 9, Rank: 4, Value: 0, IsTrump: false},
	{Type: 21, Suit: Hearts, Number: 11, Rank: 1, Value: 11, IsTrump: false},
	{Type: 22, Suit: Hearts, Number: 14, Rank: 2, Value: 4, IsTrump: false},
	{Type: 23, Suit: Hearts, Number: 9, Rank: 3, Value: 0, IsTrump: false},
}

// ByType returns the catalog card for a type id.
func ByType(t int) Card {
	return Types[t]
}

// ValidType reports whether t is a catalog type id.
func ValidType(t int) bool {
	return t >= 0 && t < NumTypes
}

// New returns a full 48-card deck: two copies of every catalog type, in
// catalog order. Shuffling is the caller's concern.
func New() []Card {
	cards := make([]Card, 0, Size)
	for _, c := range Types {
		for i := 0; i < CopiesPerType; i++ {
			cards = append(cards, c)
		}
	}
	return cards
}
