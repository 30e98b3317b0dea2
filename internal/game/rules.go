// internal/game/rules.go
package game

import "doppelkopf/internal/deck"

// The rule engine is pure: every function here works only on its arguments.

// canFollow reports whether any card in hand belongs to the lead card's
// comparison class (trump, or the lead's plain suit).
func canFollow(hand []deck.Card, lead deck.Card) bool {
	for _, c := range hand {
		if lead.IsTrump {
			if c.IsTrump {
				return true
			}
		} else if !c.IsTrump && c.Suit == lead.Suit {
			return true
		}
	}
	return false
}

// followsClass reports whether c belongs to the lead card's comparison class.
func followsClass(c, lead deck.Card) bool {
	if lead.IsTrump {
		return c.IsTrump
	}
	return !c.IsTrump && c.Suit == lead.Suit
}

// FeedbackFor judges a proposed card type against a hand and the trick's lead
// card. A nil lead means the holder is leading and may play anything it holds.
func FeedbackFor(cardType int, hand []deck.Card, lead *deck.Card) Feedback {
	if !holdsType(hand, cardType) {
		return NotInHand
	}
	if lead == nil {
		return Ok
	}
	if !canFollow(hand, *lead) {
		return OkCouldNotFollowSuit
	}
	if followsClass(deck.ByType(cardType), *lead) {
		return Ok
	}
	return NotAllowed
}

func holdsType(hand []deck.Card, cardType int) bool {
	for _, c := range hand {
		if c.Type == cardType {
			return true
		}
	}
	return false
}

// beats reports whether challenger takes the trick from the card currently
// winning it, given the suit led this trick. On equal rank (the second
// physical copy of the winning card) the incumbent stands.
func beats(challenger, incumbent deck.Card, leadSuit deck.Suit) bool {
	switch {
	case challenger.IsTrump && incumbent.IsTrump:
		return challenger.Rank < incumbent.Rank
	case !challenger.IsTrump && !incumbent.IsTrump:
		if challenger.Suit == leadSuit && incumbent.Suit == leadSuit {
			return challenger.Rank < incumbent.Rank
		}
		// Off-suit plain cards never win; the incumbent is always trump or
		// lead suit when the fold starts from the lead card.
		return challenger.Suit == leadSuit
	case challenger.IsTrump:
		return true
	default:
		return false
	}
}

// TrickWinner folds over a trick's cards in play order and returns the index
// of the winning card within the stack. The first card fixes the lead suit.
func TrickWinner(stack []deck.Card) int {
	if len(stack) == 0 {
		return -1
	}
	leadSuit := stack[0].Suit
	bestIndex := 0
	for i := 1; i < len(stack); i++ {
		if beats(stack[i], stack[bestIndex], leadSuit) {
			bestIndex = i
		}
	}
	return bestIndex
}

// TrickValue sums the point values of a trick's cards.
func TrickValue(stack []deck.Card) int {
	value := 0
	for _, c := range stack {
		value += c.Value
	}
	return value
}

// ValidDeal reports whether a deal may stand. A deal is invalid iff a single
// hand holds both physical copies of the Queen of Clubs, which would collapse
// team Re onto one seat.
func ValidDeal(hands [][]deck.Card) bool {
	for _, hand := range hands {
		queens := 0
		for _, c := range hand {
			if c.Type == deck.QueenOfClubs {
				queens++
			}
		}
		if queens == deck.CopiesPerType {
			return false
		}
	}
	return true
}

// PlayableMask marks every card type the hand could legally play against the
// given lead. Snapshot consumers use it for move selection; the server
// enforces legality through FeedbackFor directly.
func PlayableMask(lead *deck.Card, hand []deck.Card) [deck.NumTypes]bool {
	var mask [deck.NumTypes]bool
	for t := 0; t < deck.NumTypes; t++ {
		if FeedbackFor(t, hand, lead).Accepted() {
			mask[t] = true
		}
	}
	return mask
}
