// internal/game/feedback.go
package game

import "fmt"

// Feedback is the server's verdict on a proposed card.
type Feedback int

const (
	// NotInHand means the seat does not hold the proposed card. Takes
	// precedence over every legality check.
	NotInHand Feedback = iota
	// NotAllowed means the seat could follow the lead's class but the
	// proposed card is outside it.
	NotAllowed
	// Ok means the card is a legal play.
	Ok
	// OkCouldNotFollowSuit means the card is legal because the seat holds
	// nothing in the lead's class and may play freely.
	OkCouldNotFollowSuit
)

var feedbackNames = [...]string{"NotInHand", "NotAllowed", "Ok", "OkCouldNotFollowSuit"}

func (f Feedback) String() string {
	if f >= 0 && int(f) < len(feedbackNames) {
		return feedbackNames[f]
	}
	return fmt.Sprintf("Feedback(%d)", int(f))
}

// Accepted reports whether the verdict lets the card stand.
func (f Feedback) Accepted() bool {
	return f == Ok || f == OkCouldNotFollowSuit
}
