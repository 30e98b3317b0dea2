// internal/deck/supply.go
package deck

// Supply tracks how many copies of each card type remain unplayed. It is
// public knowledge: every seat sees the same counts in its snapshots.
type Supply [NumTypes]uint8

// NewSupply returns a supply with every type at its full copy count.
func NewSupply() Supply {
	var s Supply
	s.Reset()
	return s
}

// Reset restores every type to the full copy count.
func (s *Supply) Reset() {
	for i := range s {
		s[i] = CopiesPerType
	}
}

// Take records one copy of cardType as played. Taking below zero reports
// false and leaves the count untouched.
func (s *Supply) Take(cardType int) bool {
	if !ValidType(cardType) || s[cardType] == 0 {
		return false
	}
	s[cardType]--
	return true
}

// Remaining returns how many copies of cardType are still unplayed.
func (s *Supply) Remaining(cardType int) int {
	if !ValidType(cardType) {
		return 0
	}
	return int(s[cardType])
}
