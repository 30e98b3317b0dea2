// internal/game/team.go
package game

import (
	"fmt"
	"strings"

	"doppelkopf/internal/deck"
)

// TeamID is a seat's (possibly believed) team affiliation. The zero value
// means the affiliation has not been revealed to the observer yet.
type TeamID uint8

const (
	TeamUnknown TeamID = iota
	TeamRe
	TeamKontra
)

var teamNames = [...]string{"Unknown", "Re", "Kontra"}

func (t TeamID) String() string {
	if int(t) < len(teamNames) {
		return teamNames[t]
	}
	return fmt.Sprintf("TeamID(%d)", uint8(t))
}

// Opponent returns the opposing team id. Unknown has no opponent.
func (t TeamID) Opponent() TeamID {
	switch t {
	case TeamRe:
		return TeamKontra
	case TeamKontra:
		return TeamRe
	default:
		return TeamUnknown
	}
}

// Team is one of the two scoring parties of a game. Its score is recomputed
// from the won tricks on demand, never maintained incrementally, so it cannot
// drift from the trick record.
type Team struct {
	ID        TeamID
	Name      string
	Members   []int
	wonTricks [][]deck.Card
}

// NewTeams returns the fresh Re and Kontra teams for a game.
func NewTeams() (re, kontra *Team) {
	re = &Team{ID: TeamRe, Name: "Re"}
	kontra = &Team{ID: TeamKontra, Name: "Kontra"}
	return re, kontra
}

// Reset clears membership and trick record between games.
func (t *Team) Reset() {
	t.Members = t.Members[:0]
	t.wonTricks = t.wonTricks[:0]
}

// AddMember records a seat as belonging to this team for the current game.
func (t *Team) AddMember(seat int) {
	t.Members = append(t.Members, seat)
}

// AddTrick credits a completed trick's cards to this team.
func (t *Team) AddTrick(stack []deck.Card) {
	trick := make([]deck.Card, len(stack))
	copy(trick, stack)
	t.wonTricks = append(t.wonTricks, trick)
}

// Score sums the point values of every trick this team has won.
func (t *Team) Score() int {
	score := 0
	for _, trick := range t.wonTricks {
		score += TrickValue(trick)
	}
	return score
}

func (t *Team) String() string {
	names := make([]string, len(t.Members))
	for i, seat := range t.Members {
		names[i] = SeatNames[seat]
	}
	return fmt.Sprintf("%s (%s)", t.Name, strings.Join(names, ", "))
}
