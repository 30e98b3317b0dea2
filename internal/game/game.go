// internal/game/game.go
package game

import "doppelkopf/internal/deck"

// Fixed parameters of a four-player Doppelkopf game.
const (
	NumSeats      = 4
	CardsPerSeat  = deck.Size / NumSeats // 12
	TricksPerGame = CardsPerSeat
	CardsPerTrick = NumSeats
	TotalPoints   = 240
	HalfPoints    = TotalPoints / 2
)

// SeatNames are the fixed display names of the four seats.
var SeatNames = [NumSeats]string{"Steve", "Mary", "Todd", "Jane"}

// NextSeat returns the seat to the left of i in the fixed ring.
func NextSeat(i int) int {
	return (i + 1) % NumSeats
}

// PrevSeat returns the seat to the right of i in the fixed ring.
func PrevSeat(i int) int {
	return (i + NumSeats - 1) % NumSeats
}

// PlayOrder returns all four seats in ring order starting from leader.
func PlayOrder(leader int) [NumSeats]int {
	var order [NumSeats]int
	for i := range order {
		order[i] = (leader + i) % NumSeats
	}
	return order
}
