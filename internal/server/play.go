// internal/server/play.go
package server

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"doppelkopf/internal/deck"
	"doppelkopf/internal/game"
	"doppelkopf/internal/wire"
)

// playLoop runs the start-of-round barrier and one game after another until
// the stop flag is raised. A protocol error during a game takes the whole
// server down; move legality errors never reach this level.
func (s *Server) playLoop(done chan struct{}) {
	defer close(done)
	gameNo := 1
	for {
		if s.isStopping() {
			return
		}
		if !s.readinessBarrier() {
			continue
		}
		if err := s.playGame(gameNo); err != nil {
			s.log.WithError(err).WithField("game", gameNo).Error("game aborted")
			s.requestStop()
			return
		}
		gameNo++
	}
}

// readinessBarrier polls every occupied seat for its intent and answers all
// of them with the outcome. A seat sending a disconnect is released and
// becomes reassignable; anything other than a ready signal is a protocol
// violation and releases the seat as well. The seat lock is held across the
// whole poll so no seat can be assigned mid-barrier; newcomers join the next
// poll. Returns true only when all four seats are occupied and agreed.
func (s *Server) readinessBarrier() bool {
	s.seatMu.Lock()
	occupied := 0
	allReady := true
	for seat, conn := range s.conns {
		if conn == nil {
			continue
		}
		env, err := wire.Receive(conn)
		if err != nil {
			s.log.WithError(err).WithField("seat", seat).Error("readiness poll failed, releasing seat")
			conn.Close()
			s.conns[seat] = nil
			allReady = false
			continue
		}
		switch env.Type {
		case wire.TypeReady:
			occupied++
		case wire.TypeDisconnect:
			s.log.WithFields(logrus.Fields{"seat": seat, "name": game.SeatNames[seat]}).Info("client left the table")
			conn.Close()
			s.conns[seat] = nil
			allReady = false
		default:
			s.log.WithFields(logrus.Fields{"seat": seat, "type": env.Type.String()}).Error("unexpected message at readiness barrier, releasing seat")
			conn.Close()
			s.conns[seat] = nil
			allReady = false
		}
	}
	proceed := occupied == game.NumSeats && allReady
	outcome := wire.TypeNotReady
	if proceed {
		outcome = wire.TypeReady
	}
	for seat, conn := range s.conns {
		if conn == nil {
			continue
		}
		if err := wire.Send(conn, outcome, nil); err != nil {
			s.log.WithError(err).WithField("seat", seat).Error("barrier outcome not delivered")
		}
	}
	s.seatMu.Unlock()
	if occupied == 0 {
		time.Sleep(pollInterval)
	}
	return proceed
}

// playGame drives one full game: deal, twelve tricks of four turns each, and
// the personalized game report. Any send/receive error aborts the game.
func (s *Server) playGame(gameNo int) error {
	supply := deck.NewSupply()
	game.Deal(s.rng, s.players, s.re, s.kontra)
	s.log.WithFields(logrus.Fields{
		"game":   gameNo,
		"re":     s.re.String(),
		"kontra": s.kontra.String(),
	}).Info("game started")

	for seat, p := range s.players {
		if err := s.sendSeat(seat, wire.TypeHandDeal, wire.HandDeal{Cards: p.Hand}); err != nil {
			return err
		}
	}

	stateIndex := 0
	queenCount := 0
	leader := s.rng.Intn(game.NumSeats)
	for trick := 0; trick < game.TricksPerGame; trick++ {
		winner, err := s.playTrick(trick, leader, &stateIndex, &queenCount, &supply)
		if err != nil {
			return err
		}
		leader = winner
	}
	return s.reportGame(gameNo)
}

// playTrick plays four turns from the given leader and resolves the trick.
// Returns the winning seat, which leads the next trick.
func (s *Server) playTrick(trick, leader int, stateIndex, queenCount *int, supply *deck.Supply) (int, error) {
	order := game.PlayOrder(leader)
	stack := make([]deck.Card, 0, game.CardsPerTrick)
	for turn := 0; turn < game.CardsPerTrick; turn++ {
		current := order[turn]
		if err := s.broadcastSnapshots(*stateIndex, stack, *supply, current, order, false); err != nil {
			return 0, err
		}
		*stateIndex++
		chosen, err := s.collectCard(current, trick, stack)
		if err != nil {
			return 0, err
		}
		s.players[current].RemoveFirst(chosen)
		stack = append(stack, deck.ByType(chosen))
		supply.Take(chosen)
		if err := s.propagateReveal(current, chosen, queenCount); err != nil {
			return 0, err
		}
	}

	// Terminal snapshot: the acting seat has wrapped around to the leader.
	if err := s.broadcastSnapshots(*stateIndex, stack, *supply, leader, order, true); err != nil {
		return 0, err
	}
	*stateIndex++

	winner := order[game.TrickWinner(stack)]
	winnerTeam := s.teamOf(s.players[winner].Team)
	winnerTeam.AddTrick(stack)
	value := game.TrickValue(stack)
	s.log.WithFields(logrus.Fields{
		"trick":  trick + 1,
		"winner": game.SeatNames[winner],
		"value":  value,
	}).Debug("trick completed")

	for seat, p := range s.players {
		won := seat == winner
		teammateWon := !won && p.IsTeammate(winner)
		report := wire.TrickCompleted{Won: won, TeammateWon: teammateWon, Value: value}
		if err := s.sendSeat(seat, wire.TypeTrickCompleted, report); err != nil {
			return 0, err
		}
	}
	return winner, nil
}

// broadcastSnapshots unicasts one decision point to every seat. The four
// snapshots share the sequence index and differ only in the hidden hand and
// the observer-relative team vector.
func (s *Server) broadcastSnapshots(index int, stack []deck.Card, supply deck.Supply, current int, order [game.NumSeats]int, terminal bool) error {
	for seat, p := range s.players {
		snap := game.NewSnapshot(index, p, stack, supply, current, order, terminal)
		if !snap.Valid() {
			s.log.WithFields(logrus.Fields{"seat": seat, "index": index}).Warn("snapshot failed validity check")
		}
		if err := s.sendSeat(seat, wire.TypeGameState, snap); err != nil {
			return err
		}
	}
	return nil
}

// collectCard blocks on the acting seat until it submits a legal card. Each
// rejection is answered with feedback and the same seat is polled again; the
// loop is deliberately unbounded, a stubborn agent can hold the table.
func (s *Server) collectCard(current, trick int, stack []deck.Card) (int, error) {
	var lead *deck.Card
	if len(stack) > 0 {
		lead = &stack[0]
	}
	conn := s.connAt(current)
	if conn == nil {
		return 0, errors.Errorf("server: seat %d has no connection", current)
	}
	for {
		var msg wire.ChosenCard
		if err := wire.ExpectDecode(conn, wire.TypeChosenCard, &msg); err != nil {
			return 0, err
		}
		fb := s.players[current].FeedbackFor(msg.CardType, lead)
		if err := wire.Send(conn, wire.TypeCardFeedback, wire.CardFeedback{Verdict: int(fb)}); err != nil {
			return 0, err
		}
		if fb.Accepted() {
			return msg.CardType, nil
		}
		s.log.WithFields(logrus.Fields{
			"seat":     current,
			"trick":    trick + 1,
			"cardType": msg.CardType,
			"verdict":  fb.String(),
		}).Debug("card rejected, seat must retry")
	}
}

// propagateReveal tells every non-acting seat whether the accepted card was
// the team-defining Queen of Clubs and updates each observer's beliefs. Once
// the second queen is on the table, every observer, including the seat that
// played it, can resolve the remaining unknowns by elimination.
func (s *Server) propagateReveal(current, chosen int, queenCount *int) error {
	wasQueen := chosen == deck.QueenOfClubs
	if wasQueen {
		*queenCount++
	}
	reveal := wire.TeamReveal{WasQueen: wasQueen, QueenCount: *queenCount}
	for seat, p := range s.players {
		if seat == current {
			continue
		}
		if wasQueen {
			p.PerceiveTeam(current, game.TeamRe)
			if *queenCount == deck.CopiesPerType {
				p.ResolveByElimination()
			}
		}
		if err := s.sendSeat(seat, wire.TypeTeamReveal, reveal); err != nil {
			return err
		}
	}
	if wasQueen && *queenCount == deck.CopiesPerType {
		s.players[current].ResolveByElimination()
	}
	return nil
}

// reportGame checks both team scores against the fixed point pool, picks the
// winner and sends every seat its personalized result. Consistency failures
// are logged loudly but never crash mid-protocol.
func (s *Server) reportGame(gameNo int) error {
	reScore := s.re.Score()
	kontraScore := s.kontra.Score()
	if reScore+kontraScore != game.TotalPoints {
		s.log.WithFields(logrus.Fields{
			"re":     reScore,
			"kontra": kontraScore,
			"total":  reScore + kontraScore,
		}).Error("illegal state: team scores do not sum to the point pool")
	}
	var winning game.TeamID
	switch {
	case reScore > game.HalfPoints:
		winning = game.TeamRe
	case kontraScore >= game.HalfPoints:
		winning = game.TeamKontra
	default:
		s.log.Error("illegal state: neither team reaches the majority threshold")
	}
	s.log.WithFields(logrus.Fields{
		"game":   gameNo,
		"winner": winning.String(),
		"re":     reScore,
		"kontra": kontraScore,
	}).Info("game completed")

	for seat, p := range s.players {
		report := wire.GameCompleted{
			Won:   winning != game.TeamUnknown && p.Team == winning,
			Score: s.teamOf(p.Team).Score(),
		}
		if err := s.sendSeat(seat, wire.TypeGameCompleted, report); err != nil {
			return err
		}
	}
	return nil
}

// teamOf maps a team id to the scoring entity.
func (s *Server) teamOf(id game.TeamID) *game.Team {
	if id == game.TeamRe {
		return s.re
	}
	return s.kontra
}
