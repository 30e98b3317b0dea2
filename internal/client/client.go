// internal/client/client.go
package client

import (
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"doppelkopf/internal/deck"
	"doppelkopf/internal/game"
	"doppelkopf/internal/wire"
)

// Client is one seat's session. It reacts to the server's messages, asks its
// Agent for a card when a snapshot marks its turn, and retries submissions
// the server rejects. Validation is server-authoritative; the client only
// relays feedback.
type Client struct {
	log   *logrus.Logger
	agent Agent

	conn    net.Conn
	seat    int
	name    string
	session uuid.UUID
	me      *game.Player
	names   [game.NumSeats]string

	stopMu   sync.Mutex
	stopping bool

	stats Stats
}

// New builds a disconnected client around an agent. The agent is required.
func New(agent Agent, log *logrus.Logger) *Client {
	return &Client{log: log, agent: agent, seat: -1}
}

// Seat returns the assigned seat index, -1 before Connect.
func (c *Client) Seat() int { return c.seat }

// Name returns the assigned seat name.
func (c *Client) Name() string { return c.name }

// Stats returns a copy of the running counters.
func (c *Client) Stats() Stats { return c.stats }

// Connect dials the server and runs the session handshake: seat assignment,
// seat roster, team roster.
func (c *Client) Connect(addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "client: dial %s", addr)
	}
	c.conn = conn

	var assignment wire.SeatAssignment
	if err := wire.ExpectDecode(conn, wire.TypeSeatAssignment, &assignment); err != nil {
		conn.Close()
		return err
	}
	var roster wire.SeatRoster
	if err := wire.ExpectDecode(conn, wire.TypeSeatRoster, &roster); err != nil {
		conn.Close()
		return err
	}
	var teams wire.TeamRoster
	if err := wire.ExpectDecode(conn, wire.TypeTeamRoster, &teams); err != nil {
		conn.Close()
		return err
	}

	c.seat = assignment.Seat
	c.name = assignment.Name
	c.session = assignment.SessionID
	c.names = roster.Names
	c.me = game.NewPlayer(c.seat)
	c.log.WithFields(logrus.Fields{
		"seat":    c.seat,
		"name":    c.name,
		"session": c.session.String(),
	}).Info("connected to server")
	return nil
}

// Stop asks the session to leave at the next game boundary.
func (c *Client) Stop() {
	c.stopMu.Lock()
	c.stopping = true
	c.stopMu.Unlock()
}

func (c *Client) isStopping() bool {
	c.stopMu.Lock()
	defer c.stopMu.Unlock()
	return c.stopping
}

// PlayGames plays exactly n games, then returns. The stop flag is honored at
// each game boundary.
func (c *Client) PlayGames(n int) error {
	if n <= 0 {
		return errors.Errorf("client: invalid number of games %d", n)
	}
	return c.run(n)
}

// PlayAll plays until the server disconnects or Stop is called.
func (c *Client) PlayAll() error {
	return c.run(0)
}

func (c *Client) run(limit int) error {
	c.stats = Stats{}
	for gameNo := 1; limit == 0 || gameNo <= limit; gameNo++ {
		if c.isStopping() {
			return nil
		}
		ok, err := c.playGame(gameNo)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	return nil
}

// playGame runs the readiness exchange and one full game. Returns false when
// the session ended cleanly (server disconnect or local stop).
func (c *Client) playGame(gameNo int) (bool, error) {
	proceed, err := c.awaitRound()
	if err != nil || !proceed {
		return false, err
	}
	c.log.WithFields(logrus.Fields{"seat": c.seat, "game": gameNo}).Debug("game starting")

	var deal wire.HandDeal
	if err := wire.ExpectDecode(c.conn, wire.TypeHandDeal, &deal); err != nil {
		return false, err
	}
	re, kontra := game.NewTeams()
	c.me.TakeCards(deal.Cards, re, kontra)

	queenCount := 0
	for trick := 0; trick < game.TricksPerGame; trick++ {
		if err := c.playTrick(trick, &queenCount); err != nil {
			return false, err
		}
	}

	var result wire.GameCompleted
	if err := wire.ExpectDecode(c.conn, wire.TypeGameCompleted, &result); err != nil {
		return false, err
	}
	c.stats.GamesCompleted++
	if result.Won {
		c.stats.GamesWon++
	} else {
		c.stats.GamesLost++
	}
	c.agent.OnGameCompleted(result.Won, result.Score)
	c.log.WithFields(logrus.Fields{
		"seat":  c.seat,
		"game":  gameNo,
		"won":   result.Won,
		"score": result.Score,
	}).Info("game completed")
	return true, nil
}

// awaitRound signals readiness until the server opens the round. Returns
// false when the server disconnects or a local stop is pending.
func (c *Client) awaitRound() (bool, error) {
	for {
		if c.isStopping() {
			return false, nil
		}
		if err := wire.Send(c.conn, wire.TypeReady, nil); err != nil {
			return false, err
		}
		env, err := wire.Receive(c.conn)
		if err != nil {
			return false, err
		}
		switch env.Type {
		case wire.TypeReady:
			return true, nil
		case wire.TypeNotReady:
			// Not everyone is seated and willing yet; signal again.
		case wire.TypeDisconnect:
			c.log.WithField("seat", c.seat).Info("server is closing the session")
			return false, nil
		default:
			return false, errors.Errorf("client: unexpected %s at readiness barrier", env.Type)
		}
	}
}

// playTrick consumes four decision points and the trick's resolution.
func (c *Client) playTrick(trick int, queenCount *int) error {
	for turn := 0; turn < game.CardsPerTrick; turn++ {
		var snap game.Snapshot
		if err := wire.ExpectDecode(c.conn, wire.TypeGameState, &snap); err != nil {
			return err
		}
		if snap.MyTurn(c.seat) {
			if err := c.submitCard(&snap, trick, queenCount); err != nil {
				return err
			}
			continue
		}
		var reveal wire.TeamReveal
		if err := wire.ExpectDecode(c.conn, wire.TypeTeamReveal, &reveal); err != nil {
			return err
		}
		if reveal.WasQueen {
			c.me.PerceiveTeam(snap.CurrentSeat, game.TeamRe)
			*queenCount = reveal.QueenCount
			if *queenCount == deck.CopiesPerType {
				c.me.ResolveByElimination()
			}
		}
	}

	var terminal game.Snapshot
	if err := wire.ExpectDecode(c.conn, wire.TypeGameState, &terminal); err != nil {
		return err
	}
	if !terminal.IsTerminal {
		return errors.Errorf("client: expected terminal snapshot, got index %d", terminal.Index)
	}

	var result wire.TrickCompleted
	if err := wire.ExpectDecode(c.conn, wire.TypeTrickCompleted, &result); err != nil {
		return err
	}
	c.agent.OnTrickCompleted(result.Won, result.TeammateWon, result.Value)
	return nil
}

// submitCard runs the propose/feedback retry loop for one decision point.
// Every rejected type joins the exclusion set handed to the next pick; the
// set is discarded once a card is accepted.
func (c *Client) submitCard(snap *game.Snapshot, trick int, queenCount *int) error {
	var excluded []int
	for {
		pick := c.agent.PickCard(snap, excluded)
		if contains(excluded, pick) {
			c.log.WithFields(logrus.Fields{
				"seat":     c.seat,
				"cardType": pick,
				"excluded": excluded,
			}).Error("agent proposed an excluded card type")
		}
		if err := wire.Send(c.conn, wire.TypeChosenCard, wire.ChosenCard{CardType: pick}); err != nil {
			return err
		}
		c.stats.CardsPicked++

		var feedback wire.CardFeedback
		if err := wire.ExpectDecode(c.conn, wire.TypeCardFeedback, &feedback); err != nil {
			return err
		}
		fb := game.Feedback(feedback.Verdict)
		if !fb.Accepted() {
			switch fb {
			case game.NotInHand:
				c.stats.NotInHand++
			case game.NotAllowed:
				c.stats.NotAllowed++
			}
			c.agent.OnCardRejected(fb, trick)
			excluded = append(excluded, pick)
			continue
		}

		c.stats.CardsAccepted++
		c.agent.OnCardAccepted(deck.ByType(pick))
		if !c.me.RemoveFirst(pick) {
			c.log.WithFields(logrus.Fields{"seat": c.seat, "cardType": pick}).Error("accepted card was not in the local hand")
		}
		if pick == deck.QueenOfClubs {
			// Our own reveal is not echoed back to us; count it locally.
			*queenCount++
			if *queenCount == deck.CopiesPerType {
				c.me.ResolveByElimination()
			}
		}
		return nil
	}
}

// Disconnect announces the intent to leave and closes the socket. Meant to
// be sent at a barrier point; the seat becomes reassignable on the server.
func (c *Client) Disconnect() error {
	if c.conn == nil {
		return nil
	}
	err := wire.Send(c.conn, wire.TypeDisconnect, nil)
	c.conn.Close()
	c.conn = nil
	c.log.WithField("seat", c.seat).Info("disconnected from server")
	return err
}

func contains(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
