// internal/server/server_test.go
package server

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doppelkopf/internal/client"
	"doppelkopf/internal/deck"
	"doppelkopf/internal/game"
	"doppelkopf/internal/wire"
)

// legalAgent plays the first card the playable mask offers and records the
// game outcomes it is told about.
type legalAgent struct {
	mu    sync.Mutex
	games []wire.GameCompleted
}

func (a *legalAgent) PickCard(state *game.Snapshot, excluded []int) int {
	mask := game.PlayableMask(state.Lead(), state.Hand)
	for t := 0; t < deck.NumTypes; t++ {
		if mask[t] && !excludes(excluded, t) {
			return t
		}
	}
	for _, c := range state.Hand {
		if !excludes(excluded, c.Type) {
			return c.Type
		}
	}
	return 0
}

func (a *legalAgent) OnCardAccepted(deck.Card) {}

func (a *legalAgent) OnCardRejected(game.Feedback, int) {}

func (a *legalAgent) OnTrickCompleted(bool, bool, int) {}

func (a *legalAgent) OnGameCompleted(won bool, score int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.games = append(a.games, wire.GameCompleted{Won: won, Score: score})
}

func (a *legalAgent) results() []wire.GameCompleted {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]wire.GameCompleted(nil), a.games...)
}

func excludes(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func startServer(t *testing.T, seed int64) *Server {
	t.Helper()
	srv := New(Config{Addr: "127.0.0.1:0", Logger: quietLogger(), Seed: seed})
	require.NoError(t, srv.Start())
	return srv
}

func connectedClient(t *testing.T, addr string) (*client.Client, *legalAgent) {
	t.Helper()
	agent := &legalAgent{}
	c := client.New(agent, quietLogger())
	require.NoError(t, c.Connect(addr))
	return c, agent
}

func TestFullTablePlaysGames(t *testing.T) {
	const games = 2
	srv := startServer(t, 7)

	clients := make([]*client.Client, game.NumSeats)
	agents := make([]*legalAgent, game.NumSeats)
	for i := range clients {
		clients[i], agents[i] = connectedClient(t, srv.Addr())
	}

	errs := make(chan error, game.NumSeats)
	for _, c := range clients {
		go func(c *client.Client) {
			errs <- c.PlayGames(games)
		}(c)
	}
	for range clients {
		require.NoError(t, <-errs)
	}

	wins, total := 0, 0
	for i, c := range clients {
		stats := c.Stats()
		assert.Equal(t, games, stats.GamesCompleted, "seat %d", i)
		assert.Equal(t, games*game.TricksPerGame, stats.CardsAccepted, "seat %d plays one card per trick", i)
		assert.GreaterOrEqual(t, stats.CardsPicked, stats.CardsAccepted, "seat %d", i)
		assert.Equal(t, games, stats.GamesWon+stats.GamesLost, "seat %d", i)
		wins += stats.GamesWon

		for _, result := range agents[i].results() {
			total += result.Score
			if result.Won {
				assert.GreaterOrEqual(t, result.Score, game.HalfPoints, "a winning team holds the majority")
			} else {
				assert.LessOrEqual(t, result.Score, game.HalfPoints, "a losing team never exceeds half the pool")
			}
		}
	}
	// Exactly one two-seat team wins each game, and each game's two team
	// scores are reported twice each, summing to twice the pool.
	assert.Equal(t, 2*games, wins)
	assert.Equal(t, 2*games*game.TotalPoints, total)

	for _, c := range clients {
		require.NoError(t, c.Disconnect())
	}
	require.NoError(t, srv.Stop())
}

func TestFifthConnectionIsRefused(t *testing.T) {
	srv := startServer(t, 11)

	clients := make([]*client.Client, game.NumSeats)
	for i := range clients {
		clients[i], _ = connectedClient(t, srv.Addr())
	}
	errs := make(chan error, game.NumSeats)
	for _, c := range clients {
		go func(c *client.Client) {
			errs <- c.PlayAll()
		}(c)
	}

	// All four seats stay occupied while the table plays, so the extra
	// connection is turned away with a disconnect notice.
	extra, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	defer extra.Close()
	env, err := wire.Receive(extra)
	require.NoError(t, err)
	assert.Equal(t, wire.TypeDisconnect, env.Type)

	for _, c := range clients {
		c.Stop()
	}
	for range clients {
		require.NoError(t, <-errs)
	}
	for _, c := range clients {
		require.NoError(t, c.Disconnect())
	}
	require.NoError(t, srv.Stop())
}

func TestDepartedSeatIsReassigned(t *testing.T) {
	srv := startServer(t, 23)

	clients := make([]*client.Client, game.NumSeats)
	for i := range clients {
		clients[i], _ = connectedClient(t, srv.Addr())
	}
	leaver := clients[2]
	leaverSeat := leaver.Seat()

	errs := make(chan error, game.NumSeats)
	for i, c := range clients {
		if i == 2 {
			continue
		}
		go func(c *client.Client) {
			errs <- c.PlayGames(1)
		}(c)
	}

	// The departing client never signals readiness; the barrier reads its
	// disconnect, frees the seat and keeps answering the rest with not-ready.
	require.NoError(t, leaver.Disconnect())

	// The seat opens up only once the barrier has consumed the disconnect,
	// so the replacement may be turned away at first.
	var replacement *client.Client
	require.Eventually(t, func() bool {
		c := client.New(&legalAgent{}, quietLogger())
		if err := c.Connect(srv.Addr()); err != nil {
			return false
		}
		replacement = c
		return true
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, leaverSeat, replacement.Seat())
	go func() {
		errs <- replacement.PlayGames(1)
	}()

	for i := 0; i < game.NumSeats; i++ {
		require.NoError(t, <-errs)
	}
	assert.Equal(t, 1, replacement.Stats().GamesCompleted)

	for i, c := range clients {
		if i == 2 {
			continue
		}
		require.NoError(t, c.Disconnect())
	}
	require.NoError(t, replacement.Disconnect())
	require.NoError(t, srv.Stop())
}

func TestProtocolViolationStopsServer(t *testing.T) {
	srv := startServer(t, 31)

	clients := make([]*client.Client, 0, game.NumSeats-1)
	for i := 0; i < game.NumSeats-1; i++ {
		c, _ := connectedClient(t, srv.Addr())
		clients = append(clients, c)
	}

	// The fourth seat is a raw connection that will break protocol once the
	// game is underway.
	rogue, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	defer rogue.Close()
	var assignment wire.SeatAssignment
	require.NoError(t, wire.ExpectDecode(rogue, wire.TypeSeatAssignment, &assignment))
	var roster wire.SeatRoster
	require.NoError(t, wire.ExpectDecode(rogue, wire.TypeSeatRoster, &roster))
	var teams wire.TeamRoster
	require.NoError(t, wire.ExpectDecode(rogue, wire.TypeTeamRoster, &teams))

	errs := make(chan error, len(clients))
	for _, c := range clients {
		go func(c *client.Client) {
			errs <- c.PlayGames(1)
		}(c)
	}

	for {
		require.NoError(t, wire.Send(rogue, wire.TypeReady, nil))
		env, err := wire.Receive(rogue)
		require.NoError(t, err)
		if env.Type == wire.TypeReady {
			break
		}
		require.Equal(t, wire.TypeNotReady, env.Type)
	}
	var deal wire.HandDeal
	require.NoError(t, wire.ExpectDecode(rogue, wire.TypeHandDeal, &deal))

	// An unsolicited message where the game loop expects a chosen card is a
	// protocol violation; the server aborts the game and takes itself down.
	require.NoError(t, wire.Send(rogue, wire.TypeNotReady, nil))

	// The self-stop closes every seat, so the honest clients fail mid-game.
	for range clients {
		assert.Error(t, <-errs)
	}

	// The seats were closed from inside Stop, so the self-initiated shutdown
	// holds the lifecycle lock; a second Stop must come back promptly with a
	// not-running error instead of hanging.
	stopped := make(chan error, 1)
	go func() {
		stopped <- srv.Stop()
	}()
	select {
	case err := <-stopped:
		assert.Error(t, err, "the server already stopped itself")
	case <-time.After(5 * time.Second):
		t.Fatal("self-initiated shutdown did not complete")
	}

	// The lifecycle stays usable after a self-stop.
	require.NoError(t, srv.Start())
	require.NoError(t, srv.Stop())
}

func TestUnblockAcceptDoesNotWaitForever(t *testing.T) {
	// A listener with no accept loop behind it leaves the loopback nudge
	// unanswered in the backlog; the read deadline must bound the wait.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := New(Config{Logger: quietLogger()})
	srv.ln = ln

	done := make(chan struct{})
	go func() {
		srv.unblockAccept()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("loopback nudge waited on a reply that can never come")
	}
}

func TestStopWithEmptyTable(t *testing.T) {
	srv := startServer(t, 0)
	assert.NotEmpty(t, srv.Addr())

	// Let the play loop reach its idle poll at least once.
	time.Sleep(pollInterval / 2)
	require.NoError(t, srv.Stop())
	assert.Empty(t, srv.Addr(), "address is only valid while running")

	assert.Error(t, srv.Stop(), "stopping a stopped server fails")
	assert.Error(t, New(Config{Logger: quietLogger()}).Stop())
}

func TestStartTwiceFails(t *testing.T) {
	srv := startServer(t, 0)
	assert.Error(t, srv.Start())
	require.NoError(t, srv.Stop())

	// A stopped server can be started again on a fresh port.
	require.NoError(t, srv.Start())
	require.NoError(t, srv.Stop())
}
