// internal/server/server.go
package server

import (
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"doppelkopf/internal/game"
	"doppelkopf/internal/wire"
)

// pollInterval paces the readiness barrier while no seat is occupied.
const pollInterval = 100 * time.Millisecond

// Config carries the server's startup parameters.
type Config struct {
	// Addr is the TCP listen address, e.g. "127.0.0.1:4711".
	Addr string
	// Logger receives all server logs. Required.
	Logger *logrus.Logger
	// Seed seeds the dealing RNG; 0 means time-seeded.
	Seed int64
}

// Server owns the authoritative game state and drives four connected clients
// through games of Doppelkopf. One goroutine accepts connections, another
// runs the game loop; both stop cooperatively through a shared flag checked
// between discrete steps. The seat table has its own lock, acquired before
// any per-socket I/O and never after it.
type Server struct {
	log  *logrus.Logger
	addr string
	rng  *rand.Rand

	players []*game.Player
	re      *game.Team
	kontra  *game.Team

	seatMu   sync.Mutex
	conns    [game.NumSeats]net.Conn
	sessions [game.NumSeats]uuid.UUID

	stopMu   sync.Mutex
	stopping bool

	lifecycleMu sync.Mutex
	ln          net.Listener
	acceptDone  chan struct{}
	playDone    chan struct{}
}

// New builds a stopped server. Call Start to bind and begin accepting.
func New(cfg Config) *Server {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	re, kontra := game.NewTeams()
	return &Server{
		log:     cfg.Logger,
		addr:    cfg.Addr,
		rng:     rand.New(rand.NewSource(seed)),
		players: game.NewPlayers(),
		re:      re,
		kontra:  kontra,
	}
}

// Addr returns the bound listen address. Only valid while running.
func (s *Server) Addr() string {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Start binds the listener and launches the accept and game loops. Starting
// a running server is an error.
func (s *Server) Start() error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()
	if s.ln != nil {
		return errors.New("server: already running")
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "server: bind %s", s.addr)
	}
	s.ln = ln
	s.setStopping(false)
	s.acceptDone = make(chan struct{})
	s.playDone = make(chan struct{})
	go s.acceptLoop(ln, s.acceptDone)
	go s.playLoop(s.playDone)
	s.log.WithField("addr", ln.Addr().String()).Info("server started")
	return nil
}

// Stop shuts the server down from any goroutine. It raises the stop flag,
// opens a throwaway loopback connection to unblock the pending accept, waits
// for both loops to drain and closes every socket. The loops themselves
// never call Stop synchronously; they request it through a detached
// goroutine, so Stop never waits on the goroutine it runs on.
func (s *Server) Stop() error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()
	if s.ln == nil {
		return errors.New("server: not running")
	}
	s.setStopping(true)
	s.unblockAccept()
	<-s.acceptDone
	<-s.playDone
	s.seatMu.Lock()
	for seat, conn := range s.conns {
		if conn != nil {
			conn.Close()
			s.conns[seat] = nil
		}
	}
	s.seatMu.Unlock()
	s.ln.Close()
	s.ln = nil
	s.log.Info("server stopped")
	return nil
}

// requestStop triggers a shutdown without joining the calling goroutine.
func (s *Server) requestStop() {
	go func() {
		if err := s.Stop(); err != nil {
			s.log.WithError(err).Debug("self-stop skipped")
		}
	}()
}

// unblockAccept dials the server's own listener so a pending Accept returns.
// The accept loop answers with a disconnect notice because the stop flag is
// already raised. The reply is read under a deadline: when the accept loop is
// already gone the dialed connection sits unanswered in the listen backlog,
// and shutdown must not wait on it.
func (s *Server) unblockAccept() {
	conn, err := net.Dial("tcp", s.ln.Addr().String())
	if err != nil {
		s.log.WithError(err).Debug("loopback dial failed, accept loop may already be down")
		return
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	env, err := wire.Receive(conn)
	if err != nil {
		s.log.WithError(err).Debug("no reply on loopback connection")
		return
	}
	if env.Type != wire.TypeDisconnect {
		s.log.WithField("type", env.Type.String()).Error("expected disconnect notice on loopback connection")
	}
}

func (s *Server) setStopping(v bool) {
	s.stopMu.Lock()
	s.stopping = v
	s.stopMu.Unlock()
}

func (s *Server) isStopping() bool {
	s.stopMu.Lock()
	defer s.stopMu.Unlock()
	return s.stopping
}

// acceptLoop hands each incoming connection the first free seat, or a
// disconnect notice when the table is full or the server is stopping.
func (s *Server) acceptLoop(ln net.Listener, done chan struct{}) {
	defer close(done)
	for {
		if s.isStopping() {
			return
		}
		conn, err := ln.Accept()
		if err != nil {
			if s.isStopping() {
				return
			}
			s.log.WithError(err).Error("accept failed")
			s.requestStop()
			return
		}
		if s.isStopping() {
			s.refuse(conn)
			continue
		}
		seat := s.freeSeat()
		if seat < 0 {
			s.log.WithField("remote", conn.RemoteAddr().String()).Info("table full, refusing connection")
			s.refuse(conn)
			continue
		}
		if err := s.seatClient(seat, conn); err != nil {
			s.log.WithError(err).WithField("seat", seat).Error("handshake failed")
			conn.Close()
		}
	}
}

// refuse sends a disconnect notice and closes the connection immediately.
func (s *Server) refuse(conn net.Conn) {
	if err := wire.Send(conn, wire.TypeDisconnect, nil); err != nil {
		s.log.WithError(err).Debug("disconnect notice not delivered")
	}
	conn.Close()
}

// freeSeat returns the lowest unoccupied seat, or -1.
func (s *Server) freeSeat() int {
	s.seatMu.Lock()
	defer s.seatMu.Unlock()
	for seat, conn := range s.conns {
		if conn == nil {
			return seat
		}
	}
	return -1
}

// seatClient runs the session handshake: seat assignment, seat roster, team
// roster. The connection is stored before the rosters go out so the game
// loop's next barrier poll includes the new seat.
func (s *Server) seatClient(seat int, conn net.Conn) error {
	session := uuid.New()
	assignment := wire.SeatAssignment{
		Seat:      seat,
		Name:      game.SeatNames[seat],
		SessionID: session,
	}
	if err := wire.Send(conn, wire.TypeSeatAssignment, assignment); err != nil {
		return err
	}
	s.seatMu.Lock()
	s.conns[seat] = conn
	s.sessions[seat] = session
	s.seatMu.Unlock()
	if err := wire.Send(conn, wire.TypeSeatRoster, wire.SeatRoster{Names: game.SeatNames}); err != nil {
		s.releaseSeat(seat)
		return err
	}
	if err := wire.Send(conn, wire.TypeTeamRoster, wire.TeamRoster{Re: s.re.Name, Kontra: s.kontra.Name}); err != nil {
		s.releaseSeat(seat)
		return err
	}
	s.log.WithFields(logrus.Fields{
		"seat":    seat,
		"name":    game.SeatNames[seat],
		"session": session.String(),
		"remote":  conn.RemoteAddr().String(),
	}).Info("client seated")
	return nil
}

// releaseSeat frees a seat so the next connection can claim it.
func (s *Server) releaseSeat(seat int) {
	s.seatMu.Lock()
	if s.conns[seat] != nil {
		s.conns[seat].Close()
		s.conns[seat] = nil
	}
	s.seatMu.Unlock()
}

// connAt returns the socket currently occupying a seat, or nil.
func (s *Server) connAt(seat int) net.Conn {
	s.seatMu.Lock()
	defer s.seatMu.Unlock()
	return s.conns[seat]
}

// sendSeat delivers one message to a single seat.
func (s *Server) sendSeat(seat int, t wire.Type, payload interface{}) error {
	conn := s.connAt(seat)
	if conn == nil {
		return errors.Errorf("server: seat %d has no connection", seat)
	}
	return wire.Send(conn, t, payload)
}
