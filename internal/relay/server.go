package relay

import (
	"log"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LucasMontenegro1/relay/internal/repository"
	irc "gopkg.in/irc.v3"
)

// Server is the composition root: one listener plus the repositories every
// session shares, passed by reference to each session rather than kept as
// process-wide singletons.
type Server struct {
	Logger Logger
	Name   string
	Debug  bool

	passwordHash []byte // nil if no PASS required
	operName     string
	operPass     string

	ln net.Listener

	nicks    *repository.MapRepository[string, *Session]
	channels *repository.MapRepository[string, *Channel]
	whowas   *whowasRepository

	lastID uint64

	mu sync.Mutex // not locked by any method; Run sets ln without it
}

// NewServer constructs a Server named name that requires no password;
// SetPassword configures one afterwards.
func NewServer(name string, logger Logger) *Server {
	if logger == nil {
		logger = log.New(logWriter{}, "", log.LstdFlags)
	}
	return &Server{
		Logger:   logger,
		Name:     name,
		nicks:    repository.NewMapRepository[string, *Session](),
		channels: repository.NewMapRepository[string, *Channel](),
		whowas:   newWhowasRepository(64),
	}
}

// logWriter discards everything written to it; NewServer's fallback logger
// writes through it when no logger is given, so that logger prints nothing.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) { return len(p), nil }

// SetPassword stores the bcrypt hash PASS is checked against. While no hash
// is set (nil), new sessions start straight in AwaitingNick (no PASS required).
func (srv *Server) SetPassword(hash []byte) {
	srv.passwordHash = hash
}

// SetOperator configures the single fixed operator credential pair OPER
// checks against.
func (srv *Server) SetOperator(name, pass string) {
	srv.operName = name
	srv.operPass = pass
}

func (srv *Server) prefix() *irc.Prefix {
	return &irc.Prefix{Name: srv.Name}
}

// Run accepts connections on ln until it errs or is closed, spawning one
// session per accepted connection: one reader, one writer goroutine per
// connection, no global event loop.
func (srv *Server) Run(ln net.Listener) error {
	srv.ln = ln
	for {
		netConn, err := ln.Accept()
		if err != nil {
			return err
		}
		setKeepAlive(netConn)
		srv.HandleConn(netConn)
	}
}

// HandleConn spawns one session (a reader goroutine and a writer goroutine)
// over an already-established net.Conn. Run calls this per accepted
// connection; tests drive it directly over a net.Pipe().
func (srv *Server) HandleConn(netConn net.Conn) *Session {
	id := atomic.AddUint64(&srv.lastID, 1)
	sess := newSession(srv, netConn, id)
	go sess.writeLoop()
	go sess.readLoop()
	return sess
}

func setKeepAlive(c net.Conn) {
	if tc, ok := c.(*net.TCPConn); ok {
		tc.SetKeepAlive(true)
		tc.SetKeepAlivePeriod(60 * time.Second)
	}
}

func (srv *Server) sessionForNick(nick string) (*Session, bool) {
	s, err := srv.nicks.Search(strings.ToLower(nick))
	if err != nil {
		return nil, false
	}
	return s, true
}

// reserveNick atomically claims nick for s. If s already owns it (a
// case-only no-op rename), it succeeds without touching the index;
// otherwise the claim is decided by nicks.Add's check-then-insert, so two
// sessions racing for the same new nick can't both win.
func (srv *Server) reserveNick(s *Session, nick string) error {
	key := strings.ToLower(nick)
	if existing, ok := srv.sessionForNick(nick); ok && existing == s {
		return nil
	}
	return srv.nicks.Add(key, s) // any non-nil: caller maps to ERR_NICKNAMEINUSE
}

// channel returns the named channel, creating it if absent (implicit
// creation on first JOIN).
func (srv *Server) channel(name string) *Channel {
	key := strings.ToLower(name)
	ch, err := srv.channels.Search(key)
	if err == nil {
		return ch
	}
	ch = NewChannel(name)
	if err := srv.channels.Add(key, ch); err != nil {
		// lost the race to another joiner; use whichever won
		if existing, err2 := srv.channels.Search(key); err2 == nil {
			return existing
		}
	}
	return ch
}

func (srv *Server) lookupChannel(name string) (*Channel, bool) {
	ch, err := srv.channels.Search(strings.ToLower(name))
	if err != nil {
		return nil, false
	}
	return ch, true
}

// teardownSession runs the QUIT-path cleanup: notify every channel the
// session was in, remove membership, delete the nick index entry, record a
// WHOWAS entry.
func (srv *Server) teardownSession(s *Session, reason string) {
	s.mu.Lock()
	chanNames := make([]string, 0, len(s.channels))
	for name := range s.channels {
		chanNames = append(chanNames, name)
	}
	nick := s.Nick
	s.mu.Unlock()

	quitMsg := &irc.Message{Prefix: s.Prefix(), Command: "QUIT", Params: []string{reason}}
	for _, name := range chanNames {
		if ch, ok := srv.lookupChannel(name); ok {
			ch.Part(s)
			for _, peer := range ch.Sessions() {
				peer.Send(quitMsg)
			}
		}
	}
	if nick != "" {
		srv.whowas.record(nick, s.User, s.Host)
		srv.nicks.Delete(strings.ToLower(nick)) //nolint:errcheck
	}
}

// broadcastToPeers sends msg to every session sharing a channel with s,
// each recipient exactly once, excluding s itself (used for NICK changes).
func (srv *Server) broadcastToPeers(s *Session, msg *irc.Message) {
	s.mu.Lock()
	chanNames := make([]string, 0, len(s.channels))
	for name := range s.channels {
		chanNames = append(chanNames, name)
	}
	s.mu.Unlock()

	seen := map[*Session]bool{s: true}
	for _, name := range chanNames {
		ch, ok := srv.lookupChannel(name)
		if !ok {
			continue
		}
		for _, peer := range ch.Sessions() {
			if seen[peer] {
				continue
			}
			seen[peer] = true
			peer.Send(msg)
		}
	}
}
