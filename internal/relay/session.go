package relay

import (
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/LucasMontenegro1/relay/internal/command"
	irc "gopkg.in/irc.v3"
)

// Session is the per-connection record. There is exactly one hop: the
// client talks directly to this server, not through it to a further IRC
// network, so it carries none of a bouncer's per-upstream-network state.
type Session struct {
	id     uint64
	net    net.Conn
	irc    *irc.Conn
	srv    *Server
	logger Logger

	outgoing chan *irc.Message
	closed   chan struct{}
	closeErr error

	mu       sync.Mutex
	State    command.SessionState
	Nick     string
	User     string
	Real     string
	Host     string
	Password string // cleared once checked
	Operator bool
	Away     string

	channels map[string]bool // casefolded channel name -> true
}

func newSession(srv *Server, netConn net.Conn, id uint64) *Session {
	s := &Session{
		id:       id,
		net:      netConn,
		irc:      irc.NewConn(netConn),
		srv:      srv,
		logger:   newPrefixLogger(srv.Logger, fmt.Sprintf("session %q: ", netConn.RemoteAddr())),
		outgoing: make(chan *irc.Message, 64),
		closed:   make(chan struct{}),
		State:    command.AwaitingPass,
		channels: make(map[string]bool),
	}
	s.Host = netConn.RemoteAddr().String()
	if host, _, err := net.SplitHostPort(s.Host); err == nil {
		s.Host = host
	}
	if srv.passwordHash == nil {
		s.State = command.AwaitingNick
	}
	return s
}

// Prefix returns the nick!user@host prefix this session's messages are
// sent with.
func (s *Session) Prefix() *irc.Prefix {
	return &irc.Prefix{Name: s.Nick, User: s.User, Host: s.Host}
}

func (s *Session) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// Send enqueues msg for delivery on the session's writer goroutine. Never
// blocks the caller on the network; the outgoing channel is a bounded
// buffer.
func (s *Session) Send(msg *irc.Message) {
	select {
	case s.outgoing <- msg:
	case <-s.closed:
	default:
		// Outbound buffer full: a slow reader shouldn't be allowed to block
		// fan-out to every other session. Drop and disconnect.
		s.logger.Printf("outgoing buffer full, disconnecting")
		s.Close()
	}
}

// Close idempotently tears the session down; safe to call multiple times.
func (s *Session) Close() error {
	if s.isClosed() {
		return nil
	}
	close(s.closed)
	return nil
}

func (s *Session) readLoop() {
	for {
		msg, err := s.irc.ReadMessage()
		if err == io.EOF {
			break
		} else if err != nil {
			s.logger.Printf("read error: %v", err)
			break
		}
		if err := s.dispatch(msg); err != nil {
			s.logger.Printf("handler error: %v", err)
		}
		if s.State == command.Closed {
			break
		}
	}
	s.Close()
}

func (s *Session) writeLoop() {
	for {
		select {
		case msg := <-s.outgoing:
			if err := s.irc.WriteMessage(msg); err != nil {
				s.logger.Printf("write error: %v", err)
				s.Close()
			}
		case <-s.closed:
			s.net.Close()
			return
		}
	}
}

// dispatch validates msg against the command taxonomy's state rules and
// routes it to a handler, converting handler errors that are protoError
// into a sent numeric reply: an unknown command or parse error replies to
// the sender, and the session stays up.
func (s *Session) dispatch(msg *irc.Message) error {
	cmd, known := command.Lookup(msg.Command)
	if !known {
		if isNumeric(msg.Command) {
			return nil
		}
		s.Send(&irc.Message{
			Prefix:  s.srv.prefix(),
			Command: irc.ERR_UNKNOWNCOMMAND,
			Params:  []string{s.displayNick(), msg.Command, "Unknown command"},
		})
		return nil
	}

	desc := command.Table[cmd]
	s.mu.Lock()
	state := s.State
	s.mu.Unlock()

	if !desc.ValidIn(state) {
		if state == command.Registered {
			// Registered sessions get ERR_ALREADYREGISTRED for the
			// registration-only PASS and USER; everything else in Table lists
			// Registered as valid so this branch is the re-registration case.
			if cmd == command.PASS || cmd == command.USER {
				s.Send(&irc.Message{
					Prefix:  s.srv.prefix(),
					Command: irc.ERR_ALREADYREGISTRED,
					Params:  []string{s.displayNick(), "You may not reregister"},
				})
				return nil
			}
		}
		s.Send(&irc.Message{
			Prefix:  s.srv.prefix(),
			Command: irc.ERR_NOTREGISTERED,
			Params:  []string{s.displayNick(), "You have not registered"},
		})
		return nil
	}

	if len(msg.Params) < desc.MinParams {
		s.Send(&irc.Message{
			Prefix:  s.srv.prefix(),
			Command: irc.ERR_NEEDMOREPARAMS,
			Params:  []string{s.displayNick(), msg.Command, "Not enough parameters"},
		})
		return nil
	}

	err := s.handle(cmd, msg)
	if err == nil {
		return nil
	}
	if pe, ok := err.(protoError); ok {
		if pe.Message.Prefix == nil {
			pe.Message.Prefix = s.srv.prefix()
		}
		s.Send(pe.Message)
		return nil
	}
	return err
}

func (s *Session) displayNick() string {
	if s.Nick == "" {
		return "*"
	}
	return s.Nick
}

func isNumeric(cmd string) bool {
	if len(cmd) != 3 {
		return false
	}
	for _, r := range cmd {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *Session) handle(cmd command.Command, msg *irc.Message) error {
	switch cmd {
	case command.PASS:
		return s.handlePass(msg)
	case command.NICK:
		return s.handleNick(msg)
	case command.USER:
		return s.handleUser(msg)
	case command.QUIT:
		return s.handleQuit(msg)
	case command.PING:
		s.Send(&irc.Message{Prefix: s.srv.prefix(), Command: "PONG", Params: msg.Params})
		return nil
	case command.PONG:
		return nil
	case command.JOIN:
		return s.handleJoin(msg)
	case command.PART:
		return s.handlePart(msg)
	case command.PRIVMSG:
		return s.handlePrivmsg(msg, "PRIVMSG")
	case command.NOTICE:
		return s.handlePrivmsg(msg, "NOTICE")
	case command.MODE:
		return s.handleMode(msg)
	case command.TOPIC:
		return s.handleTopic(msg)
	case command.KICK:
		return s.handleKick(msg)
	case command.INVITE:
		return s.handleInvite(msg)
	case command.LIST:
		return s.handleList(msg)
	case command.NAMES:
		return s.handleNames(msg)
	case command.WHO:
		return s.handleWho(msg)
	case command.WHOIS:
		return s.handleWhois(msg)
	case command.WHOWAS:
		return s.handleWhowas(msg)
	case command.OPER:
		return s.handleOper(msg)
	case command.SQUIT:
		return s.handleSquit(msg)
	case command.AWAY:
		return s.handleAway(msg)
	default:
		return nil
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
