package relay

import (
	"strings"
	"sync"
)

// Channel is the authoritative record for one multicast group. This
// Channel IS the server's source of truth for its membership and modes,
// not a client-side mirror of state some remote server owns.
//
// modeTypeA/B/C/D below classifies mode letters: those that take a list
// argument (ban), a value required on both add and remove (key), a value
// required only on add (limit), and no value at all (the boolean flags).
type Channel struct {
	mu sync.Mutex

	Name  string
	Topic string

	InviteOnly     bool
	Private        bool
	Secret         bool
	Moderated      bool
	TopicProtected bool

	Limit *int
	Key    string

	Members   map[string]*Session // casefolded nick -> session
	Operators map[string]bool     // casefolded nick -> true
	Voiced    map[string]bool
	Bans      []string
	Invited   map[string]bool
}

// NewChannel returns an empty channel record named name.
func NewChannel(name string) *Channel {
	return &Channel{
		Name:      name,
		Members:   make(map[string]*Session),
		Operators: make(map[string]bool),
		Voiced:    make(map[string]bool),
		Invited:   make(map[string]bool),
	}
}

// casefold: nick/channel comparisons are case-insensitive via
// strings.ToLower, which lower-cases non-ASCII letters too, not only A-Z.
func casefold(s string) string { return strings.ToLower(s) }

// Join adds sess as a member. The first joiner becomes operator. Returns
// ErrChannelFull, ErrBannedFromChan, ErrInviteOnly, or ErrBadChannelKey as
// appropriate.
func (c *Channel) Join(sess *Session, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	nick := casefold(sess.Nick)
	if _, ok := c.Members[nick]; ok {
		return ErrAlreadyInChan
	}
	if c.Limit != nil && len(c.Members) >= *c.Limit {
		return ErrChannelFull
	}
	if c.InviteOnly && !c.Invited[nick] {
		return ErrInviteOnly
	}
	if c.Key != "" && c.Key != key {
		return ErrBadChannelKey
	}
	for _, mask := range c.Bans {
		if matchesMask(mask, sess.Nick, sess.User, sess.Host) {
			return ErrBannedFromChan
		}
	}

	first := len(c.Members) == 0
	c.Members[nick] = sess
	delete(c.Invited, nick)
	if first {
		c.Operators[nick] = true
	}
	return nil
}

// Part removes sess from the channel's membership and operator/voice sets.
func (c *Channel) Part(sess *Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	nick := casefold(sess.Nick)
	if _, ok := c.Members[nick]; !ok {
		return ErrNotInChannel
	}
	delete(c.Members, nick)
	delete(c.Operators, nick)
	delete(c.Voiced, nick)
	return nil
}

// MemberList returns the member nicks for RPL_NAMREPLY as plain names;
// operator/voice status is queried separately via IsOperator, not encoded
// into the name here.
func (c *Channel) MemberList() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.Members))
	for _, s := range c.Members {
		out = append(out, s.Nick)
	}
	return out
}

// IsMember reports whether nick (any case) is a current member.
func (c *Channel) IsMember(nick string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.Members[casefold(nick)]
	return ok
}

// IsOperator reports whether nick holds channel-operator status.
func (c *Channel) IsOperator(nick string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Operators[casefold(nick)]
}

// Sessions returns a snapshot of the member sessions, for fan-out.
func (c *Channel) Sessions() []*Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Session, 0, len(c.Members))
	for _, s := range c.Members {
		out = append(out, s)
	}
	return out
}

// modeKind classifies an RFC 2812 channel mode letter into groups A/B/C/D.
type modeKind int

const (
	modeTypeA modeKind = iota // list-valued: always takes an argument (ban)
	modeTypeB                 // takes an argument on both set and unset (key)
	modeTypeC                 // takes an argument only when set (limit); operator and voice, also classed here, take a nick on both set and unset
	modeTypeD                 // never takes an argument (boolean flags)
)

func modeLetterKind(letter byte) (modeKind, bool) {
	switch letter {
	case 'b':
		return modeTypeA, true
	case 'k':
		return modeTypeB, true
	case 'l', 'o', 'v':
		return modeTypeC, true
	case 'i', 'p', 's', 'm', 't', 'n':
		return modeTypeD, true
	default:
		return 0, false
	}
}

// ApplyModes processes a "+i-k" style mode string plus its positional
// arguments, left-to-right, one letter at a time. It does not roll back a
// prior letter's effect if a later letter fails. Returns the list of
// letters that actually applied (for echoing back the effective MODE line)
// and the first error encountered, if any.
func (c *Channel) ApplyModes(actor *Session, modes string, args []string) (applied string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var sb strings.Builder
	add := true
	argi := 0
	nextArg := func() (string, bool) {
		if argi >= len(args) {
			return "", false
		}
		a := args[argi]
		argi++
		return a, true
	}

	actorIsOp := c.Operators[casefold(actor.Nick)]

	for i := 0; i < len(modes); i++ {
		ch := modes[i]
		switch ch {
		case '+':
			add = true
			continue
		case '-':
			add = false
			continue
		}
		kind, known := modeLetterKind(ch)
		if !known {
			if err == nil {
				err = ErrUnknownMode(ch)
			}
			continue
		}
		if !actorIsOp && !actor.Operator {
			if err == nil {
				err = ErrNoPrivileges
			}
			continue
		}
		switch kind {
		case modeTypeD:
			c.setFlag(ch, add)
			sb.WriteByte(boolPrefix(add))
			sb.WriteByte(ch)
		case modeTypeB:
			arg, ok := nextArg()
			if !ok {
				continue
			}
			if add {
				c.Key = arg
			} else {
				c.Key = ""
			}
			sb.WriteByte(boolPrefix(add))
			sb.WriteByte(ch)
		case modeTypeC:
			if ch == 'l' {
				if add {
					arg, ok := nextArg()
					if !ok {
						continue
					}
					n := atoiSafe(arg)
					c.Limit = &n
				} else {
					c.Limit = nil
				}
				sb.WriteByte(boolPrefix(add))
				sb.WriteByte(ch)
				continue
			}
			arg, ok := nextArg()
			if !ok {
				continue
			}
			target := casefold(arg)
			if _, member := c.Members[target]; !member {
				if err == nil {
					err = ErrNotInChannel
				}
				continue
			}
			switch ch {
			case 'o':
				c.Operators[target] = add
			case 'v':
				c.Voiced[target] = add
			}
			sb.WriteByte(boolPrefix(add))
			sb.WriteByte(ch)
		case modeTypeA:
			arg, ok := nextArg()
			if !ok {
				continue
			}
			if add {
				c.Bans = append(c.Bans, arg)
			} else {
				c.Bans = removeString(c.Bans, arg)
			}
			sb.WriteByte(boolPrefix(add))
			sb.WriteByte(ch)
		}
	}
	return sb.String(), err
}

func boolPrefix(add bool) byte {
	if add {
		return '+'
	}
	return '-'
}

func (c *Channel) setFlag(letter byte, on bool) {
	switch letter {
	case 'i':
		c.InviteOnly = on
	case 'p':
		c.Private = on
	case 's':
		c.Secret = on
	case 'm':
		c.Moderated = on
	case 't':
		c.TopicProtected = on
	case 'n':
		// no-external-messages: accepted but not tracked; non-members can
		// still message a channel unless it is secret (+s)
	}
}

func removeString(ss []string, s string) []string {
	out := ss[:0]
	for _, v := range ss {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return n
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// matchesMask matches a simple nick!user@host glob mask ("*" and "?"
// wildcards supported), the conventional ban-mask format.
func matchesMask(mask, nick, user, host string) bool {
	target := nick + "!" + user + "@" + host
	return globMatch(strings.ToLower(mask), strings.ToLower(target))
}

func globMatch(pattern, s string) bool {
	if pattern == "" {
		return s == ""
	}
	if pattern[0] == '*' {
		for i := 0; i <= len(s); i++ {
			if globMatch(pattern[1:], s[i:]) {
				return true
			}
		}
		return false
	}
	if s == "" {
		return false
	}
	if pattern[0] != '?' && pattern[0] != s[0] {
		return false
	}
	return globMatch(pattern[1:], s[1:])
}
