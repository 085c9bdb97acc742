package message

import (
	"errors"
	"testing"

	irc "gopkg.in/irc.v3"
)

func TestParseRoundTrip(t *testing.T) {
	// Parse ∘ format is the identity on a canonical message.
	line := ":alice!a@host PRIVMSG #room :hello there\r\n"
	m, err := Parse(line)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Command() != "PRIVMSG" {
		t.Fatalf("Command = %q", m.Command())
	}
	if m.TargetUser() != "#room" {
		t.Fatalf("TargetUser = %q, want #room", m.TargetUser())
	}
	if m.Trailing() != "hello there" {
		t.Fatalf("Trailing = %q", m.Trailing())
	}
	if got, want := m.String()+"\r\n", line; got != want {
		t.Fatalf("round trip = %q, want %q", got, want)
	}
}

func TestParseEmptyLine(t *testing.T) {
	if _, err := Parse("\r\n"); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("Parse(empty) err = %v, want ErrEmptyMessage", err)
	}
	if _, err := Parse("   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("Parse(whitespace) err = %v, want ErrEmptyMessage", err)
	}
}

func TestParseLoneLF(t *testing.T) {
	// A lone "\n" terminator is tolerated.
	m, err := Parse("NICK alice\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Command() != "NICK" || m.Param(0) != "alice" {
		t.Fatalf("got %v %v", m.Command(), m.Param(0))
	}
}

func TestNewUppercasesCommand(t *testing.T) {
	m := New(&irc.Prefix{Name: "server"}, "privmsg", "alice", "hi")
	if m.Command() != "PRIVMSG" {
		t.Fatalf("Command = %q, want PRIVMSG", m.Command())
	}
}

func TestParamOutOfRange(t *testing.T) {
	m, err := Parse("JOIN #room\r\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Param(5) != "" {
		t.Fatalf("Param(5) = %q, want empty", m.Param(5))
	}
}

func TestParseParamsArity(t *testing.T) {
	m, err := Parse("USER alice 0 * :Alice A\r\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var user, mode, unused, real string
	if err := ParseParams(m, &user, &mode, &unused, &real); err != nil {
		t.Fatalf("ParseParams: %v", err)
	}
	if user != "alice" || real != "Alice A" {
		t.Fatalf("got user=%q real=%q", user, real)
	}
}

func TestParseParamsMissing(t *testing.T) {
	m, err := Parse("NICK alice\r\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var a, b string
	err = ParseParams(m, &a, &b)
	var mp *MissingParametersError
	if !errors.As(err, &mp) {
		t.Fatalf("ParseParams err = %v, want *MissingParametersError", err)
	}
	if mp.Want != 2 || mp.Got != 1 {
		t.Fatalf("mp = %+v", mp)
	}
}
