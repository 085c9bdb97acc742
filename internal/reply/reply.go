// Package reply formats the server's numeric replies: ":<server> <code>
// <nick> ...args", using the same irc.Message the relay's connections write
// with (gopkg.in/irc.v3).
package reply

import (
	"fmt"

	irc "gopkg.in/irc.v3"
)

// Numeric reply codes used by the relay.
const (
	RPL_WELCOME       = "001"
	RPL_YOURHOST      = "002"
	RPL_CREATED       = "003"
	RPL_MYINFO        = "004"
	RPL_NOTOPIC       = "331"
	RPL_TOPIC         = "332"
	RPL_NAMREPLY      = "353"
	RPL_ENDOFNAMES    = "366"
	RPL_ENDOFWHO      = "315"
	RPL_WHOREPLY      = "352"
	RPL_WHOISUSER     = "311"
	RPL_WHOISSERVER   = "312"
	RPL_ENDOFWHOIS    = "318"
	RPL_WHOWASUSER    = "314"
	RPL_ENDOFWHOWAS   = "369"
	RPL_LISTSTART     = "321"
	RPL_LIST          = "322"
	RPL_LISTEND       = "323"
	RPL_CHANNELMODEIS = "324"
	RPL_YOUREOPER     = "381"
	RPL_UNAWAY        = "305"
	RPL_NOWAWAY       = "306"
	RPL_AWAY          = "301"
	ERR_NOSUCHNICK    = "401"
	ERR_NOSUCHSERVER  = "402"
	ERR_NOSUCHCHANNEL = "403"
	ERR_CANNOTSENDTOCHAN = "404"
	ERR_UNKNOWNCOMMAND   = "421"
	ERR_NONICKNAMEGIVEN  = "431"
	ERR_NICKNAMEINUSE    = "433"
	ERR_USERNOTINCHANNEL = "441"
	ERR_NOTONCHANNEL     = "442"
	ERR_USERONCHANNEL    = "443"
	ERR_NOTREGISTERED    = "451"
	ERR_NEEDMOREPARAMS   = "461"
	ERR_ALREADYREGISTRED = "462"
	ERR_PASSWDMISMATCH   = "464"
	ERR_CHANNELISFULL    = "471"
	ERR_UNKNOWNMODE      = "472"
	ERR_INVITEONLYCHAN   = "473"
	ERR_BANNEDFROMCHAN   = "474"
	ERR_BADCHANNELKEY    = "475"
	ERR_NOPRIVILEGES     = "481"
	ERR_CHANOPRIVSNEEDED = "482"
	ERR_NOOPERHOST       = "491"
	ERR_UMODEUNKNOWNFLAG = "501"
)

// Format builds a fully formed numeric reply message from the server to
// nick, with args appended as positional parameters (the last one is sent
// as the trailing parameter).
func Format(code, serverName, nick string, args ...string) *irc.Message {
	params := make([]string, 0, len(args)+1)
	params = append(params, nick)
	params = append(params, args...)
	return &irc.Message{
		Prefix:  &irc.Prefix{Name: serverName},
		Command: code,
		Params:  params,
	}
}

// Namreply splits members into RPL_NAMREPLY chunks plus a trailing
// RPL_ENDOFNAMES.
func Namreply(serverName, nick, channel string, members []string) []*irc.Message {
	msgs := make([]*irc.Message, 0, len(members)/achunk+2)
	for i := 0; i < len(members); i += achunk {
		end := i + achunk
		if end > len(members) {
			end = len(members)
		}
		chunk := members[i:end]
		msgs = append(msgs, Format(RPL_NAMREPLY, serverName, nick, "=", channel, joinSpace(chunk)))
	}
	if len(members) == 0 {
		msgs = append(msgs, Format(RPL_NAMREPLY, serverName, nick, "=", channel, ""))
	}
	msgs = append(msgs, Format(RPL_ENDOFNAMES, serverName, nick, channel, "End of /NAMES list"))
	return msgs
}

const achunk = 32

func joinSpace(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += " "
		}
		out += s
	}
	return out
}

// Errorf is a convenience for building an error reply with a formatted
// trailing message.
func Errorf(code, serverName, nick, format string, a ...interface{}) *irc.Message {
	return Format(code, serverName, nick, fmt.Sprintf(format, a...))
}
