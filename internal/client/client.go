// Package client implements the relay client's control connection: it
// exchanges control messages with the server and intercepts DCC-dialect
// PRIVMSG payloads for the DCC handler, independent of the server.
package client

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/LucasMontenegro1/relay/internal/dcc"
	irc "gopkg.in/irc.v3"
)

// Client holds the one control connection to the relay server plus the
// DCC handler that manages direct peer connections opened independent of
// that control channel.
type Client struct {
	conn *irc.Conn
	net  net.Conn
	DCC  *dcc.Handler

	Incoming chan *irc.Message
}

// Dial opens the control connection to addr.
func Dial(addr string) (*Client, error) {
	netConn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Client{
		conn:     irc.NewConn(netConn),
		net:      netConn,
		DCC:      dcc.NewHandler(),
		Incoming: make(chan *irc.Message, 64),
	}, nil
}

// Register sends the PASS (if non-empty)/NICK/USER registration sequence.
func (c *Client) Register(password, nick, user, realname string) error {
	if password != "" {
		if err := c.conn.WriteMessage(&irc.Message{Command: "PASS", Params: []string{password}}); err != nil {
			return err
		}
	}
	if err := c.conn.WriteMessage(&irc.Message{Command: "NICK", Params: []string{nick}}); err != nil {
		return err
	}
	return c.conn.WriteMessage(&irc.Message{Command: "USER", Params: []string{user, "0", "*", realname}})
}

// Send writes a raw message to the control connection.
func (c *Client) Send(msg *irc.Message) error { return c.conn.WriteMessage(msg) }

// ReadLoop reads server messages, intercepting DCC-dialect PRIVMSGs for
// the handler and forwarding everything else on Incoming.
func (c *Client) ReadLoop() error {
	for {
		msg, err := c.conn.ReadMessage()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		if msg.Command == "PRIVMSG" && len(msg.Params) == 2 && strings.HasPrefix(strings.ToUpper(msg.Params[1]), "DCC ") {
			c.handleDCCPayload(msg)
			continue
		}
		c.Incoming <- msg
	}
}

func (c *Client) handleDCCPayload(msg *irc.Message) {
	from := ""
	if msg.Prefix != nil {
		from = msg.Prefix.Name
	}
	dccMsg, err := dcc.ParseMessage(msg.Params[1])
	if err != nil {
		c.DCC.Mailbox <- dcc.DirectMessage{Peer: from, Err: err}
		return
	}
	switch dccMsg.Verb {
	case dcc.Send:
		offer, err := dccMsg.AsSendOffer()
		if err == nil {
			existing := dcc.ExistingBytes(offer.Filename)
			if existing > 0 {
				resume := dcc.NewResumeRequest(offer.Filename, offer.IP, offer.Port, existing)
				c.SendPrivmsg(from, resume.String())
				return
			}
			dl := dcc.NewDownload(from, offer.Filename, offer.Size)
			c.DCC.RegisterDownload(offer.IP, offer.Port, dl)
			if derr := c.DCC.ConnectTo(from, fmt.Sprintf("%s:%d", offer.IP, offer.Port)); derr != nil {
				c.DCC.RemoveDownload(offer.IP, offer.Port)
			}
		}
	case dcc.Resume:
		req, err := dccMsg.AsResumeRequest()
		if err == nil {
			if up, ok := c.DCC.SearchUpload(req.IP, req.Port); ok {
				up.SetResume(req.Offset)
				c.SendPrivmsg(from, req.Response().String())
			}
		}
	case dcc.Accept:
		acc, err := dccMsg.AsAcceptConfirmation()
		if err == nil {
			if dl, ok := c.DCC.SearchDownload(acc.IP, acc.Port); ok {
				acc.Reception(dl)
			}
		}
	case dcc.Pause:
		p, err := dccMsg.AsPauseToggle()
		if err == nil {
			if up, ok := c.DCC.SearchUpload(p.IP, p.Port); ok {
				up.Pause()
			}
			if dl, ok := c.DCC.SearchDownload(p.IP, p.Port); ok {
				dl.Pause()
			}
		}
	case dcc.Close:
		cl, err := dccMsg.AsCloseRequest()
		if err == nil {
			c.DCC.Close(cl.IP, cl.Port)
		}
	default:
		c.DCC.Mailbox <- dcc.DirectMessage{Peer: from, Text: dccMsg.String()}
	}
}

// SendPrivmsg writes a PRIVMSG to target, the transport every DCC control
// verb rides on top of.
func (c *Client) SendPrivmsg(target, text string) error {
	return c.Send(&irc.Message{Command: "PRIVMSG", Params: []string{target, text}})
}

// OfferSend stages path into the local upload registry and sends the
// DCC SEND offer.
func (c *Client) OfferSend(peer, path string) (*dcc.Upload, error) {
	up, err := dcc.NewUpload(peer, path)
	if err != nil {
		return nil, err
	}
	ln, addr, err := c.DCC.NewConnection(peer)
	if err != nil {
		return nil, err
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		ln.Close()
		return nil, err
	}
	var port int
	fmt.Sscanf(portStr, "%d", &port)
	c.DCC.RegisterUpload(host, port, up)
	up.Port = port
	offer := dcc.NewSendOffer(up.Filename, host, port, up.TotalSize)
	return up, c.SendPrivmsg(peer, offer.String())
}

// StdinLoop reads lines from r, parses each as an IRC message and writes it
// to the control connection; lines that fail to parse are skipped.
func (c *Client) StdinLoop(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		msg, err := irc.ParseMessage(scanner.Text())
		if err != nil {
			continue
		}
		if err := c.conn.WriteMessage(msg); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Close closes the control connection.
func (c *Client) Close() error { return c.net.Close() }
