package dcc

import (
	"bufio"
	"fmt"
	"net"
	"sync"
)

// DirectMessage is one line received over an active DCC chat connection,
// posted to the handler's single mailbox channel for the client UI to
// consume.
type DirectMessage struct {
	Peer string
	Text string
	Err  error
}

// peerConn is one active DCC control/chat connection to a peer, keyed by
// "ip:port" in Handler.peers: a plain net.Conn plus a bufio.Scanner-fed
// reader goroutine.
type peerConn struct {
	peer string
	addr string
	conn net.Conn
}

// Handler is the client-side DCC subsystem: two maps keyed by "ip:port"
// (uploads, downloads), a short-lived-lock peer registry, and a single
// mailbox all peer readers post to.
type Handler struct {
	mu        sync.Mutex
	peers     map[string]*peerConn
	uploads   map[string]*Upload
	downloads map[string]*Download

	Mailbox chan DirectMessage
}

// NewHandler returns an empty handler with its mailbox ready to receive.
func NewHandler() *Handler {
	return &Handler{
		peers:     make(map[string]*peerConn),
		uploads:   make(map[string]*Upload),
		downloads: make(map[string]*Download),
		Mailbox:   make(chan DirectMessage, 32),
	}
}

func addrKey(ip string, port int) string { return fmt.Sprintf("%s:%d", ip, port) }

// splitAddr parses a net.Addr.String() into the (host, port) pair the
// upload/download registries are keyed by.
func splitAddr(addr string) (string, int, bool) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, false
	}
	var port int
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		return "", 0, false
	}
	return host, port, true
}

// NewConnection binds a local listener for an incoming DCC CHAT/SEND from
// peer and registers it once accepted, replying with the address to
// advertise over the IRC control channel.
func (h *Handler) NewConnection(peer string) (ln net.Listener, advertiseAddr string, err error) {
	ln, err = net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, "", err
	}
	go h.acceptOne(peer, ln)
	return ln, ln.Addr().String(), nil
}

func (h *Handler) acceptOne(peer string, ln net.Listener) {
	defer ln.Close()
	conn, err := ln.Accept()
	if err != nil {
		h.Mailbox <- DirectMessage{Peer: peer, Err: err}
		return
	}
	if host, port, ok := splitAddr(ln.Addr().String()); ok {
		if up, ok := h.SearchUpload(host, port); ok {
			go h.runUpload(peer, conn, up, host, port)
			return
		}
	}
	h.register(peer, conn)
}

// runUpload drives the offerer's half of a DCC SEND once the peer has
// connected to the listener NewConnection opened for it.
func (h *Handler) runUpload(peer string, conn net.Conn, up *Upload, host string, port int) {
	err := up.Send(conn)
	conn.Close()
	h.RemoveUpload(host, port)
	if err != nil {
		h.Mailbox <- DirectMessage{Peer: peer, Err: err}
		return
	}
	h.Mailbox <- DirectMessage{Peer: peer, Text: fmt.Sprintf("sent %s", up.Filename)}
}

// ConnectTo dials the peer directly (the recipient's half of a DCC
// CHAT/SEND handshake), registering the resulting connection the same way
// NewConnection's accept does.
func (h *Handler) ConnectTo(peer, addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return err
	}
	h.register(peer, conn)
	return nil
}

func (h *Handler) register(peer string, conn net.Conn) {
	pc := &peerConn{peer: peer, addr: conn.RemoteAddr().String(), conn: conn}
	h.mu.Lock()
	h.peers[pc.addr] = pc
	h.mu.Unlock()

	if host, port, ok := splitAddr(pc.addr); ok {
		if dl, ok := h.SearchDownload(host, port); ok {
			go h.runDownload(pc, dl, host, port)
			return
		}
	}
	go h.readLoop(pc)
}

// runDownload drives the recipient's half of a DCC SEND once ConnectTo has
// dialed the offerer's listener for a download already registered at
// host:port.
func (h *Handler) runDownload(pc *peerConn, dl *Download, host string, port int) {
	err := dl.Receive(pc.conn)
	h.mu.Lock()
	delete(h.peers, pc.addr)
	h.mu.Unlock()
	h.RemoveDownload(host, port)
	if err != nil {
		h.Mailbox <- DirectMessage{Peer: pc.peer, Err: err}
		return
	}
	h.Mailbox <- DirectMessage{Peer: pc.peer, Text: fmt.Sprintf("received %s", dl.Filename)}
}

func (h *Handler) readLoop(pc *peerConn) {
	scanner := bufio.NewScanner(pc.conn)
	for scanner.Scan() {
		h.Mailbox <- DirectMessage{Peer: pc.peer, Text: scanner.Text()}
	}
	if err := scanner.Err(); err != nil {
		h.Mailbox <- DirectMessage{Peer: pc.peer, Err: err}
	}
	h.mu.Lock()
	delete(h.peers, pc.addr)
	h.mu.Unlock()
}

// SendText writes text as a line to the peer's open connection, used for
// DCC CHAT conversation and DCC MSG forwarding to the peer's active
// connection.
func (h *Handler) SendText(addr, text string) error {
	h.mu.Lock()
	pc, ok := h.peers[addr]
	h.mu.Unlock()
	if !ok {
		return ErrPeerNotFound
	}
	_, err := fmt.Fprintf(pc.conn, "%s\n", text)
	return err
}

// RegisterUpload/RegisterDownload/SearchUpload/SearchDownload/
// RemoveUpload/RemoveDownload implement short-critical-section map
// operations.

func (h *Handler) RegisterUpload(ip string, port int, u *Upload) {
	h.mu.Lock()
	h.uploads[addrKey(ip, port)] = u
	h.mu.Unlock()
}

func (h *Handler) RegisterDownload(ip string, port int, d *Download) {
	h.mu.Lock()
	h.downloads[addrKey(ip, port)] = d
	h.mu.Unlock()
}

func (h *Handler) SearchUpload(ip string, port int) (*Upload, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	u, ok := h.uploads[addrKey(ip, port)]
	return u, ok
}

func (h *Handler) SearchDownload(ip string, port int) (*Download, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	d, ok := h.downloads[addrKey(ip, port)]
	return d, ok
}

func (h *Handler) RemoveUpload(ip string, port int) {
	h.mu.Lock()
	delete(h.uploads, addrKey(ip, port))
	h.mu.Unlock()
}

func (h *Handler) RemoveDownload(ip string, port int) {
	h.mu.Lock()
	delete(h.downloads, addrKey(ip, port))
	h.mu.Unlock()
}

// Close tears down conn for ip:port, the DCC CLOSE verb's effect on this
// side: removes both the peer connection and any in-flight upload/download
// entry for that address.
func (h *Handler) Close(ip string, port int) {
	key := addrKey(ip, port)
	h.mu.Lock()
	if pc, ok := h.peers[key]; ok {
		pc.conn.Close()
		delete(h.peers, key)
	}
	if u, ok := h.uploads[key]; ok {
		u.Cancel()
		delete(h.uploads, key)
	}
	if d, ok := h.downloads[key]; ok {
		d.Cancel()
		delete(h.downloads, key)
	}
	h.mu.Unlock()
}
