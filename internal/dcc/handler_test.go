package dcc

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestHandlerConnectAndChat(t *testing.T) {
	server := NewHandler()
	client := NewHandler()

	ln, addr, err := server.NewConnection("alice")
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}
	_ = ln

	if err := client.ConnectTo("bob", addr); err != nil {
		t.Fatalf("ConnectTo: %v", err)
	}

	// Give the accept goroutine a moment to register the peer.
	var serverAddr string
	select {
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server-side registration")
	case <-pollRegistered(server, addr, &serverAddr):
	}

	if err := client.SendText(addr, "hello"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	select {
	case m := <-server.Mailbox:
		if m.Text != "hello" {
			t.Fatalf("received %q, want %q", m.Text, "hello")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for mailbox delivery")
	}
}

// pollRegistered busy-waits briefly for the server's accept goroutine to
// register its side of the connection, since acceptOne runs asynchronously.
func pollRegistered(h *Handler, _ string, out *string) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			h.mu.Lock()
			n := len(h.peers)
			h.mu.Unlock()
			if n > 0 {
				close(done)
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
		close(done)
	}()
	return done
}

// TestHandlerDrivesUploadOnAccept covers the offerer's half of DCC SEND
// end to end: once a registered Upload's listener accepts a connection,
// acceptOne must hand the socket to Upload.Send rather than readLoop, and
// once the matching Download is registered before ConnectTo, register
// must hand the dialed socket to Download.Receive.
func TestHandlerDrivesUploadOnAccept(t *testing.T) {
	withTempHome(t)

	srcPath := filepath.Join(t.TempDir(), "payload.txt")
	content := []byte("offerer to recipient over the wire, chunked and encrypted.\n")
	if err := os.WriteFile(srcPath, content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	server := NewHandler()
	client := NewHandler()

	up, err := NewUpload("bob", srcPath)
	if err != nil {
		t.Fatalf("NewUpload: %v", err)
	}

	ln, addr, err := server.NewConnection("bob")
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}
	_ = ln

	host, port, ok := splitAddr(addr)
	if !ok {
		t.Fatalf("splitAddr(%q): failed", addr)
	}
	server.RegisterUpload(host, port, up)

	dl := NewDownload("alice", up.Filename, up.TotalSize)
	client.RegisterDownload(host, port, dl)

	if err := client.ConnectTo("bob", addr); err != nil {
		t.Fatalf("ConnectTo: %v", err)
	}

	select {
	case m := <-client.Mailbox:
		if m.Err != nil {
			t.Fatalf("client mailbox error: %v", m.Err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for download completion")
	}
	select {
	case m := <-server.Mailbox:
		if m.Err != nil {
			t.Fatalf("server mailbox error: %v", m.Err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for upload completion")
	}

	got, err := os.ReadFile(filepath.Join(DownloadDir(), up.Filename))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != string(content) {
		t.Fatalf("downloaded content = %q, want %q", got, content)
	}
}

func TestSearchUploadDownloadLifecycle(t *testing.T) {
	h := NewHandler()
	u := &Upload{Peer: "bob", Filename: "f"}
	h.RegisterUpload("127.0.0.1", 6000, u)
	if got, ok := h.SearchUpload("127.0.0.1", 6000); !ok || got != u {
		t.Fatalf("SearchUpload = (%v, %v)", got, ok)
	}
	h.Close("127.0.0.1", 6000)
	if _, ok := h.SearchUpload("127.0.0.1", 6000); ok {
		t.Fatal("SearchUpload after Close: still present")
	}
}
