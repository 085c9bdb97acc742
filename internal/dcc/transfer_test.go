package dcc

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func withTempHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := os.Getenv("HOME")
	os.Setenv("HOME", dir)
	t.Cleanup(func() { os.Setenv("HOME", old) })
	return dir
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	withTempHome(t)

	srcPath := filepath.Join(t.TempDir(), "payload.txt")
	content := []byte("the quick brown fox jumps over the lazy dog, repeated.\n")
	if err := os.WriteFile(srcPath, content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	up, err := NewUpload("bob", srcPath)
	if err != nil {
		t.Fatalf("NewUpload: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	dl := NewDownload("alice", up.Filename, up.TotalSize)

	done := make(chan error, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			done <- err
			return
		}
		defer conn.Close()
		done <- up.Send(conn)
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if err := dl.Receive(conn); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Send: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for Send to finish")
	}

	got, err := os.ReadFile(filepath.Join(DownloadDir(), up.Filename))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != string(content) {
		t.Fatalf("downloaded content = %q, want %q", got, content)
	}
}

func TestUploadCancelBeforeAnyData(t *testing.T) {
	withTempHome(t)
	srcPath := filepath.Join(t.TempDir(), "payload.txt")
	if err := os.WriteFile(srcPath, []byte("data"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	up, err := NewUpload("bob", srcPath)
	if err != nil {
		t.Fatalf("NewUpload: %v", err)
	}
	up.Cancel()

	serverSide, clientSide := net.Pipe()
	defer serverSide.Close()
	defer clientSide.Close()

	if err := up.Send(clientSide); err != ErrTransferClosed {
		t.Fatalf("Send after Cancel = %v, want ErrTransferClosed", err)
	}
	if up.BytesSent() != 0 {
		t.Fatalf("BytesSent = %d, want 0 (no file delivered)", up.BytesSent())
	}
}
