package dcc

import (
	"bytes"
	"testing"
)

func TestEncryptDecryptEmpty(t *testing.T) {
	roundTrip(t, nil)
}

func TestEncryptDecryptShort(t *testing.T) {
	roundTrip(t, []byte("hello, dcc"))
}

func TestEncryptDecrypt1MiB(t *testing.T) {
	buf := make([]byte, 1<<20)
	roundTrip(t, buf)
}

func roundTrip(t *testing.T, plaintext []byte) {
	t.Helper()
	ct, err := EncryptChunk(plaintext)
	if err != nil {
		t.Fatalf("EncryptChunk: %v", err)
	}
	pt, err := DecryptChunk(ct)
	if err != nil {
		t.Fatalf("DecryptChunk: %v", err)
	}
	if !bytes.Equal(pt, plaintext) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d bytes", len(pt), len(plaintext))
	}
}
