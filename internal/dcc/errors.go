// Package dcc implements the Direct Client-to-Client side protocol: the
// verb set carried inside PRIVMSG payloads, the per-client handler that
// tracks active peers and pending uploads/downloads, and the chunked,
// resumable, encrypted transfer engine.
package dcc

import "errors"

// Command-level parse errors for the DCC dialect.
var (
	ErrEmptyMessage      = errors.New("dcc: empty message")
	ErrUnknownVerb       = errors.New("dcc: unknown verb")
	ErrMissingParameters = errors.New("dcc: missing parameters")
)

// Handler/transfer errors.
var (
	ErrPeerNotFound   = errors.New("dcc: no active peer at that address")
	ErrAlreadyActive  = errors.New("dcc: peer already has an active connection")
	ErrTransferClosed = errors.New("dcc: transfer already closed")
	ErrCryptoFailure  = errors.New("dcc: chunk decryption failed")
)
