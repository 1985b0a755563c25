package tuitest

import (
	"bytes"
	"io"
)

// terminalResponder answers the handful of terminal queries a bubbletea
// program sends at startup (cursor position, foreground and background
// color). Without replies the program stalls waiting on them.
type terminalResponder struct {
	w   io.Writer
	buf []byte
}

func newTerminalResponder(w io.Writer) *terminalResponder {
	return &terminalResponder{w: w, buf: make([]byte, 0, 128)}
}

var terminalReplies = []struct {
	query, reply []byte
}{
	{[]byte("\x1b[6n"), []byte("\x1b[1;1R")},
	{[]byte("\x1b]10;?\x07"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{[]byte("\x1b]10;?\x1b\\"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{[]byte("\x1b]11;?\x07"), []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{[]byte("\x1b]11;?\x1b\\"), []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

func (tr *terminalResponder) Process(chunk []byte) {
	tr.buf = append(tr.buf, chunk...)
	for {
		matched := false
		for _, qr := range terminalReplies {
			if tr.consume(qr.query, qr.reply) {
				matched = true
			}
		}
		if !matched {
			break
		}
	}
	// Keep a small tail so queries split across reads still match.
	if len(tr.buf) > 256 {
		tr.buf = tr.buf[len(tr.buf)-64:]
	}
}

func (tr *terminalResponder) consume(query, reply []byte) bool {
	idx := bytes.Index(tr.buf, query)
	if idx < 0 {
		return false
	}
	tr.buf = tr.buf[idx+len(query):]
	_, _ = tr.w.Write(reply)
	return true
}
