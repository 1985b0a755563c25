package tuitest

import (
	"regexp"
	"strings"
)

// Frame is one normalized repaint: the raw ANSI segment plus a plain-text
// projection with control sequences stripped and trailing blanks trimmed.
type Frame struct {
	Index int
	ANSI  string
	Plain string
}

var (
	eraseSeq   = regexp.MustCompile(`\x1b\[[0-9;]*J`)
	csiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)
	oscPattern = regexp.MustCompile(`\x1b\][^\x07]*(\x07|\x1b\\)`)
)

// parseFrames splits the raw stream on erase-display sequences, which bracket
// full repaints in the renderer's output.
func parseFrames(raw []byte) []Frame {
	text := strings.ReplaceAll(string(raw), "\r", "")
	var frames []Frame
	for _, chunk := range eraseSeq.Split(text, -1) {
		chunk = strings.Trim(chunk, "\x00")
		chunk = strings.TrimPrefix(chunk, "\x1b[H")
		if chunk == "" {
			continue
		}
		plain := stripANSI(chunk)
		if strings.TrimSpace(plain) == "" {
			continue
		}
		frames = append(frames, Frame{
			Index: len(frames),
			ANSI:  chunk,
			Plain: normalizeLines(plain),
		})
	}
	if len(frames) == 0 && len(text) > 0 {
		frames = append(frames, Frame{ANSI: text, Plain: normalizeLines(stripANSI(text))})
	}
	return frames
}

// FinalFrame returns the last captured frame, or false when nothing was
// recorded.
func (r *Recording) FinalFrame() (Frame, bool) {
	if r == nil || len(r.Frames) == 0 {
		return Frame{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}

func stripANSI(s string) string {
	s = oscPattern.ReplaceAllString(s, "")
	s = csiPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\x0f", "")
	return strings.ReplaceAll(s, "\x0e", "")
}

func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
