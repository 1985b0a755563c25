package tui

// Narrator speaks agent responses aloud. Implementations run the utterance on
// their own goroutine; Speak must not block the update loop.
type Narrator interface {
	Speak(text string)
}
