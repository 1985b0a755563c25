package tui

import "time"

const heroTagline = "Live view of your agent, one poll at a time."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	sidebarWidth              = 28
	chromeHeight              = 8
)

const notificationTTL = 6 * time.Second

type tab int

const (
	tabChats tab = iota
	tabTasks
)

func (t tab) label() string {
	if t == tabTasks {
		return "Tasks"
	}
	return "Chats"
}

// notification is a transient status line. It expires on its own instead of
// requiring a dismissal key.
type notification struct {
	text    string
	isError bool
	shownAt time.Time
}

func (n notification) active(now time.Time) bool {
	return n.text != "" && now.Sub(n.shownAt) < notificationTTL
}
