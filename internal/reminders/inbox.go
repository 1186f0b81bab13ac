package reminders

import (
	"context"
	"log"
	"sync"
)

const defaultInboxSize = 50

// InboxPresenter records notifications shown by the timer backend so a web
// client can poll and display them.
type InboxPresenter struct {
	mu     sync.Mutex
	size   int
	shown  []Notification
	listen func(Notification)
}

func NewInboxPresenter(size int) *InboxPresenter {
	if size <= 0 {
		size = defaultInboxSize
	}
	return &InboxPresenter{size: size}
}

func (inbox *InboxPresenter) Present(_ context.Context, notification Notification) error {
	inbox.mu.Lock()
	inbox.shown = append(inbox.shown, notification)
	if overflow := len(inbox.shown) - inbox.size; overflow > 0 {
		inbox.shown = append([]Notification(nil), inbox.shown[overflow:]...)
	}
	listen := inbox.listen
	inbox.mu.Unlock()

	log.Printf("reminders: shown %d %q", notification.ID, notification.Title)
	if listen != nil {
		listen(notification)
	}
	return nil
}

// Subscribe sets a callback invoked after each notification is recorded.
func (inbox *InboxPresenter) Subscribe(listen func(Notification)) {
	inbox.mu.Lock()
	defer inbox.mu.Unlock()
	inbox.listen = listen
}

// Recent returns the shown notifications, newest last.
func (inbox *InboxPresenter) Recent() []Notification {
	inbox.mu.Lock()
	defer inbox.mu.Unlock()
	return append([]Notification(nil), inbox.shown...)
}
