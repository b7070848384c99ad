package onboarding

import "sync"

// Mailbox holds a one-shot completion message for the home page. The message
// survives navigation until someone reads it, then it is gone.
type Mailbox struct {
	mu  sync.Mutex
	msg string
	set bool
}

// Set stores the message, replacing any unread one.
func (m *Mailbox) Set(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msg = msg
	m.set = true
}

// TakeOnce returns the pending message and clears it. The second call
// reports false.
func (m *Mailbox) TakeOnce() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return "", false
	}
	msg := m.msg
	m.msg = ""
	m.set = false
	return msg, true
}
