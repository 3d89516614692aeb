package main

import (
	"sync"
	"time"
)

const messageLogLimit = 50

// CompanionMessage is one line of C.O.R.E. output shown to the player.
type CompanionMessage struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// MessageLog is the bounded, newest-first companion feed. Appends past the
// limit drop the oldest entries.
type MessageLog struct {
	mu      sync.Mutex
	entries []CompanionMessage
}

func NewMessageLog() *MessageLog {
	return &MessageLog{}
}

func (l *MessageLog) Add(msgType, content string, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := CompanionMessage{Type: msgType, Content: content, Timestamp: now.UnixMilli()}
	l.entries = append([]CompanionMessage{entry}, l.entries...)
	if len(l.entries) > messageLogLimit {
		l.entries = l.entries[:messageLogLimit]
	}
}

func (l *MessageLog) AddNotifications(notes []Notification, now time.Time) {
	for _, n := range notes {
		l.Add(n.Type, n.Message, now)
	}
}

func (l *MessageLog) List() []CompanionMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]CompanionMessage(nil), l.entries...)
}
