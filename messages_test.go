package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageLogNewestFirst(t *testing.T) {
	log := NewMessageLog()
	log.Add(NoteSystemAlert, "first", testNow)
	log.Add(NoteSystemAlert, "second", testNow)

	entries := log.List()
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Content)
	assert.Equal(t, "first", entries[1].Content)
}

func TestMessageLogBounded(t *testing.T) {
	log := NewMessageLog()
	for i := 0; i < messageLogLimit+10; i++ {
		log.Add(NoteSystemAlert, fmt.Sprintf("msg %d", i), testNow)
	}

	entries := log.List()
	assert.Len(t, entries, messageLogLimit)
	assert.Equal(t, fmt.Sprintf("msg %d", messageLogLimit+9), entries[0].Content)
}

func TestMessageLogAddNotifications(t *testing.T) {
	log := NewMessageLog()
	log.AddNotifications([]Notification{
		alert("one"),
		{Type: NoteBriefing, Message: "two"},
	}, testNow)

	entries := log.List()
	require.Len(t, entries, 2)
	assert.Equal(t, NoteBriefing, entries[0].Type)
	assert.Equal(t, NoteSystemAlert, entries[1].Type)
}

func TestMessageLogListIsACopy(t *testing.T) {
	log := NewMessageLog()
	log.Add(NoteSystemAlert, "original", testNow)

	entries := log.List()
	entries[0].Content = "tampered"

	assert.Equal(t, "original", log.List()[0].Content)
}
