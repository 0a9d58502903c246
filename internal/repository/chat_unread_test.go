package repository

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func msg(id, sender uint64, minAgo int) MessageRecord {
    return MessageRecord{
        ID:        id,
        SenderID:  sender,
        CreatedAt: time.Now().UTC().Add(-time.Duration(minAgo) * time.Minute),
    }
}

func TestCountUnreadNilMarker(t *testing.T) {
    msgs := []MessageRecord{msg(1, 2, 30), msg(2, 3, 20), msg(3, 1, 10)}
    // Reader 1 never opened the thread; everything from others counts.
    assert.Equal(t, 2, CountUnread(msgs, nil, 1))
}

func TestCountUnreadMarkerSplits(t *testing.T) {
    msgs := []MessageRecord{msg(1, 2, 30), msg(2, 2, 20), msg(3, 2, 5)}
    marker := time.Now().UTC().Add(-10 * time.Minute)
    assert.Equal(t, 1, CountUnread(msgs, &marker, 1))
}

func TestCountUnreadSkipsOwnMessages(t *testing.T) {
    msgs := []MessageRecord{msg(1, 1, 5), msg(2, 1, 3)}
    assert.Equal(t, 0, CountUnread(msgs, nil, 1))
}
