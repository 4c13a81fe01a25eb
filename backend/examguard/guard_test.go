package examguard

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGuardCountsOneWarningPerEvent(t *testing.T) {
	var reported []Event
	g := New(func(e Event) {
		reported = append(reported, e)
	})

	g.Begin()
	g.Record(EventTabHidden)
	g.Record(EventWindowBlur)
	g.Record(EventCopyAttempt)

	assert.Equal(t, 3, g.Warnings())
	assert.Equal(t, []Event{EventTabHidden, EventWindowBlur, EventCopyAttempt}, reported)
}

func TestGuardIgnoresNotices(t *testing.T) {
	g := New(nil)
	g.Begin()

	assert.False(t, g.Record(NoticeContextMenu))
	assert.False(t, g.Record(NoticeFullscreenDenied))
	assert.Equal(t, 0, g.Warnings())
}

func TestGuardInactiveBeforeBegin(t *testing.T) {
	g := New(nil)

	assert.False(t, g.Record(EventTabHidden))
	assert.Equal(t, 0, g.Warnings())
	assert.False(t, g.Active())
}

func TestGuardEndRemovesObservers(t *testing.T) {
	g := New(nil)
	g.Begin()
	g.Record(EventTabHidden)
	g.End()

	// События после End не меняют счётчик.
	assert.False(t, g.Record(EventTabHidden))
	assert.Equal(t, 1, g.Warnings())
	assert.False(t, g.Active())
}

func TestGuardBeginIsIdempotent(t *testing.T) {
	var reported []Event
	g := New(func(e Event) {
		reported = append(reported, e)
	})

	g.Begin()
	g.Begin() // re-entrant Begin must not double-register
	g.Record(EventWindowBlur)

	assert.Equal(t, 1, g.Warnings())
	assert.Len(t, reported, 1)
}

func TestGuardEndIsIdempotent(t *testing.T) {
	g := New(nil)
	g.Begin()
	g.End()
	g.End()

	assert.Equal(t, 0, g.Warnings())
}

func TestRegistryReusesGuardForSameToken(t *testing.T) {
	r := NewRegistry()
	token := uuid.New()

	g1 := r.Begin(token, nil)
	g1.Record(EventCopyAttempt)

	g2 := r.Begin(token, nil)
	assert.Same(t, g1, g2)
	assert.Equal(t, 1, g2.Warnings())
}

func TestRegistryEndEvicts(t *testing.T) {
	r := NewRegistry()
	token := uuid.New()

	g := r.Begin(token, nil)
	g.Record(EventTabHidden)
	g.Record(EventWindowBlur)

	warnings := r.End(token)
	assert.Equal(t, 2, warnings)

	_, ok := r.Get(token)
	assert.False(t, ok)
	assert.Equal(t, 0, r.End(token))
}

func TestRegistryEvictsAbandonedSessions(t *testing.T) {
	r := NewRegistryTTL(10 * time.Millisecond)
	token := uuid.New()

	g := r.Begin(token, nil)
	g.Record(EventTabHidden)

	// Заброшенная сессия: submit так и не пришёл.
	time.Sleep(30 * time.Millisecond)

	_, ok := r.Get(token)
	assert.False(t, ok)
	assert.Equal(t, 0, r.End(token))
}

func TestCountedAndKnown(t *testing.T) {
	assert.True(t, Counted(EventTabHidden))
	assert.True(t, Counted(EventWindowBlur))
	assert.True(t, Counted(EventCopyAttempt))
	assert.False(t, Counted(NoticeContextMenu))
	assert.False(t, Counted(NoticeFullscreenDenied))

	assert.True(t, Known(NoticeContextMenu))
	assert.False(t, Known(Event("mouse_move")))
}
