package livereload

import (
	"testing"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/stretchr/testify/assert"
)

func TestNewHub(t *testing.T) {
	hub := NewHub()

	assert.Equal(t, StatusWaiting, hub.Status())
	assert.Equal(t, 0, hub.Count())
	assert.Nil(t, hub.Session())
}

func TestHub_AddRemove(t *testing.T) {
	hub := NewHub()

	hub.Add("conn1", &websocket.Conn{})
	hub.Add("conn2", &websocket.Conn{})
	assert.Equal(t, 2, hub.Count())
	assert.Equal(t, StatusConnected, hub.Status())

	hub.Remove("conn1")
	assert.Equal(t, 1, hub.Count())
}

func TestHub_HandleMessage(t *testing.T) {
	hub := NewHub()

	hub.HandleMessage([]byte(`{"url":"http://localhost:2368","title":"My Blog","version":"1.2.0"}`))

	session := hub.Session()
	assert.NotNil(t, session)
	assert.Equal(t, "http://localhost:2368", session.URL)
	assert.Equal(t, "My Blog", session.Title)
	assert.Equal(t, "1.2.0", session.Version)
}

func TestHub_HandleMessage_LastWriteWins(t *testing.T) {
	hub := NewHub()

	hub.HandleMessage([]byte(`{"url":"http://localhost:2368","title":"First","version":"1"}`))
	hub.HandleMessage([]byte(`{"url":"http://localhost:2369","title":"Second","version":"2"}`))

	session := hub.Session()
	assert.Equal(t, "Second", session.Title)
	assert.Equal(t, "http://localhost:2369", session.URL)
}

func TestHub_HandleMessage_MalformedIgnored(t *testing.T) {
	hub := NewHub()
	hub.HandleMessage([]byte(`{"url":"http://localhost:2368","title":"Kept","version":"1"}`))

	// A malformed payload must not crash the session or clobber the
	// cached metadata.
	hub.HandleMessage([]byte(`{not json`))

	session := hub.Session()
	assert.NotNil(t, session)
	assert.Equal(t, "Kept", session.Title)
}

func TestHub_GraceTimerExpires(t *testing.T) {
	hub := NewHub()
	hub.StartGraceTimer(20 * time.Millisecond)

	assert.Eventually(t, func() bool {
		return hub.Status() == StatusNoConnection
	}, time.Second, 5*time.Millisecond)
}

func TestHub_ConnectionCancelsGraceTimer(t *testing.T) {
	hub := NewHub()
	hub.StartGraceTimer(50 * time.Millisecond)

	hub.Add("conn1", &websocket.Conn{})

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, StatusConnected, hub.Status())
}

func TestHub_ConnectionAfterGraceRecovers(t *testing.T) {
	hub := NewHub()
	hub.StartGraceTimer(10 * time.Millisecond)

	assert.Eventually(t, func() bool {
		return hub.Status() == StatusNoConnection
	}, time.Second, 5*time.Millisecond)

	hub.Add("conn1", &websocket.Conn{})
	assert.Equal(t, StatusConnected, hub.Status())
}
