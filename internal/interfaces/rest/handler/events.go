package rest_handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/vulpemventures/seedcheck/internal/core/application"
	"github.com/vulpemventures/seedcheck/internal/core/domain"
)

const (
	writeTimeout     = 10 * time.Second
	subscriberBuffer = 32
)

var (
	sessionEventTypes = []domain.SessionEventType{
		domain.SessionStarted, domain.SessionWordPlaced,
		domain.SessionWordUnplaced, domain.SessionCompleted,
		domain.SessionReset, domain.SessionDeleted,
	}
	backupEventTypes = []domain.BackupEventType{
		domain.BackupVerified, domain.BackupAttemptFailed,
	}

	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
)

// eventHub fans out the events of the repositories to every connected
// websocket client. Slow clients miss events rather than blocking others.
type eventHub struct {
	subscribers map[uint64]chan eventMessage
	nextID      uint64
	lock        *sync.RWMutex
}

func newEventHub(appSvc *application.BackupService) *eventHub {
	hub := &eventHub{
		subscribers: make(map[uint64]chan eventMessage),
		lock:        &sync.RWMutex{},
	}

	for _, eventType := range sessionEventTypes {
		appSvc.RegisterHandlerForSessionEvent(eventType, func(e domain.SessionEvent) {
			hub.publish(parseSessionEvent(e))
		})
	}
	for _, eventType := range backupEventTypes {
		appSvc.RegisterHandlerForBackupEvent(eventType, func(e domain.BackupEvent) {
			hub.publish(parseBackupEvent(e))
		})
	}
	return hub
}

func (h *eventHub) subscribe() (uint64, chan eventMessage) {
	h.lock.Lock()
	defer h.lock.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan eventMessage, subscriberBuffer)
	h.subscribers[id] = ch
	return id, ch
}

func (h *eventHub) unsubscribe(id uint64) {
	h.lock.Lock()
	defer h.lock.Unlock()

	delete(h.subscribers, id)
}

func (h *eventHub) publish(msg eventMessage) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	for id, ch := range h.subscribers {
		select {
		case ch <- msg:
		default:
			log.Debugf("rest: dropped event %s for subscriber %d", msg.EventType, id)
		}
	}
}

type events struct {
	hub     *eventHub
	chClose chan struct{}
}

func newEventsHandler(hub *eventHub, chClose chan struct{}) *events {
	return &events{hub, chClose}
}

// Stream upgrades the connection to websocket and forwards every session and
// backup event until either side closes it.
func (e *events) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Debug("rest: failed to upgrade connection")
		return
	}
	defer conn.Close()

	id, chEvents := e.hub.subscribe()
	defer e.hub.unsubscribe(id)

	chDone := make(chan struct{})
	go func() {
		defer close(chDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg := <-chEvents:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-chDone:
			return
		case <-e.chClose:
			conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(
					websocket.CloseGoingAway, "server shutting down",
				),
				time.Now().Add(writeTimeout),
			)
			return
		}
	}
}

func parseSessionEvent(e domain.SessionEvent) eventMessage {
	msg := eventMessage{
		Source:    "session",
		EventType: e.EventType.String(),
		SessionID: e.SessionID,
		Step:      e.Step.String(),
		Outcome:   e.Outcome.String(),
		Attempt:   e.Attempt,
	}
	if e.GroupIndex >= 0 {
		group := e.GroupIndex
		msg.GroupIndex = &group
	}
	return msg
}

func parseBackupEvent(e domain.BackupEvent) eventMessage {
	return eventMessage{
		Source:      "backup",
		EventType:   e.EventType.String(),
		Fingerprint: e.Fingerprint,
		Attempt:     e.Attempts,
	}
}
