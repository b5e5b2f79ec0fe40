package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/session"
	"github.com/MrSnakeDoc/launchpad/internal/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

func newUpgrader(origins []string) *websocket.Upgrader {
	u := &websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 4096}
	if len(origins) == 0 {
		// Same-origin check from gorilla
		return u
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	u.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed["*"] || allowed[origin]
	}
	return u
}

// Events streams session events over a websocket. Each connection counts as a
// dictation observer: when the last one drops, capture stops.
func Events(d deps.Deps) http.HandlerFunc {
	upgrader := newUpgrader(d.AllowOrigins)

	return func(w http.ResponseWriter, r *http.Request) {
		s := current(r)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			d.Logger.Debug("websocket upgrade failed", logger.Error(err))
			return
		}
		defer utils.Close(conn)

		release := s.Dictation.Observe()
		defer release()
		events, stop := s.Events.Listen()
		defer stop()

		log := d.Logger.With(logger.String("owner", s.Owner))
		log.Debug("event stream opened")

		// Reader: keeps pongs flowing and notices the client leaving.
		done := make(chan struct{})
		go func() {
			defer close(done)
			conn.SetReadLimit(512)
			_ = conn.SetReadDeadline(time.Now().Add(pongWait))
			conn.SetPongHandler(func(string) error {
				return conn.SetReadDeadline(time.Now().Add(pongWait))
			})
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
						log.Debug("event stream read error", logger.Error(err))
					}
					return
				}
				s.Touch()
			}
		}()

		hello := session.Event{Type: session.EventDictation, At: d.Now(), Data: s.Dictation.Snapshot()}
		if err := writeEvent(conn, hello); err != nil {
			return
		}

		ping := time.NewTicker(pingPeriod)
		defer ping.Stop()

		for {
			select {
			case ev, ok := <-events:
				if !ok {
					// Session closed
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
						time.Now().Add(writeWait))
					return
				}
				if err := writeEvent(conn, ev); err != nil {
					log.Debug("event stream write failed", logger.Error(err))
					return
				}
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			case <-done:
				log.Debug("event stream closed")
				return
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, ev session.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(ev)
}
