package api

import (
	"net/http"
	"time"

	"CryptoCast/internal/domain/models"
	xlogger "CryptoCast/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// StateSource is the part of the request controller the feed needs.
type StateSource interface {
	Subscribe() (<-chan models.RequestState, func())
}

// StateFeed pushes every applied request state to websocket clients as a
// JSON StateView. Clients only listen; inbound frames other than control
// frames are ignored.
type StateFeed struct {
	logger   *xlogger.Logger
	source   StateSource
	encode   func(models.RequestState) models.StateView
	upgrader websocket.Upgrader
}

func NewStateFeed(logger *xlogger.Logger, source StateSource, encode func(models.RequestState) models.StateView) *StateFeed {
	return &StateFeed{
		logger: logger,
		source: source,
		encode: encode,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Same policy as the REST CORS config.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (f *StateFeed) Serve(c echo.Context) error {
	conn, err := f.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		f.logger.Warn("ws upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	states, unsubscribe := f.source.Subscribe()
	defer unsubscribe()

	closed := make(chan struct{})
	go f.readPump(conn, closed)

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	remote := c.RealIP()
	f.logger.Debug("ws client connected", xlogger.String("remote", remote))
	defer f.logger.Debug("ws client disconnected", xlogger.String("remote", remote))

	for {
		select {
		case st, ok := <-states:
			// The server write timeout survives the hijack, so every write
			// sets its own deadline.
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
				return nil
			}
			if err := conn.WriteJSON(f.encode(st)); err != nil {
				f.logger.Debug("ws write failed", xlogger.Error(err))
				return nil
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-closed:
			return nil
		}
	}
}

// readPump drains the connection so control frames are processed and
// reports when the peer goes away.
func (f *StateFeed) readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
