// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/questforge/forge/api/restutil"
	"github.com/questforge/forge/block"
	"github.com/questforge/forge/co"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/log"
	"github.com/questforge/forge/metrics"
)

var (
	logger = log.WithContext("pkg", "subscriptions")

	metricActiveCount = metrics.LazyLoadGauge("api_active_websocket_count")
)

const (
	messageCacheSize = 1000
	wsReadTimeout    = 60 * time.Second
	wsWriteTimeout   = 10 * time.Second
	wsPingInterval   = (wsReadTimeout * 7) / 10
)

// Source is the chain subscribers read blocks from.
type Source interface {
	restutil.BlockReader
	SubscribeBlocks(ch chan *block.Block) event.Subscription
}

type Subscriptions struct {
	source         Source
	backtraceLimit uint32
	upgrader       *websocket.Upgrader
	beats          *beats
	cache          *messageCache
	goes           *co.Goes
}

func New(source Source, allowedOrigins []string, backtraceLimit uint32) *Subscriptions {
	mc, _ := newMessageCache(messageCacheSize)
	s := &Subscriptions{
		source:         source,
		backtraceLimit: backtraceLimit,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		beats: newBeats(),
		cache: mc,
		goes:  co.NewGoes(context.Background()),
	}

	ch := make(chan *block.Block, 16)
	sub := source.SubscribeBlocks(ch)
	s.goes.Go(func(ctx context.Context) {
		defer sub.Unsubscribe()
		for {
			select {
			case <-ch:
				s.beats.dispatch()
			case <-sub.Err():
				return
			case <-ctx.Done():
				return
			}
		}
	})
	return s
}

// parsePosition returns the first block to deliver. It defaults to the next block.
func (s *Subscriptions) parsePosition(posStr string) (uint32, error) {
	best := s.source.Best().Number
	if posStr == "" {
		return best + 1, nil
	}
	pos, err := strconv.ParseUint(posStr, 0, 32)
	if err != nil {
		return 0, errors.WithMessage(err, "pos")
	}
	if uint32(pos) > best+1 {
		return 0, errors.New("pos: beyond the next block")
	}
	if best-min(best, uint32(pos)) > s.backtraceLimit {
		return 0, errors.New("pos: backtrace limit exceeded")
	}
	return uint32(pos), nil
}

func parseEventFilter(req *http.Request) (*EventFilter, error) {
	query := req.URL.Query()
	filter := &EventFilter{Name: query.Get("name")}
	if s := query.Get("addr"); s != "" {
		addr, err := forge.ParseAddress(s)
		if err != nil {
			return nil, errors.WithMessage(err, "addr")
		}
		filter.Address = addr
	}
	for i := range filter.Topics {
		key := "t" + strconv.Itoa(i)
		s := query.Get(key)
		if s == "" {
			continue
		}
		topic, err := forge.ParseBytes32(s)
		if err != nil {
			return nil, errors.WithMessage(err, key)
		}
		filter.Topics[i] = &topic
	}
	return filter, nil
}

func (s *Subscriptions) handleSubscribe(w http.ResponseWriter, req *http.Request) error {
	pos, err := s.parsePosition(req.URL.Query().Get("pos"))
	if err != nil {
		return restutil.BadRequest(err)
	}

	var reader msgReader
	switch mux.Vars(req)["subject"] {
	case "event":
		filter, err := parseEventFilter(req)
		if err != nil {
			return restutil.BadRequest(err)
		}
		reader = newEventReader(s.source, pos, filter, s.cache)
	case "block":
		reader = newBlockReader(s.source, pos)
	default:
		return restutil.HTTPError(errors.New("not found"), http.StatusNotFound)
	}

	conn, closed, err := s.setupConn(w, req)
	// since the conn is hijacked here, no error should be returned in lines below
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}

	metricActiveCount().Add(1)
	defer metricActiveCount().Add(-1)

	err = s.pipe(conn, reader, closed)
	s.closeConn(conn, err)
	return nil
}

func (s *Subscriptions) setupConn(w http.ResponseWriter, req *http.Request) (*websocket.Conn, chan struct{}, error) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return nil, nil, err
	}

	closed := make(chan struct{})
	// start read loop to handle close event
	s.goes.Go(func(context.Context) {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logger.Debug("websocket read", "err", err)
				return
			}
		}
	})
	return conn, closed, nil
}

func (s *Subscriptions) closeConn(conn *websocket.Conn, err error) {
	var closeMsg []byte
	if err != nil {
		closeMsg = websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
	} else {
		closeMsg = websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	}

	if err := conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(wsWriteTimeout)); err != nil {
		logger.Debug("write close message", "err", err)
	}
	if err := conn.Close(); err != nil {
		logger.Debug("close websocket", "err", err)
	}
}

func (s *Subscriptions) pipe(conn *websocket.Conn, reader msgReader, closed chan struct{}) error {
	beat := make(chan struct{}, 1)
	s.beats.Subscribe(beat)
	defer s.beats.Unsubscribe(beat)

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		msgs, hasMore, err := reader.Read()
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				return err
			}
		}
		if hasMore {
			select {
			case <-s.goes.Stopped():
				return nil
			case <-closed:
				return nil
			default:
			}
			continue
		}
		select {
		case <-s.goes.Stopped():
			return nil
		case <-closed:
			return nil
		case <-beat:
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

// Close ends every subscription and waits for their connections to be released.
func (s *Subscriptions) Close() {
	s.goes.Stop()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{subject}").
		Methods(http.MethodGet).
		Name("WS /subscriptions").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSubscribe))
}
