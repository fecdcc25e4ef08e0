package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"

	ierrors "github.com/redscorpix/npf-sub003/internal/errors"
	"github.com/redscorpix/npf-sub003/pkg/dom"
	"github.com/redscorpix/npf-sub003/pkg/incdom"
	"github.com/redscorpix/npf-sub003/pkg/protocol"
	"github.com/redscorpix/npf-sub003/pkg/session"
	"github.com/redscorpix/npf-sub003/pkg/vdom"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PatchRequest is the body of POST /api/patch.
type PatchRequest struct {
	// Base is the markup to patch. Empty means an empty container.
	Base string `json:"base"`

	// Container is the tag of the container Base is parsed into.
	// Default: "div".
	Container string `json:"container,omitempty"`

	// Tree is the JSON description of the desired children.
	Tree jsoniter.RawMessage `json:"tree"`
}

// PatchResponse is the reply to POST /api/patch.
type PatchResponse struct {
	HTML      string         `json:"html"`
	Mutations int            `json:"mutations"`
	Counts    map[string]int `json:"counts,omitempty"`
}

// ErrorMessage is the JSON error body, and the text message sent on /live
// when a tree cannot be applied.
type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Seq     uint64 `json:"seq,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}

	var req PatchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, ierrors.New("E063").Wrap(err))
		return
	}
	if len(req.Tree) == 0 {
		writeError(w, http.StatusBadRequest, ierrors.New("E063").WithDetail("missing tree"))
		return
	}
	tree, err := vdom.Decode(req.Tree)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	container := dom.NewContainer(req.Container)
	if err := dom.ParseInto(container, req.Base); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	counter := incdom.NewMutationCounter()
	opts := []incdom.Option{
		incdom.WithLogger(s.logger),
		incdom.WithAssertions(s.config.Assertions),
		incdom.WithObserver(counter),
	}
	if s.metrics != nil {
		opts = append(opts, incdom.WithObserver(s.metrics))
	}
	p := incdom.New(opts...)

	start := time.Now()
	err = p.PatchInner(container, vdom.Patch(tree))
	s.metrics.RecordPatch(time.Since(start), err)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	out, err := dom.InnerHTML(container)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	counts := make(map[string]int)
	for _, kind := range incdom.MutationKinds() {
		if n := counter.Count(kind); n > 0 {
			counts[kind.String()] = n
		}
	}
	writeJSON(w, http.StatusOK, PatchResponse{
		HTML:      out,
		Mutations: counter.Total(),
		Counts:    counts,
	})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, session.ErrMaxSessionsReached) || errors.Is(err, session.ErrManagerStopped) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err)
		return
	}
	defer s.sessions.Close(sess.ID)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.metrics.RecordWebSocketError("upgrade")
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.config.MaxBodyBytes)

	lc := &liveConn{server: s, conn: conn, session: sess}
	stop := make(chan struct{})
	defer close(stop)
	go lc.closeOnDone(stop)

	if err := lc.sendFrame(sess.Snapshot(), protocol.FlagSnapshot); err != nil {
		return
	}
	lc.run(r.Context())
}

// liveConn serves one /live connection.
type liveConn struct {
	server  *Server
	conn    *websocket.Conn
	session *session.Session
}

func (lc *liveConn) run(ctx context.Context) {
	logger := lc.server.logger.With("session_id", lc.session.ID)
	for {
		msgType, data, err := lc.conn.ReadMessage()
		if err != nil {
			select {
			case <-lc.session.Done():
				logger.Debug("session closed, connection dropped")
				return
			default:
			}
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				lc.server.metrics.RecordWebSocketError("read")
				logger.Debug("websocket read ended", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			if lc.sendError(ierrors.New("E063").WithDetail("trees must be sent as text messages")) != nil {
				return
			}
			continue
		}

		tree, err := vdom.Decode(data)
		if err != nil {
			if lc.sendError(err) != nil {
				return
			}
			continue
		}

		frame, err := lc.session.Apply(ctx, tree)
		if frame != nil {
			if werr := lc.sendFrame(frame, 0); werr != nil {
				return
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if lc.sendError(err) != nil {
				return
			}
		}
	}
}

// closeOnDone closes the connection when the session is closed by the
// manager, which unblocks run.
func (lc *liveConn) closeOnDone(stop <-chan struct{}) {
	select {
	case <-stop:
	case <-lc.session.Done():
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed")
		_ = lc.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = lc.conn.Close()
	}
}

func (lc *liveConn) sendFrame(f *protocol.MutationsFrame, flags protocol.FrameFlags) error {
	fr := protocol.NewFrame(protocol.FrameMutations, protocol.EncodeMutations(f))
	fr.Flags = flags
	return lc.write(websocket.BinaryMessage, fr.Encode())
}

func (lc *liveConn) sendError(err error) error {
	data, merr := json.Marshal(errorMessage(err, lc.session.Seq()))
	if merr != nil {
		return merr
	}
	return lc.write(websocket.TextMessage, data)
}

func (lc *liveConn) write(msgType int, data []byte) error {
	_ = lc.conn.SetWriteDeadline(time.Now().Add(lc.server.config.WriteTimeout))
	if err := lc.conn.WriteMessage(msgType, data); err != nil {
		lc.server.metrics.RecordWebSocketError("write")
		return err
	}
	return nil
}

func errorMessage(err error, seq uint64) ErrorMessage {
	return ErrorMessage{
		Type:    "error",
		Code:    ierrors.CodeOf(err),
		Message: err.Error(),
		Seq:     seq,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorMessage(err, 0))
}
