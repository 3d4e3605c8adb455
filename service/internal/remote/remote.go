// Package remote lets a seat be played by a decision maker in another
// process. Observations go out and actions come back as JSON messages over
// a websocket.
package remote

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/jason-s-yu/cabo/engine"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Message types.
const (
	MsgDecide   = "decide"
	MsgRejected = "rejected"
)

const notifyTimeout = 5 * time.Second

// Request is sent to the decision maker.
type Request struct {
	Type        string              `json:"type"`
	ID          uint64              `json:"id"`
	Observation *engine.Observation `json:"observation,omitempty"`
	Action      *engine.Action      `json:"action,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// Response answers a decide request with the same ID.
type Response struct {
	ID     uint64        `json:"id"`
	Action engine.Action `json:"action"`
	Error  string        `json:"error,omitempty"`
}

// ----------------------------------------------------------------------------
// Client side
// ----------------------------------------------------------------------------

// Provider is an engine.DecisionProvider backed by a websocket endpoint. The
// connection is dialed lazily and redialed after any failure, so a timed out
// decision never leaves a late answer on the wire.
type Provider struct {
	URL string
	Log *logrus.Entry

	mu   sync.Mutex
	conn *websocket.Conn
	seq  uint64
}

// NewProvider returns a provider for the endpoint at url. log may be nil.
func NewProvider(url string, log *logrus.Entry) *Provider {
	if log == nil {
		log = logrus.WithField("component", "remote")
	}
	return &Provider{URL: url, Log: log.WithField("url", url)}
}

// Decide sends obs and waits for the answer.
func (p *Provider) Decide(ctx context.Context, obs engine.Observation) (engine.Action, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	conn, err := p.connect(ctx)
	if err != nil {
		return engine.Action{}, err
	}
	p.seq++
	req := Request{Type: MsgDecide, ID: p.seq, Observation: &obs}
	if err := wsjson.Write(ctx, conn, req); err != nil {
		p.drop()
		return engine.Action{}, errors.Wrap(err, "send observation")
	}

	var resp Response
	if err := wsjson.Read(ctx, conn, &resp); err != nil {
		p.drop()
		return engine.Action{}, errors.Wrap(err, "read action")
	}
	if resp.ID != req.ID {
		p.drop()
		return engine.Action{}, errors.Errorf("response id %d, want %d", resp.ID, req.ID)
	}
	if resp.Error != "" {
		return engine.Action{}, errors.Errorf("remote: %s", resp.Error)
	}
	return resp.Action, nil
}

// ActionRejected forwards the refusal to the decision maker. Delivery is
// best effort.
func (p *Provider) ActionRejected(a engine.Action, reason error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	msg := Request{Type: MsgRejected, Action: &a, Error: reason.Error()}
	if err := wsjson.Write(ctx, p.conn, msg); err != nil {
		p.Log.WithError(err).Warn("could not forward rejection")
		p.drop()
	}
}

// Close ends the session.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close(websocket.StatusNormalClosure, "round over")
	p.conn = nil
	return err
}

func (p *Provider) connect(ctx context.Context) (*websocket.Conn, error) {
	if p.conn != nil {
		return p.conn, nil
	}
	conn, _, err := websocket.Dial(ctx, p.URL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", p.URL)
	}
	p.Log.Debug("connected")
	p.conn = conn
	return conn, nil
}

func (p *Provider) drop() {
	if p.conn != nil {
		p.conn.CloseNow()
		p.conn = nil
	}
}

// ----------------------------------------------------------------------------
// Server side
// ----------------------------------------------------------------------------

// Handler serves provider to remote seats. Every connection gets its own
// session; provider must be safe for concurrent use.
func Handler(provider engine.DecisionProvider, log *logrus.Entry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			log.WithError(err).Warn("websocket accept failed")
			return
		}
		defer conn.CloseNow()

		err = Serve(r.Context(), conn, provider)
		switch websocket.CloseStatus(err) {
		case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			log.Debug("remote session closed")
		default:
			log.WithError(err).Warn("remote session ended")
		}
	}
}

// Serve answers requests on conn until it closes.
func Serve(ctx context.Context, conn *websocket.Conn, provider engine.DecisionProvider) error {
	for {
		var req Request
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			return err
		}
		switch req.Type {
		case MsgDecide:
			resp := Response{ID: req.ID}
			if req.Observation == nil {
				resp.Error = "missing observation"
			} else if a, err := provider.Decide(ctx, *req.Observation); err != nil {
				resp.Error = err.Error()
			} else {
				resp.Action = a
			}
			if err := wsjson.Write(ctx, conn, resp); err != nil {
				return err
			}
		case MsgRejected:
			if l, ok := provider.(engine.RejectionListener); ok && req.Action != nil {
				l.ActionRejected(*req.Action, errors.New(req.Error))
			}
		default:
			conn.Close(websocket.StatusUnsupportedData, "unknown message type")
			return errors.Errorf("unknown message type %q", req.Type)
		}
	}
}
