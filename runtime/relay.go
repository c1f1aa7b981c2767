package runtime

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"

	"snappy/contract"
	"snappy/domain"
	"snappy/domain/event"
	"snappy/moderation"
)

// Frame is an inbound relay event, already parsed by the transport layer.
type Frame struct {
	Type    string `json:"type"`
	UserID  string `json:"userId,omitempty"`
	To      string `json:"to,omitempty"`
	Message string `json:"message,omitempty"`
}

const (
	FrameIdentify = "identify"
	FrameSend     = "send"
)

type relayState int

const (
	stateUnbound relayState = iota
	stateBound
	stateClosed
)

// Relay is the per-connection protocol handler. Each live connection owns
// exactly one Relay, driven from that connection's single read loop:
// Handle and Close are therefore not called concurrently. The sink is the
// connection's own outbound queue, registered under the claimed identity
// once an identify frame arrives.
//
// Delivery is best-effort by policy (DropIfAbsent): a send whose recipient
// has no presence entry is dropped silently, as is any malformed frame.
// Durability belongs to the separate append path, never to the relay.
type Relay struct {
	presence  contract.IPresence
	moderator moderation.Moderator
	sink      contract.EventSink
	log       *slog.Logger

	state  relayState
	userID string
}

func NewRelay(presence contract.IPresence, moderator moderation.Moderator,
	sink contract.EventSink, log *slog.Logger) *Relay {
	return &Relay{
		presence:  presence,
		moderator: moderator,
		sink:      sink,
		log:       log,
		state:     stateUnbound,
	}
}

// Handle processes one inbound frame according to the current state.
// Unknown frame types are dropped.
func (r *Relay) Handle(f Frame) {
	switch f.Type {
	case FrameIdentify:
		r.identify(f.UserID)
	case FrameSend:
		r.send(f.To, f.Message)
	default:
		r.log.Debug(fmt.Sprintf("Dropping frame of unknown type %q", f.Type))
	}
}

// identify binds the connection to the claimed user id and registers its
// sink. The id is trusted as given; verification happened at the session
// boundary. Re-identifying rebinds under the new id.
func (r *Relay) identify(userID string) {
	if r.state == stateClosed || domain.Blank(userID) {
		return
	}
	r.userID = strings.TrimSpace(userID)
	r.presence.Register(r.userID, r.sink)
	r.state = stateBound
	r.log.Debug("Connection bound", "user", r.userID)
}

// send forwards a message to the recipient's sink when the recipient is
// currently present. The presence lock is released before Consume is
// called, so a slow peer can never stall the registry or this handler.
func (r *Relay) send(to, message string) {
	if r.state != stateBound {
		r.log.Debug("Dropping send from unbound connection")
		return
	}
	if domain.Blank(to) || domain.Blank(message) {
		r.log.Debug("Dropping malformed send frame", "user", r.userID)
		return
	}

	target, ok := r.presence.Lookup(strings.TrimSpace(to))
	if !ok {
		// Recipient offline: best-effort miss, not a failure.
		r.log.Debug("Recipient not present, dropping", "user", r.userID, "to", to)
		return
	}

	content, _ := r.moderator.Censor(message)
	info := whatlanggo.Detect(content)

	target.Consume(event.DirectMessage{
		From:    r.userID,
		To:      strings.TrimSpace(to),
		Content: content,
		Lang:    info.Lang.Iso6391(),
		At:      time.Now().UTC(),
	})
}

// Close transitions to Closed and releases the presence entry owned by
// this connection's sink. Safe to call on a never-bound connection.
func (r *Relay) Close() {
	if r.state == stateClosed {
		return
	}
	if r.state == stateBound {
		r.presence.Unregister(r.sink)
	}
	r.state = stateClosed
}

// UserID returns the bound identity, empty while unbound.
func (r *Relay) UserID() string {
	return r.userID
}

// Bound reports whether an identify frame has been accepted.
func (r *Relay) Bound() bool {
	return r.state == stateBound
}
