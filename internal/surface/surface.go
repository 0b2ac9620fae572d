// Package surface carries host messages to rendered panel instances.
//
// A Surface is one live page (the floating panel or the docked sidebar) with
// its own bidirectional message channel. Surfaces arrive over websocket from
// the HTTP server in this package, or as an in-memory Pipe.
package surface

import (
	"errors"

	"github.com/Rorical/CodeAssist/internal/protocol"
)

type Kind string

const (
	KindPanel   Kind = "panel"
	KindSidebar Kind = "sidebar"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindPanel, KindSidebar:
		return Kind(s), nil
	}
	return "", errors.New("unknown surface kind " + s)
}

var ErrClosed = errors.New("surface closed")

type Surface interface {
	Kind() Kind
	// Post delivers msg to the other side. Messages arrive in send order.
	Post(msg protocol.Message) error
	// Reveal brings the surface to the front, optionally leaving input
	// focus where it is.
	Reveal(preserveFocus bool) error
	// Messages yields inbound messages. Implementations may close it on
	// disposal, so readers also watch Done.
	Messages() <-chan protocol.Message
	// Done is closed when the surface is disposed
	Done() <-chan struct{}
	Close() error
}
