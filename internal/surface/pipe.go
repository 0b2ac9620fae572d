package surface

import (
	"sync"

	"github.com/Rorical/CodeAssist/internal/protocol"
)

// PipeEnd is one side of an in-memory surface. The host keeps one end and
// a panel running in the same process keeps the other.
type PipeEnd struct {
	kind  Kind
	inbox chan protocol.Message
	peer  *PipeEnd
	done  chan struct{}
	once  *sync.Once
}

// Pipe returns two connected ends. Closing either closes both.
func Pipe(kind Kind) (host, page *PipeEnd) {
	done := make(chan struct{})
	once := &sync.Once{}
	host = &PipeEnd{kind: kind, inbox: make(chan protocol.Message, 64), done: done, once: once}
	page = &PipeEnd{kind: kind, inbox: make(chan protocol.Message, 64), done: done, once: once}
	host.peer = page
	page.peer = host
	return host, page
}

func (p *PipeEnd) Kind() Kind {
	return p.kind
}

func (p *PipeEnd) Post(msg protocol.Message) error {
	select {
	case <-p.done:
		return ErrClosed
	default:
	}
	select {
	case p.peer.inbox <- msg:
		return nil
	case <-p.done:
		return ErrClosed
	}
}

func (p *PipeEnd) Reveal(preserveFocus bool) error {
	return p.Post(protocol.Reveal{PreserveFocus: preserveFocus})
}

// Messages never closes; watch Done to learn the pipe is gone
func (p *PipeEnd) Messages() <-chan protocol.Message {
	return p.inbox
}

func (p *PipeEnd) Done() <-chan struct{} {
	return p.done
}

func (p *PipeEnd) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}
