package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Rorical/CodeAssist/internal/backend"
)

// Command tags
const (
	// host -> surface
	CmdSelectedCode  = "selectedCode"
	CmdBackendResult = "backendResult"
	CmdBackendError  = "backendError"
	CmdReveal        = "reveal"

	// surface -> host
	CmdRequestSelectedCode = "requestSelectedCode"
	CmdReplaceSelection    = "replaceSelection"
	CmdCallBackend         = "callBackend"
)

var (
	ErrNoCommand      = errors.New("message has no command")
	ErrUnknownCommand = errors.New("unknown command")
)

// Message is one JSON message crossing the host/surface boundary. The
// concrete types below are the complete set.
type Message interface {
	Command() string
}

type SelectedCode struct {
	Code string `json:"code"`
}

type BackendResult struct {
	ID   string `json:"id"`
	Data any    `json:"data"`
}

type BackendError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// Reveal asks a detached surface to come to the front
type Reveal struct {
	PreserveFocus bool `json:"preserveFocus"`
}

type RequestSelectedCode struct{}

type ReplaceSelection struct {
	Content string       `json:"content"`
	Mode    backend.Mode `json:"mode,omitempty"`
}

type CallBackend struct {
	ID   string                  `json:"id"`
	URL  string                  `json:"url,omitempty"`
	Body backend.AnalysisRequest `json:"body"`
}

func (SelectedCode) Command() string        { return CmdSelectedCode }
func (BackendResult) Command() string       { return CmdBackendResult }
func (BackendError) Command() string        { return CmdBackendError }
func (Reveal) Command() string              { return CmdReveal }
func (RequestSelectedCode) Command() string { return CmdRequestSelectedCode }
func (ReplaceSelection) Command() string    { return CmdReplaceSelection }
func (CallBackend) Command() string         { return CmdCallBackend }

// Encode writes m as a JSON object carrying its command tag
func Encode(m Message) ([]byte, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Command(), err)
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Command(), err)
	}
	tag, _ := json.Marshal(m.Command())
	fields["command"] = tag
	return json.Marshal(fields)
}

// Decode parses one tagged message. Messages without a command yield
// ErrNoCommand and unknown tags ErrUnknownCommand.
func Decode(data []byte) (Message, error) {
	var head struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}

	switch head.Command {
	case "":
		return nil, ErrNoCommand
	case CmdSelectedCode:
		return decodeAs[SelectedCode](data)
	case CmdBackendResult:
		return decodeAs[BackendResult](data)
	case CmdBackendError:
		return decodeAs[BackendError](data)
	case CmdReveal:
		return decodeAs[Reveal](data)
	case CmdRequestSelectedCode:
		return RequestSelectedCode{}, nil
	case CmdReplaceSelection:
		return decodeAs[ReplaceSelection](data)
	case CmdCallBackend:
		return decodeAs[CallBackend](data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, head.Command)
}

func decodeAs[T Message](data []byte) (Message, error) {
	var m T
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", m.Command(), err)
	}
	return m, nil
}
