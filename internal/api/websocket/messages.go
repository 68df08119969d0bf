package websocket

import (
	"time"

	"github.com/KevinKickass/OpenIOLink/internal/publish"
	"github.com/KevinKickass/OpenIOLink/internal/types"
	"github.com/google/uuid"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Decoding
	MessageTypeDecodeResult MessageType = "decode_result"
	MessageTypeStateUpdate  MessageType = "state_update"

	// Device specs
	MessageTypeSpecRegistered MessageType = "spec_registered"
	MessageTypeSpecRemoved    MessageType = "spec_removed"

	// System messages
	MessageTypeSystemStatus MessageType = "system_status"

	// Replies to client commands
	MessageTypeSubscribed MessageType = "subscribed"
	MessageTypeError      MessageType = "error"
)

// Message represents a WebSocket message
type Message struct {
	ID        uuid.UUID   `json:"id"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`

	// Spec scopes the message to clients subscribed to that spec. Empty goes to everyone.
	Spec string `json:"-"`
}

// DecodeResultData is one decoded buffer as sent on the live feed.
type DecodeResultData struct {
	Spec     string               `json:"spec"`
	Data     string               `json:"data"`
	ParentID string               `json:"parent_id,omitempty"`
	OK       bool                 `json:"ok"`
	Fields   []types.DecodedField `json:"fields"`
	Nodes    []publish.StateNode  `json:"nodes,omitempty"`
}

type SpecData struct {
	Name     string `json:"name"`
	VendorID *int   `json:"vendor_id,omitempty"`
	DeviceID *int   `json:"device_id,omitempty"`
	Fields   int    `json:"fields,omitempty"`
}

type SubscribedData struct {
	Specs []string `json:"specs"`
}

type ErrorData struct {
	Message string `json:"message"`
}

// NewMessage creates a new message with current timestamp
func NewMessage(msgType MessageType, data interface{}) Message {
	return Message{
		ID:        uuid.New(),
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func NewDecodeResultMessage(data DecodeResultData) Message {
	msg := NewMessage(MessageTypeDecodeResult, data)
	msg.Spec = data.Spec
	return msg
}

func NewSpecRegisteredMessage(spec *types.DeviceSpecification) Message {
	return NewMessage(MessageTypeSpecRegistered, SpecData{
		Name:     spec.Name,
		VendorID: spec.VendorID,
		DeviceID: spec.DeviceID,
		Fields:   len(spec.Fields),
	})
}

func NewSpecRemovedMessage(name string) Message {
	return NewMessage(MessageTypeSpecRemoved, SpecData{Name: name})
}

func NewSystemStatusMessage(status interface{}) Message {
	return NewMessage(MessageTypeSystemStatus, status)
}
