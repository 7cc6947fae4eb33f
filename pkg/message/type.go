package message

type MessageType int

const (
	MessageTypeSystem MessageType = iota
	MessageTypeUser
	MessageTypeAssistant
)

// String returns the wire-level role name for MessageType
func (m MessageType) String() string {
	switch m {
	case MessageTypeSystem:
		return "system"
	case MessageTypeUser:
		return "user"
	case MessageTypeAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}
