package model

// MessageType identifies an outbound gateway message
type MessageType string

const (
	// Queue acknowledgments, sent to the requesting session only
	MessageQueueJoined MessageType = "queue_joined"
	MessageQueueLeft   MessageType = "queue_left"

	// Match lifecycle
	MessageMatchFound  MessageType = "match_found"
	MessageGameStarted MessageType = "game_started"
	MessageGameUpdate  MessageType = "game_update"
)

// Message is the envelope for everything pushed through the gateway
type Message struct {
	Type     MessageType    `json:"type"`
	Message  string         `json:"message,omitempty"`
	RoomID   RoomID         `json:"room_id,omitempty"`
	Opponent *PublicProfile `json:"opponent,omitempty"`
	State    *GameSnapshot  `json:"state,omitempty"`
}

// NewQueueJoined builds the enqueue acknowledgment
func NewQueueJoined() Message {
	return Message{
		Type:    MessageQueueJoined,
		Message: "You've joined the matchmaking queue!",
	}
}

// NewQueueLeft builds the dequeue acknowledgment
func NewQueueLeft() Message {
	return Message{
		Type:    MessageQueueLeft,
		Message: "You've left the matchmaking queue.",
	}
}

// NewMatchFound builds the per-session pairing notification carrying the
// other player's public profile
func NewMatchFound(roomID RoomID, opponent PublicProfile) Message {
	return Message{
		Type:     MessageMatchFound,
		RoomID:   roomID,
		Opponent: &opponent,
	}
}

// NewGameStarted builds the start announcement broadcast to both sessions
func NewGameStarted() Message {
	return Message{
		Type:    MessageGameStarted,
		Message: "The tug of war has begun! Chat, type !PULL to help!",
	}
}

// NewGameUpdate wraps a snapshot for broadcast
func NewGameUpdate(state GameSnapshot) Message {
	return Message{
		Type:  MessageGameUpdate,
		State: &state,
	}
}
