package ws

// Inbound message variants are validated before anything reaches the core;
// malformed payloads are rejected at this boundary.

const (
	inboundJoinQueue  = "join_queue"
	inboundLeaveQueue = "leave_queue"
	inboundGameReady  = "game_ready"
)

type inboundMessage struct {
	Type   string         `json:"type" validate:"required,oneof=join_queue leave_queue game_ready"`
	Player *playerPayload `json:"player" validate:"required_if=Type join_queue,omitempty"`
	RoomID string         `json:"room_id" validate:"required_if=Type game_ready"`
}

type playerPayload struct {
	ID          string `json:"id"`
	Username    string `json:"username" validate:"required"`
	ChannelName string `json:"channel_name" validate:"required"`
	AccessToken string `json:"access_token" validate:"required"`
	ViewerCount int    `json:"viewer_count" validate:"gte=0"`
}
