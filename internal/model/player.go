package model

// PlayerID uniquely identifies a player across the system
type PlayerID string

// SessionID identifies a live client connection. A player's session handle
// changes whenever they reconnect; everything else about a Player is fixed
// at authentication time except the viewer count, which the auth layer
// refreshes on login.
type SessionID string

// Player represents an authenticated streamer participating in matches
type Player struct {
	ID           PlayerID  `json:"id"`
	Username     string    `json:"username"`
	ChannelName  string    `json:"channel_name"`
	ProfileImage string    `json:"profile_image,omitempty"`
	AccessToken  string    `json:"-"`
	ViewerCount  int       `json:"viewer_count"`
	SessionID    SessionID `json:"-"`
}

// PublicProfile is the subset of player data shared with an opponent
type PublicProfile struct {
	Username    string `json:"username"`
	ChannelName string `json:"channel_name"`
	ViewerCount int    `json:"viewer_count"`
}

// Profile returns the player's opponent-visible profile
func (p Player) Profile() PublicProfile {
	return PublicProfile{
		Username:    p.Username,
		ChannelName: p.ChannelName,
		ViewerCount: p.ViewerCount,
	}
}
