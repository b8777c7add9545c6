package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"error": err.Error()})
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		o.printHealthResult(v)
	case RoomsResult:
		o.printRoomsResult(v)
	case QueueResult:
		o.printQueueResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult is the health check response
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}

// RoomInfo is one room in the rooms listing
type RoomInfo struct {
	RoomID       string  `json:"room_id"`
	Status       string  `json:"status"`
	RopePosition float64 `json:"rope_position"`
	Player1      string  `json:"player1"`
	Player2      string  `json:"player2"`
	WinnerID     string  `json:"winner_id,omitempty"`
}

// RoomsResult is the rooms listing response
type RoomsResult struct {
	Rooms []RoomInfo `json:"rooms"`
}

func (o *Output) printRoomsResult(r RoomsResult) {
	if len(r.Rooms) == 0 {
		fmt.Println("No rooms")
		return
	}
	for _, room := range r.Rooms {
		fmt.Printf("%s  %s  rope=%+.1f  %s vs %s", room.RoomID, room.Status, room.RopePosition, room.Player1, room.Player2)
		if room.WinnerID != "" {
			fmt.Printf("  winner=%s", room.WinnerID)
		}
		fmt.Println()
	}
}

// QueueEntryInfo is one waiting player in the queue listing
type QueueEntryInfo struct {
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joined_at"`
}

// QueueResult is the queue listing response
type QueueResult struct {
	Queue []QueueEntryInfo `json:"queue"`
}

func (o *Output) printQueueResult(q QueueResult) {
	if len(q.Queue) == 0 {
		fmt.Println("Queue is empty")
		return
	}
	for i, entry := range q.Queue {
		fmt.Printf("%d. %s (waiting since %s)\n", i+1, entry.Username, entry.JoinedAt.Format(time.RFC3339))
	}
}
