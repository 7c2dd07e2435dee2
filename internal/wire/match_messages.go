package wire

import (
	"encoding/json"
	"fmt"
)

// Inbound match-socket message types.
const (
	TypePlayerInput = "player_input"
)

// MatchRequest is the tagged union of client messages on a match socket.
type MatchRequest interface {
	matchRequest()
}

// PlayerInput sets a paddle's movement direction. Direction is -1 (up),
// 0 (stop) or 1 (down); PlayerID selects the paddle slot, which only
// matters for local matches where one socket drives both paddles.
type PlayerInput struct {
	Direction int `json:"direction"`
	PlayerID  int `json:"player_id"`
}

func (PlayerInput) matchRequest() {}

// ParseMatchRequest decodes one match-socket text message. Unknown types
// are ignored, malformed JSON is an error.
func ParseMatchRequest(data []byte) (MatchRequest, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding match message: %w", err)
	}

	switch env.Type {
	case TypePlayerInput:
		var in PlayerInput
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, fmt.Errorf("decoding player_input: %w", err)
		}
		return in, nil
	default:
		return nil, nil
	}
}

// Outbound match-socket event types.
const (
	TypeUserMapping      = "user_mapping"
	TypeStartTimerUpdate = "start_timer_update"
	TypePlayerScores     = "player_scores"
	TypeGameOver         = "game_over"
)

// UserMapping tells each participant which user id drives which paddle.
// Player2 is null for local matches.
type UserMapping struct {
	Type         string  `json:"type"`
	IsLocalMatch bool    `json:"is_local_match"`
	Player1      string  `json:"player1"`
	Player2      *string `json:"player2"`
}

func NewUserMapping(isLocal bool, player1, player2 string) UserMapping {
	m := UserMapping{Type: TypeUserMapping, IsLocalMatch: isLocal, Player1: player1}
	if !isLocal {
		m.Player2 = &player2
	}
	return m
}

type StartTimerUpdate struct {
	Type       string `json:"type"`
	StartTimer int    `json:"start_timer"`
}

func NewStartTimerUpdate(seconds int) StartTimerUpdate {
	return StartTimerUpdate{Type: TypeStartTimerUpdate, StartTimer: seconds}
}

type PlayerScores struct {
	Type    string `json:"type"`
	Player1 int    `json:"player1"`
	Player2 int    `json:"player2"`
}

func NewPlayerScores(p1, p2 int) PlayerScores {
	return PlayerScores{Type: TypePlayerScores, Player1: p1, Player2: p2}
}

// GameOver carries the winner's user id, or an empty string when the match
// ended with no winner.
type GameOver struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

func NewGameOver(winnerID string) GameOver {
	return GameOver{Type: TypeGameOver, Data: winnerID}
}
