package wire

import (
	"encoding/json"
	"fmt"

	"github.com/pongarena/api/internal/pong"
)

// Inbound hub-socket message types.
const (
	TypeQueueRegister        = "queue_register"
	TypeQueueUnregister      = "queue_unregister"
	TypeLocalMatchCreate     = "local_match_create"
	TypeTournamentCreate     = "tournament_create"
	TypeTournamentRegister   = "tournament_register"
	TypeTournamentUnregister = "tournament_unregister"
	TypeTournamentStart      = "tournament_start"
	TypeTournamentCancel     = "tournament_cancel"
	TypeTournamentGetOpen    = "tournament_get_open"
	TypeTabActive            = "tab_active"
)

// HubRequest is the tagged union of every message a client may send on the
// hub socket. Dispatching is a type switch over concrete members, so an
// unhandled case is a compile-visible gap rather than a silent fallthrough.
type HubRequest interface {
	hubRequest()
}

type QueueRegister struct {
	Mode pong.Mode `json:"mode"`
}

type QueueUnregister struct{}

type LocalMatchCreate struct{}

type TournamentCreate struct {
	Name       string `json:"name"`
	MaxPlayers int    `json:"max_players"`
}

type TournamentRegister struct {
	TournamentID string `json:"tournament_id"`
}

type TournamentUnregister struct {
	TournamentID string `json:"tournament_id"`
}

type TournamentStart struct {
	TournamentID string `json:"tournament_id"`
}

type TournamentCancel struct {
	TournamentID string `json:"tournament_id"`
}

type TournamentGetOpen struct{}

// TabActive is an advisory UI signal. It must never influence pairing.
type TabActive struct {
	Active bool `json:"active"`
}

func (QueueRegister) hubRequest()        {}
func (QueueUnregister) hubRequest()      {}
func (LocalMatchCreate) hubRequest()     {}
func (TournamentCreate) hubRequest()     {}
func (TournamentRegister) hubRequest()   {}
func (TournamentUnregister) hubRequest() {}
func (TournamentStart) hubRequest()      {}
func (TournamentCancel) hubRequest()     {}
func (TournamentGetOpen) hubRequest()    {}
func (TabActive) hubRequest()            {}

// ParseHubRequest decodes one hub-socket text message. Unknown types return
// (nil, nil): the message is ignored by design, not treated as an error.
// Malformed JSON is an error and the caller closes the socket.
func ParseHubRequest(data []byte) (HubRequest, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding hub message: %w", err)
	}

	unmarshal := func(v HubRequest) (HubRequest, error) {
		if err := json.Unmarshal(data, v); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", env.Type, err)
		}
		return v, nil
	}

	switch env.Type {
	case TypeQueueRegister:
		return unmarshal(&QueueRegister{})
	case TypeQueueUnregister:
		return QueueUnregister{}, nil
	case TypeLocalMatchCreate:
		return LocalMatchCreate{}, nil
	case TypeTournamentCreate:
		return unmarshal(&TournamentCreate{})
	case TypeTournamentRegister:
		return unmarshal(&TournamentRegister{})
	case TypeTournamentUnregister:
		return unmarshal(&TournamentUnregister{})
	case TypeTournamentStart:
		return unmarshal(&TournamentStart{})
	case TypeTournamentCancel:
		return unmarshal(&TournamentCancel{})
	case TypeTournamentGetOpen:
		return TournamentGetOpen{}, nil
	case TypeTabActive:
		return unmarshal(&TabActive{})
	default:
		return nil, nil
	}
}

// Outbound hub-socket event types.
const (
	TypeRemoteMatchReady    = "remote_match_ready"
	TypeMatchInProgress     = "match_in_progress"
	TypeAlreadyInGame       = "already_in_game"
	TypeRegistered          = "registered"
	TypeRegistrationTimeout = "registration_timeout"
	TypeRegistrationError   = "registration_error"
	TypeTournamentStarting  = "tournament_starting"
	TypeTournamentCanceled  = "tournament_canceled"
	TypeOpenTournamentsList = "open_tournaments_list"
	TypeTournamentSchedule  = "tournament_schedule"
	TypeTournamentFinished  = "tournament_finished"
)

type RemoteMatchReady struct {
	Type    string `json:"type"`
	MatchID string `json:"match_id"`
}

func NewRemoteMatchReady(matchID string) RemoteMatchReady {
	return RemoteMatchReady{Type: TypeRemoteMatchReady, MatchID: matchID}
}

type MatchInProgress struct {
	Type    string `json:"type"`
	MatchID string `json:"match_id"`
}

func NewMatchInProgress(matchID string) MatchInProgress {
	return MatchInProgress{Type: TypeMatchInProgress, MatchID: matchID}
}

type AlreadyInGame struct {
	Type string `json:"type"`
}

func NewAlreadyInGame() AlreadyInGame {
	return AlreadyInGame{Type: TypeAlreadyInGame}
}

type Registered struct {
	Type string `json:"type"`
}

func NewRegistered() Registered {
	return Registered{Type: TypeRegistered}
}

type RegistrationTimeout struct {
	Type string `json:"type"`
}

func NewRegistrationTimeout() RegistrationTimeout {
	return RegistrationTimeout{Type: TypeRegistrationTimeout}
}

type RegistrationError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func NewRegistrationError(msg string) RegistrationError {
	return RegistrationError{Type: TypeRegistrationError, Error: msg}
}

type TournamentStarting struct {
	Type string `json:"type"`
}

func NewTournamentStarting() TournamentStarting {
	return TournamentStarting{Type: TypeTournamentStarting}
}

type TournamentCanceled struct {
	Type string `json:"type"`
}

func NewTournamentCanceled() TournamentCanceled {
	return TournamentCanceled{Type: TypeTournamentCanceled}
}

// OpenTournament is one entry of the open tournament list, with IsOwner
// computed per recipient.
type OpenTournament struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	MaxPlayers int      `json:"max_players"`
	Owner      string   `json:"owner"`
	Users      []string `json:"users"`
	IsOwner    bool     `json:"is_owner"`
}

type OpenTournamentsList struct {
	Type        string           `json:"type"`
	Tournaments []OpenTournament `json:"tournaments"`
}

func NewOpenTournamentsList(ts []OpenTournament) OpenTournamentsList {
	if ts == nil {
		ts = []OpenTournament{}
	}
	return OpenTournamentsList{Type: TypeOpenTournamentsList, Tournaments: ts}
}

// TournamentSchedule lists one round's pairings in seed order. A bye is a
// pair whose second slot is empty.
type TournamentSchedule struct {
	Type           string      `json:"type"`
	TournamentName string      `json:"tournament_name"`
	Matches        [][2]string `json:"matches"`
}

func NewTournamentSchedule(name string, matches [][2]string) TournamentSchedule {
	return TournamentSchedule{Type: TypeTournamentSchedule, TournamentName: name, Matches: matches}
}

type TournamentFinished struct {
	Type           string         `json:"type"`
	TournamentName string         `json:"tournament_name"`
	UserScores     map[string]int `json:"user_scores"`
}

func NewTournamentFinished(name string, scores map[string]int) TournamentFinished {
	return TournamentFinished{Type: TypeTournamentFinished, TournamentName: name, UserScores: scores}
}
