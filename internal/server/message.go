package server

import (
	"encoding/json"
	"time"

	"github.com/lox/pokerrooms/internal/game"
	"github.com/lox/pokerrooms/internal/room"
)

// Message is the websocket envelope in both directions.
type Message struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage wraps a payload with the current timestamp.
func NewMessage(messageType string, data any) (*Message, error) {
	var raw json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = bytes
	}
	return &Message{
		Type:      messageType,
		Data:      raw,
		Timestamp: time.Now(),
	}, nil
}

// mustMessage is for payloads built from our own types, which always
// marshal.
func mustMessage(messageType string, data any) *Message {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		panic("server: marshal " + messageType + ": " + err.Error())
	}
	return msg
}

// Client-to-server events.
const (
	EvtAuth = "auth"

	EvtRoomJoin           = "room:join"
	EvtRoomLeave          = "room:leave"
	EvtRoomSit            = "room:sit"
	EvtRoomStand          = "room:stand"
	EvtRoomSitOut         = "room:sit-out"
	EvtRoomRebuy          = "room:rebuy"
	EvtRoomDeclineRebuy   = "room:decline-rebuy"
	EvtRoomChat           = "room:chat"
	EvtRoomUpdateRules    = "room:update-rules"
	EvtRoomUpdateSettings = "room:update-settings"
	EvtRoomSwitchVariant  = "room:switch-variant"

	EvtGameStart         = "game:start"
	EvtGameAction        = "game:action"
	EvtGameStraddle      = "game:straddle"
	EvtGameShowHand      = "game:show-hand"
	EvtGameRunItSelect   = "game:run-it-select"
	EvtGameRunItConfirm  = "game:run-it-confirm"
	EvtGameChooseVariant = "game:choose-variant"

	EvtSetBombPotPreference  = "player:set-bomb-pot-preference"
	EvtSetStraddlePreference = "player:set-straddle-preference"
)

// Server-to-client events.
const (
	EvtAuthOK = "auth:ok"

	EvtRoomJoined          = "room:joined"
	EvtRoomPlayerJoined    = "room:player-joined"
	EvtRoomPlayerLeft      = "room:player-left"
	EvtRoomPlayerRebuy     = "room:player-rebuy"
	EvtRoomRebuyPrompt     = "room:rebuy-prompt"
	EvtRoomSettingsUpdated = "room:settings-updated"
	EvtRoomRulesUpdated    = "room:rules-updated"
	EvtRoomChatMessage     = "room:chat"

	EvtGameState            = "game:state"
	EvtGameActionDone       = "game:action"
	EvtGameWinner           = "game:winner"
	EvtGameTimer            = "game:timer"
	EvtGameTimerWarning     = "game:timer-warning"
	EvtGameAutoFold         = "game:auto-fold"
	EvtGameHandShown        = "game:hand-shown"
	EvtGameSevenDeuceBonus  = "game:seven-deuce-bonus"
	EvtGameRunItPrompt      = "game:run-it-prompt"
	EvtGameRunItDecision    = "game:run-it-decision"
	EvtGameRunItResult      = "game:run-it-result"
	EvtGameStraddlePlaced   = "game:straddle-placed"
	EvtGameStraddleDeclined = "game:straddle-declined"
	EvtGameStraddlePrompt   = "game:straddle-prompt"
	EvtGameVariantChanged   = "game:variant-changed"

	EvtError = "error"
)

// Error codes surfaced to clients.
const (
	CodeNotInRoom        = "NOT_IN_ROOM"
	CodeRoomNotFound     = "ROOM_NOT_FOUND"
	CodeNotSeated        = "NOT_SEATED"
	CodeAlreadySeated    = "ALREADY_SEATED"
	CodeJoinFailed       = "JOIN_FAILED"
	CodeInvalidAction    = "INVALID_ACTION"
	CodeInvalidAmount    = "INVALID_AMOUNT"
	CodeHasChips         = "HAS_CHIPS"
	CodeNoRebuyPrompt    = "NO_REBUY_PROMPT"
	CodeNotInPrompt      = "NOT_IN_PROMPT"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeStraddleFailed   = "STRADDLE_FAILED"
	CodeInvalidChoice    = "INVALID_CHOICE"
	CodeCannotConfirm    = "CANNOT_CONFIRM"
	CodeNoCards          = "NO_CARDS"
	CodeNotDealer        = "NOT_DEALER"
	CodeNotEnoughPlayers = "NOT_ENOUGH_PLAYERS"
	CodeSwitchFailed     = "SWITCH_FAILED"
)

// Client payloads.

type AuthData struct {
	Token    string `json:"token,omitempty"`
	ClientID string `json:"clientId,omitempty"`
	Username string `json:"username,omitempty"`
}

type JoinRoomData struct {
	Code     string `json:"code"`
	Password string `json:"password,omitempty"`
}

type SitData struct {
	Seat  int `json:"seat"`
	BuyIn int `json:"buyIn"`
}

type SitOutData struct {
	SittingOut bool `json:"sittingOut"`
}

type RebuyData struct {
	Amount int `json:"amount"`
}

type ChatData struct {
	Text string `json:"text"`
}

type ActionData struct {
	Type      game.ActionType `json:"type"`
	Amount    int             `json:"amount,omitempty"`
	Timestamp time.Time       `json:"timestamp,omitempty"`
}

type StraddleData struct {
	Accept bool `json:"accept"`
}

type RunItSelectData struct {
	Choice int `json:"choice"`
}

type VariantData struct {
	Variant string `json:"variant"`
}

type PreferenceData struct {
	Enabled bool `json:"enabled"`
}

type UpdateSettingsData struct {
	Stakes     *game.Stakes `json:"stakes,omitempty"`
	MaxPlayers *int         `json:"maxPlayers,omitempty"`

	// CustomRules stays raw so a partial update merges over the table's
	// current rules instead of zeroing unspecified options.
	CustomRules json.RawMessage `json:"customRules,omitempty"`
}

// Server payloads.

type AuthOKData struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RoomJoinedData struct {
	Room     room.Summary `json:"room"`
	UserID   string       `json:"userId"`
	Username string       `json:"username"`
}

type PlayerJoinedData struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Seat     *int   `json:"seat,omitempty"`
}

type PlayerLeftData struct {
	UserID string `json:"userId"`
}

type PlayerRebuyData struct {
	UserID string `json:"userId"`
	Amount int    `json:"amount"`
}

type ChatMessageData struct {
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	Text     string    `json:"text"`
	SentAt   time.Time `json:"sentAt"`
}

type SettingsUpdatedData struct {
	Room room.Summary `json:"room"`
}

type TimerData struct {
	PlayerID      string `json:"playerId"`
	TimeRemaining int    `json:"timeRemaining"`
}

type TimerWarningData struct {
	PlayerID  string `json:"playerId"`
	ExtraTime int    `json:"extraTime"`
}

type AutoFoldData struct {
	PlayerID string `json:"playerId"`
}

type HandShownData struct {
	PlayerID string      `json:"playerId"`
	Cards    interface{} `json:"cards"`
}

type RunItDecisionData struct {
	PlayerID  string `json:"playerId"`
	Choice    int    `json:"choice"`
	Confirmed bool   `json:"confirmed"`
}

type RunItResultData struct {
	Boards      interface{} `json:"boards"`
	FinalChoice int         `json:"finalChoice"`
}

type StraddlePlacedData struct {
	PlayerID string `json:"playerId"`
	Amount   int    `json:"amount"`
	Seat     int    `json:"seat"`
}

type StraddleDeclinedData struct {
	Seat int `json:"seat"`
}

// RebuyPromptData is broadcast when the rebuy barrier opens or changes;
// a null prompt means the barrier cleared.
type RebuyPromptData struct {
	Prompt *RebuyPrompt `json:"prompt"`
}

// RebuyDecision is one busted seat's pending/rebuy/decline state.
type RebuyDecision string

const (
	RebuyPending  RebuyDecision = "pending"
	RebuyAccepted RebuyDecision = "rebuy"
	RebuyDeclined RebuyDecision = "decline"
)

// RebuyPrompt lists every busted seat that must decide before the next
// hand. TimeoutAt is wall clock for client display only.
type RebuyPrompt struct {
	Players   []string                 `json:"players"`
	Decisions map[string]RebuyDecision `json:"decisions"`
	TimeoutAt time.Time                `json:"timeoutAt"`
}

func (p *RebuyPrompt) decided() bool {
	for _, d := range p.Decisions {
		if d == RebuyPending {
			return false
		}
	}
	return true
}
