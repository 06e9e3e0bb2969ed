package server

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/lox/pokerrooms/internal/deck"
	"github.com/lox/pokerrooms/internal/game"
	"github.com/lox/pokerrooms/internal/room"
)

// HandleMessage dispatches one parsed client envelope. Everything except
// auth requires a verified identity first.
func (s *Server) HandleMessage(c *Connection, msg *Message) {
	s.logger.Debug("received message", "type", msg.Type, "user", c.UserID())

	if msg.Type == EvtAuth {
		var data AuthData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(CodeUnauthorized, "failed to parse auth data")
			return
		}
		s.handleAuth(c, data)
		return
	}

	if c.UserID() == "" {
		c.sendError(CodeUnauthorized, "must authenticate first")
		return
	}

	switch msg.Type {
	case EvtRoomJoin:
		var data JoinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(CodeJoinFailed, "failed to parse join data")
			return
		}
		s.handleRoomJoin(c, data)

	case EvtRoomLeave:
		s.handleRoomLeave(c)

	case EvtRoomSit:
		var data SitData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(CodeInvalidAction, "failed to parse sit data")
			return
		}
		s.handleSit(c, data)

	case EvtRoomStand:
		s.handleStand(c)

	case EvtRoomSitOut:
		var data SitOutData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(CodeInvalidAction, "failed to parse sit-out data")
			return
		}
		s.handleSitOut(c, data)

	case EvtRoomRebuy:
		var data RebuyData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(CodeInvalidAmount, "failed to parse rebuy data")
			return
		}
		s.withRuntime(c, func(rt *roomRuntime) error {
			return rt.HandleRebuy(c.UserID(), data.Amount)
		})

	case EvtRoomDeclineRebuy:
		s.withRuntime(c, func(rt *roomRuntime) error {
			return rt.HandleDeclineRebuy(c.UserID())
		})

	case EvtRoomChat:
		var data ChatData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(CodeInvalidAction, "failed to parse chat data")
			return
		}
		s.handleChat(c, data)

	case EvtRoomUpdateRules:
		s.handleUpdateRules(c, msg.Data)

	case EvtRoomUpdateSettings:
		var data UpdateSettingsData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(CodeInvalidAction, "failed to parse settings")
			return
		}
		s.handleUpdateSettings(c, data)

	case EvtRoomSwitchVariant:
		var data VariantData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(CodeSwitchFailed, "failed to parse variant")
			return
		}
		s.handleSwitchVariant(c, data, false)

	case EvtGameChooseVariant:
		var data VariantData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(CodeSwitchFailed, "failed to parse variant")
			return
		}
		s.handleSwitchVariant(c, data, true)

	case EvtGameStart:
		s.handleGameStart(c)

	case EvtGameAction:
		var data ActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(CodeInvalidAction, "failed to parse action data")
			return
		}
		s.withRuntime(c, func(rt *roomRuntime) error {
			return rt.HandleAction(c.UserID(), game.Action{Type: data.Type, Amount: data.Amount})
		})

	case EvtGameStraddle:
		var data StraddleData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(CodeStraddleFailed, "failed to parse straddle data")
			return
		}
		s.withRuntime(c, func(rt *roomRuntime) error {
			return rt.HandleStraddle(c.UserID(), data.Accept)
		})

	case EvtGameShowHand:
		s.handleShowHand(c)

	case EvtGameRunItSelect:
		var data RunItSelectData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(CodeInvalidChoice, "failed to parse run-it selection")
			return
		}
		s.withRuntime(c, func(rt *roomRuntime) error {
			return rt.HandleRunItSelect(c.UserID(), data.Choice)
		})

	case EvtGameRunItConfirm:
		s.withRuntime(c, func(rt *roomRuntime) error {
			return rt.HandleRunItConfirm(c.UserID())
		})

	case EvtSetBombPotPreference:
		var data PreferenceData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(CodeInvalidAction, "failed to parse preference")
			return
		}
		s.handlePreference(c, func(p *game.Player) { p.BombPotWhenDealer = data.Enabled })

	case EvtSetStraddlePreference:
		var data PreferenceData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(CodeInvalidAction, "failed to parse preference")
			return
		}
		s.handlePreference(c, func(p *game.Player) { p.StraddleNextHand = data.Enabled })

	default:
		c.sendError(CodeInvalidAction, "unknown message type: "+msg.Type)
	}
}

// HandleDisconnect cleans up after a dropped transport. Membership and
// seat survive so a reconnect under the same anon_ id resumes play.
func (s *Server) HandleDisconnect(c *Connection) {
	s.dropConnection(c)

	userID := c.UserID()
	if userID == "" {
		return
	}
	s.sessions.Remove(userID, c)

	rm, err := s.registry.RoomFor(userID)
	if err != nil {
		return
	}
	rt := s.orch.Runtime(rm)
	rt.PlayerDisconnected(userID)
	s.fanout.BroadcastState(rm)
}

func (s *Server) handleAuth(c *Connection, data AuthData) {
	identity, err := s.auth.Verify(data.Token)
	if err != nil {
		c.sendError(CodeUnauthorized, "invalid token")
		return
	}
	c.SetIdentity(identity)
	s.sessions.Register(identity.UserID, c)

	_ = c.Send(mustMessage(EvtAuthOK, AuthOKData{
		UserID:   identity.UserID,
		Username: identity.Username,
	}))

	// A returning player lands back in their room.
	rm, err := s.registry.RoomFor(identity.UserID)
	if err != nil {
		return
	}
	c.SetRoom(rm.ID)
	rm.Join(identity.UserID, identity.Username)
	s.orch.Runtime(rm).PlayerReconnected(identity.UserID)

	_ = c.Send(mustMessage(EvtRoomJoined, RoomJoinedData{
		Room:     rm.Summarize(),
		UserID:   identity.UserID,
		Username: identity.Username,
	}))
	s.sendStateTo(rm, c)
}

func (s *Server) handleRoomJoin(c *Connection, data JoinRoomData) {
	rm, err := s.registry.GetByCode(data.Code)
	if err != nil {
		c.sendError(CodeRoomNotFound, "no room with that code")
		return
	}
	if !rm.CheckPassword(data.Password) {
		c.sendError(CodeJoinFailed, "incorrect password")
		return
	}

	userID, username := c.UserID(), c.Username()
	rm.Join(userID, username)
	s.registry.BindUser(userID, rm.ID)
	c.SetRoom(rm.ID)

	_ = c.Send(mustMessage(EvtRoomJoined, RoomJoinedData{
		Room:     rm.Summarize(),
		UserID:   userID,
		Username: username,
	}))
	s.broadcastExcept(rm, userID, mustMessage(EvtRoomPlayerJoined, PlayerJoinedData{
		UserID:   userID,
		Username: username,
	}))
	s.sendStateTo(rm, c)
}

func (s *Server) handleRoomLeave(c *Connection) {
	rm, ok := s.memberRoom(c)
	if !ok {
		return
	}
	userID := c.UserID()

	// A spectator has no seat to release.
	if err := s.orch.Runtime(rm).RemoveSeat(userID); err != nil && !errors.Is(err, game.ErrPlayerNotFound) {
		s.sendMappedError(c, err)
		return
	}
	rm.Leave(userID)
	s.registry.UnbindUser(userID)
	c.SetRoom("")

	if len(rm.Members()) == 0 {
		// Last member out closes the room and releases its code.
		if err := s.orch.CloseRoom(rm.ID); err != nil {
			s.logger.Error("failed to close empty room", "room", rm.Code, "error", err)
		}
		return
	}
	s.fanout.Broadcast(rm, mustMessage(EvtRoomPlayerLeft, PlayerLeftData{UserID: userID}))
	s.fanout.BroadcastState(rm)
}

func (s *Server) handleSit(c *Connection, data SitData) {
	rm, ok := s.memberRoom(c)
	if !ok {
		return
	}
	userID, username := c.UserID(), c.Username()

	var err error
	rm.With(func(g *game.Game) {
		stakes := g.Stakes()
		if data.BuyIn < stakes.MinBuyIn || data.BuyIn > stakes.MaxBuyIn {
			err = game.ErrInvalidAmount
			return
		}
		err = g.AddPlayer(&game.Player{
			ID:     userID,
			Name:   username,
			Seat:   data.Seat,
			Chips:  data.BuyIn,
			Status: game.StatusActive,
		})
	})
	if err != nil {
		s.sendMappedError(c, err)
		return
	}

	seat := data.Seat
	s.fanout.Broadcast(rm, mustMessage(EvtRoomPlayerJoined, PlayerJoinedData{
		UserID:   userID,
		Username: username,
		Seat:     &seat,
	}))
	s.fanout.BroadcastState(rm)
}

func (s *Server) handleStand(c *Connection) {
	rm, ok := s.memberRoom(c)
	if !ok {
		return
	}
	if err := s.orch.Runtime(rm).RemoveSeat(c.UserID()); err != nil {
		s.sendMappedError(c, err)
	}
}

func (s *Server) handleSitOut(c *Connection, data SitOutData) {
	rm, ok := s.memberRoom(c)
	if !ok {
		return
	}

	seated := false
	rm.With(func(g *game.Game) {
		p := g.Player(c.UserID())
		if p == nil {
			return
		}
		seated = true
		if data.SittingOut {
			p.Status = game.StatusSittingOut
		} else {
			p.Status = game.StatusActive
		}
	})
	if !seated {
		c.sendError(CodeNotSeated, "not seated at this table")
		return
	}
	s.fanout.BroadcastState(rm)
}

func (s *Server) handleChat(c *Connection, data ChatData) {
	rm, ok := s.memberRoom(c)
	if !ok {
		return
	}
	text := strings.TrimSpace(data.Text)
	if text == "" {
		return
	}
	s.fanout.Broadcast(rm, mustMessage(EvtRoomChatMessage, ChatMessageData{
		UserID:   c.UserID(),
		Username: c.Username(),
		Text:     text,
		SentAt:   s.orch.clock.Now(),
	}))
}

// handleUpdateRules applies a partial rules update: options absent from
// the payload keep their current (or staged) value.
func (s *Server) handleUpdateRules(c *Connection, raw json.RawMessage) {
	rm, ok := s.hostRoom(c)
	if !ok {
		return
	}

	var (
		rules    game.Rules
		parseErr error
	)
	rm.With(func(g *game.Game) {
		rules = g.StagedRules()
		if parseErr = json.Unmarshal(raw, &rules); parseErr != nil {
			return
		}
		g.UpdateRules(rules)
	})
	if parseErr != nil {
		c.sendError(CodeInvalidAction, "failed to parse rules")
		return
	}

	s.fanout.Broadcast(rm, mustMessage(EvtRoomRulesUpdated, rules))
	s.fanout.BroadcastState(rm)
}

func (s *Server) handleUpdateSettings(c *Connection, data UpdateSettingsData) {
	rm, ok := s.hostRoom(c)
	if !ok {
		return
	}

	var err error
	rm.With(func(g *game.Game) {
		if data.Stakes != nil {
			g.UpdateStakes(*data.Stakes)
		}
		if len(data.CustomRules) > 0 {
			rules := g.StagedRules()
			if err = json.Unmarshal(data.CustomRules, &rules); err != nil {
				return
			}
			g.UpdateRules(rules)
		}
		if data.MaxPlayers != nil {
			err = g.UpdateMaxPlayers(*data.MaxPlayers)
		}
	})
	if err != nil {
		s.sendMappedError(c, err)
		return
	}

	s.fanout.Broadcast(rm, mustMessage(EvtRoomSettingsUpdated, SettingsUpdatedData{
		Room: rm.Summarize(),
	}))
	s.fanout.BroadcastState(rm)
}

func (s *Server) handleSwitchVariant(c *Connection, data VariantData, dealerOnly bool) {
	rm, ok := s.memberRoom(c)
	if !ok {
		return
	}

	if dealerOnly {
		onButton := false
		rm.With(func(g *game.Game) {
			if p := g.Player(c.UserID()); p != nil && p.Seat == g.DealerSeat() {
				onButton = true
			}
		})
		if !onButton {
			c.sendError(CodeNotDealer, "only the dealer chooses the variant")
			return
		}
	} else if rm.HostID != c.UserID() {
		c.sendError(CodeUnauthorized, "only the host can switch variants")
		return
	}

	variant := game.Variant(data.Variant)
	var err error
	rm.With(func(g *game.Game) {
		err = g.SwitchVariant(variant)
	})
	if err != nil {
		c.sendError(CodeSwitchFailed, err.Error())
		return
	}

	s.fanout.Broadcast(rm, mustMessage(EvtGameVariantChanged, VariantData{Variant: string(variant)}))
	s.fanout.BroadcastState(rm)
}

func (s *Server) handleGameStart(c *Connection) {
	rm, ok := s.memberRoom(c)
	if !ok {
		return
	}
	if rm.HostID != c.UserID() {
		c.sendError(CodeUnauthorized, "only the host can start the game")
		return
	}
	if err := s.orch.Runtime(rm).StartHand(); err != nil {
		s.sendMappedError(c, err)
	}
}

func (s *Server) handleShowHand(c *Connection) {
	rm, ok := s.memberRoom(c)
	if !ok {
		return
	}

	var cards []deck.Card
	rm.With(func(g *game.Game) {
		cards = g.HoleCards(c.UserID())
	})
	if len(cards) == 0 {
		c.sendError(CodeNoCards, "no cards to show")
		return
	}
	s.fanout.Broadcast(rm, mustMessage(EvtGameHandShown, HandShownData{
		PlayerID: c.UserID(),
		Cards:    cards,
	}))
}

func (s *Server) handlePreference(c *Connection, apply func(p *game.Player)) {
	rm, ok := s.memberRoom(c)
	if !ok {
		return
	}

	seated := false
	rm.With(func(g *game.Game) {
		if p := g.Player(c.UserID()); p != nil {
			seated = true
			apply(p)
		}
	})
	if !seated {
		c.sendError(CodeNotSeated, "not seated at this table")
		return
	}
	s.fanout.BroadcastState(rm)
}

// withRuntime resolves the caller's room runtime and maps any error to a
// client-facing code.
func (s *Server) withRuntime(c *Connection, fn func(rt *roomRuntime) error) {
	rm, ok := s.memberRoom(c)
	if !ok {
		return
	}
	if err := fn(s.orch.Runtime(rm)); err != nil {
		s.sendMappedError(c, err)
	}
}

// memberRoom resolves the connection's current room, erroring the client
// when it has none.
func (s *Server) memberRoom(c *Connection) (*room.Room, bool) {
	roomID := c.RoomID()
	if roomID == "" {
		c.sendError(CodeNotInRoom, "join a room first")
		return nil, false
	}
	rm, err := s.registry.Get(roomID)
	if err != nil {
		c.SetRoom("")
		c.sendError(CodeRoomNotFound, "room no longer exists")
		return nil, false
	}
	return rm, true
}

// hostRoom is memberRoom plus a host check.
func (s *Server) hostRoom(c *Connection) (*room.Room, bool) {
	rm, ok := s.memberRoom(c)
	if !ok {
		return nil, false
	}
	if rm.HostID != c.UserID() {
		c.sendError(CodeUnauthorized, "host only")
		return nil, false
	}
	return rm, true
}

// sendStateTo delivers a personalized snapshot to one connection.
func (s *Server) sendStateTo(rm *room.Room, c *Connection) {
	var state *game.State
	rm.With(func(g *game.Game) {
		state = g.GetState(c.UserID())
	})
	if state != nil {
		_ = c.Send(mustMessage(EvtGameState, state))
	}
}

// broadcastExcept sends to every member but one.
func (s *Server) broadcastExcept(rm *room.Room, skipUserID string, msg *Message) {
	for _, userID := range rm.Members() {
		if userID == skipUserID {
			continue
		}
		s.fanout.SendTo(userID, msg)
	}
}

// sendMappedError translates engine and runtime errors into the coded
// error event.
func (s *Server) sendMappedError(c *Connection, err error) {
	c.sendError(errorCode(err), err.Error())
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, game.ErrInvalidAction),
		errors.Is(err, game.ErrPlayerFolded),
		errors.Is(err, game.ErrHandInProgress),
		errors.Is(err, game.ErrNoHandInProgress):
		return CodeInvalidAction
	case errors.Is(err, game.ErrInvalidAmount):
		return CodeInvalidAmount
	case errors.Is(err, game.ErrPlayerNotFound):
		return CodeNotSeated
	case errors.Is(err, game.ErrAlreadySeated):
		return CodeAlreadySeated
	case errors.Is(err, game.ErrSeatTaken),
		errors.Is(err, game.ErrSeatOutOfRange):
		return CodeJoinFailed
	case errors.Is(err, game.ErrNotEnoughPlayers):
		return CodeNotEnoughPlayers
	case errors.Is(err, game.ErrHasChips):
		return CodeHasChips
	case errors.Is(err, game.ErrStraddleFailed):
		return CodeStraddleFailed
	case errors.Is(err, game.ErrInvalidChoice),
		errors.Is(err, game.ErrNoRunItPrompt):
		return CodeInvalidChoice
	case errors.Is(err, game.ErrCannotConfirm):
		return CodeCannotConfirm
	case errors.Is(err, game.ErrSwitchDuringHand):
		return CodeSwitchFailed
	case errors.Is(err, errNoRebuyPrompt):
		return CodeNoRebuyPrompt
	case errors.Is(err, errNotInPrompt):
		return CodeNotInPrompt
	case errors.Is(err, room.ErrRoomNotFound),
		errors.Is(err, room.ErrRoomClosed):
		return CodeRoomNotFound
	default:
		return CodeInvalidAction
	}
}
