package server

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokerrooms/internal/game"
	"github.com/lox/pokerrooms/internal/room"
)

const (
	straddleTimeout = 5 * time.Second
	runItTimeout    = 5 * time.Second
	rebuyTimeout    = 60 * time.Second

	// Next-hand delay: a base pause plus an animation budget when the
	// previous hand ended in a runout, sized to how many streets had to
	// be dealt out.
	nextHandBaseDelay    = 5 * time.Second
	runoutBudgetPreflop  = 9 * time.Second
	runoutBudgetFlop     = 8500 * time.Millisecond
	runoutBudgetTurn     = 6500 * time.Millisecond
)

// Orchestrator owns every timer in the process, keyed by room. Engine
// calls stay synchronous; the orchestrator supplies the clock around
// them: turn countdowns, straddle and run-it windows, the rebuy barrier
// and the next-hand schedule.
type Orchestrator struct {
	logger   *log.Logger
	clock    quartz.Clock
	registry *room.Registry
	fanout   *Fanout

	mu       sync.Mutex
	runtimes map[string]*roomRuntime
}

// NewOrchestrator creates an orchestrator. The clock is injectable so
// tests can drive time deterministically.
func NewOrchestrator(logger *log.Logger, clock quartz.Clock, registry *room.Registry, fanout *Fanout) *Orchestrator {
	return &Orchestrator{
		logger:   logger.WithPrefix("orchestrator"),
		clock:    clock,
		registry: registry,
		fanout:   fanout,
		runtimes: make(map[string]*roomRuntime),
	}
}

// Runtime returns the per-room runtime, creating it on first use.
func (o *Orchestrator) Runtime(rm *room.Room) *roomRuntime {
	o.mu.Lock()
	defer o.mu.Unlock()
	rt, ok := o.runtimes[rm.ID]
	if !ok {
		rt = &roomRuntime{o: o, room: rm, logger: o.logger.With("room", rm.Code)}
		o.runtimes[rm.ID] = rt
	}
	return rt
}

// CloseRoom cancels every timer for the room, closes it and releases its
// code. Cancelled timers never fire on a closed room.
func (o *Orchestrator) CloseRoom(roomID string) error {
	o.mu.Lock()
	rt := o.runtimes[roomID]
	delete(o.runtimes, roomID)
	o.mu.Unlock()

	if rt != nil {
		rt.shutdown()
	}
	return o.registry.Close(roomID)
}

// roomRuntime serializes every orchestrator callback for one room behind
// its mutex: client events, expiring timers and scheduled next-hands
// never interleave. Generation counters invalidate timers that were
// cancelled while their callback was already queued.
type roomRuntime struct {
	o      *Orchestrator
	room   *room.Room
	logger *log.Logger

	mu     sync.Mutex
	closed bool

	turnGen       int
	turnTimer     *quartz.Timer
	turnPlayerID  string
	turnRemaining int
	turnWarned    bool
	warnSeconds   int

	straddleGen       int
	straddleTimer     *quartz.Timer
	straddlePlayerID  string
	straddleRemaining int
	straddleSeen      int

	runItGen       int
	runItTimer     *quartz.Timer
	runItRemaining int

	nextHandGen   int
	nextHandTimer *quartz.Timer

	rebuy      *RebuyPrompt
	rebuyGen   int
	rebuyTimer *quartz.Timer
}

func (rt *roomRuntime) shutdown() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.closed = true
	rt.cancelTurnTimer()
	rt.cancelStraddleTimer()
	rt.cancelRunItTimer()
	rt.cancelNextHand()
	rt.cancelRebuyTimer()
}

func stopTimer(t **quartz.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

func (rt *roomRuntime) cancelTurnTimer()     { rt.turnGen++; stopTimer(&rt.turnTimer) }
func (rt *roomRuntime) cancelStraddleTimer() { rt.straddleGen++; stopTimer(&rt.straddleTimer) }
func (rt *roomRuntime) cancelRunItTimer()    { rt.runItGen++; stopTimer(&rt.runItTimer) }
func (rt *roomRuntime) cancelNextHand()      { rt.nextHandGen++; stopTimer(&rt.nextHandTimer) }
func (rt *roomRuntime) cancelRebuyTimer()    { rt.rebuyGen++; stopTimer(&rt.rebuyTimer) }

func (rt *roomRuntime) broadcast(msg *Message) {
	rt.o.fanout.Broadcast(rt.room, msg)
}

func (rt *roomRuntime) broadcastState() {
	rt.o.fanout.BroadcastState(rt.room)
}

// StartHand begins a hand on a host's game:start. The caller has already
// authorized the request.
func (rt *roomRuntime) StartHand() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		return room.ErrRoomClosed
	}
	rt.cancelNextHand()
	return rt.beginHand()
}

// beginHand starts the next hand with bomb-pot and straddle sequencing.
// Caller holds rt.mu.
func (rt *roomRuntime) beginHand() error {
	if rt.rebuy != nil {
		// The barrier reschedules when it clears.
		return nil
	}

	var startErr error
	bombPot := false
	rt.room.With(func(g *game.Game) {
		amount, dual := rt.bombPotForNextHand(g)
		bombPot = amount > 0
		startErr = g.StartHand(amount, dual)
	})
	if startErr != nil {
		return startErr
	}

	rt.straddleSeen = 0
	rt.broadcastState()

	if bombPot {
		rt.afterHandAdvance()
		return nil
	}
	rt.beginStraddleSequence()
	return nil
}

// bombPotForNextHand returns the ante and dual-board flag when the
// incoming dealer has the bomb-pot preference set and bomb pots are
// enabled, otherwise zero.
func (rt *roomRuntime) bombPotForNextHand(g *game.Game) (amount int, dualBoard bool) {
	rules := g.Rules()
	if !rules.BombPotEnabled {
		return 0, false
	}
	seat := g.NextDealerSeat()
	if seat < 0 {
		return 0, false
	}
	for _, p := range g.Players() {
		if p.Seat == seat && p.BombPotWhenDealer {
			amount = rules.BombPotAmount
			if amount <= 0 {
				amount = 10 * g.Stakes().BigBlind
			}
			return amount, rules.BombPotDoubleBoard
		}
	}
	return 0, false
}

// beginStraddleSequence opens the straddle chain, emitting placed events
// for any auto-posted straddles, then either arms the prompt window or
// falls through to the first turn timer. Caller holds rt.mu.
func (rt *roomRuntime) beginStraddleSequence() {
	var prompt *game.StraddlePrompt
	rt.room.With(func(g *game.Game) {
		prompt = g.StartStraddlePrompt()
	})
	rt.publishNewStraddles()
	if prompt != nil {
		rt.armStraddleTimer(prompt)
		return
	}
	rt.broadcastState()
	rt.startTurnTimer()
}

// publishNewStraddles emits a straddle-placed event for every straddle
// posted since the last check. Caller holds rt.mu.
func (rt *roomRuntime) publishNewStraddles() {
	var placed []game.Straddle
	rt.room.With(func(g *game.Game) {
		all := g.Straddles()
		if len(all) > rt.straddleSeen {
			placed = append(placed, all[rt.straddleSeen:]...)
			rt.straddleSeen = len(all)
		}
	})
	for _, s := range placed {
		rt.broadcast(mustMessage(EvtGameStraddlePlaced, StraddlePlacedData{
			PlayerID: s.PlayerID,
			Amount:   s.Amount,
			Seat:     s.Seat,
		}))
	}
}

func (rt *roomRuntime) armStraddleTimer(prompt *game.StraddlePrompt) {
	rt.cancelStraddleTimer()
	rt.straddlePlayerID = prompt.PlayerID
	rt.straddleRemaining = int(straddleTimeout / time.Second)
	gen := rt.straddleGen

	rt.broadcast(mustMessage(EvtGameStraddlePrompt, prompt))
	rt.broadcastState()
	rt.broadcast(mustMessage(EvtGameTimer, TimerData{
		PlayerID:      prompt.PlayerID,
		TimeRemaining: rt.straddleRemaining,
	}))
	rt.straddleTimer = rt.o.clock.AfterFunc(time.Second, func() { rt.straddleTick(gen) })
}

func (rt *roomRuntime) straddleTick(gen int) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed || gen != rt.straddleGen {
		return
	}
	rt.straddleRemaining--
	if rt.straddleRemaining > 0 {
		rt.broadcast(mustMessage(EvtGameTimer, TimerData{
			PlayerID:      rt.straddlePlayerID,
			TimeRemaining: rt.straddleRemaining,
		}))
		rt.straddleTimer = rt.o.clock.AfterFunc(time.Second, func() { rt.straddleTick(gen) })
		return
	}

	// Expiry declines and ends the chain.
	rt.expireStraddle()
}

// expireStraddle declines the open straddle prompt, ends the chain and
// opens the action. Caller holds rt.mu.
func (rt *roomRuntime) expireStraddle() {
	var seat int
	rt.room.With(func(g *game.Game) {
		if p := g.Player(rt.straddlePlayerID); p != nil {
			seat = p.Seat
		}
		g.ExpireStraddlePrompt()
	})
	rt.cancelStraddleTimer()
	rt.broadcast(mustMessage(EvtGameStraddleDeclined, StraddleDeclinedData{Seat: seat}))
	rt.broadcastState()
	rt.startTurnTimer()
}

// HandleStraddle resolves a player's straddle decision.
func (rt *roomRuntime) HandleStraddle(userID string, accept bool) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		return room.ErrRoomClosed
	}

	var (
		next *game.StraddlePrompt
		seat int
		err  error
	)
	rt.room.With(func(g *game.Game) {
		if p := g.Player(userID); p != nil {
			seat = p.Seat
		}
		next, err = g.ProcessStraddle(userID, accept)
	})
	if err != nil {
		return err
	}
	rt.cancelStraddleTimer()

	if accept {
		rt.publishNewStraddles()
	} else {
		rt.broadcast(mustMessage(EvtGameStraddleDeclined, StraddleDeclinedData{Seat: seat}))
	}
	if next != nil {
		rt.armStraddleTimer(next)
		return nil
	}
	rt.broadcastState()
	rt.startTurnTimer()
	return nil
}

// startTurnTimer arms the base countdown for the current actor. A no-op
// when timing is disabled or no one is on the clock. Caller holds rt.mu.
func (rt *roomRuntime) startTurnTimer() {
	rt.cancelTurnTimer()

	var (
		enabled  bool
		playerID string
		base     int
		warn     int
	)
	rt.room.With(func(g *game.Game) {
		rules := g.Rules()
		if !rules.TurnTimeEnabled || !g.Phase().IsBetting() {
			return
		}
		if g.StraddlePromptOpen() != nil || g.RunItPromptOpen() != nil {
			return
		}
		p := g.CurrentPlayer()
		if p == nil {
			return
		}
		enabled = true
		playerID = p.ID
		base = rules.TurnTimeSeconds
		warn = rules.WarningTimeSeconds
	})
	if !enabled || base <= 0 {
		return
	}

	rt.turnPlayerID = playerID
	rt.turnRemaining = base
	rt.turnWarned = false
	rt.warnSeconds = warn
	gen := rt.turnGen

	rt.broadcast(mustMessage(EvtGameTimer, TimerData{
		PlayerID:      playerID,
		TimeRemaining: base,
	}))
	rt.turnTimer = rt.o.clock.AfterFunc(time.Second, func() { rt.turnTick(gen) })
}

func (rt *roomRuntime) turnTick(gen int) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed || gen != rt.turnGen {
		return
	}

	rt.turnRemaining--
	if rt.turnRemaining > 0 {
		rt.broadcast(mustMessage(EvtGameTimer, TimerData{
			PlayerID:      rt.turnPlayerID,
			TimeRemaining: rt.turnRemaining,
		}))
		rt.turnTimer = rt.o.clock.AfterFunc(time.Second, func() { rt.turnTick(gen) })
		return
	}

	if !rt.turnWarned && rt.warnSeconds > 0 {
		rt.turnWarned = true
		rt.turnRemaining = rt.warnSeconds
		rt.broadcast(mustMessage(EvtGameTimerWarning, TimerWarningData{
			PlayerID:  rt.turnPlayerID,
			ExtraTime: rt.warnSeconds,
		}))
		rt.turnTimer = rt.o.clock.AfterFunc(time.Second, func() { rt.turnTick(gen) })
		return
	}

	rt.autoFold()
}

// autoFold folds the timed-out actor and sits them out. Caller holds
// rt.mu.
func (rt *roomRuntime) autoFold() {
	playerID := rt.turnPlayerID
	rt.cancelTurnTimer()

	var (
		result *game.ActionResult
		err    error
	)
	rt.room.With(func(g *game.Game) {
		result, err = g.ProcessAction(playerID, game.Action{Type: game.ActionFold})
		if p := g.Player(playerID); p != nil {
			p.Status = game.StatusSittingOut
		}
	})
	if err != nil {
		rt.logger.Error("auto-fold failed", "player", playerID, "error", err)
		return
	}

	rt.broadcast(mustMessage(EvtGameActionDone, result))
	rt.broadcast(mustMessage(EvtGameAutoFold, AutoFoldData{PlayerID: playerID}))
	rt.broadcastState()
	rt.afterAction(result)
}

// RemoveSeat releases a player's seat through the runtime so a departure
// mid-hand drives the same follow-up as a fold: the leaver's clock is
// cancelled and whatever the fold unlocked (next actor, run-it prompt,
// hand completion) is armed.
func (rt *roomRuntime) RemoveSeat(userID string) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		return room.ErrRoomClosed
	}

	var (
		onClock   bool
		straddler bool
		deferred  bool
		err       error
	)
	rt.room.With(func(g *game.Game) {
		if p := g.CurrentPlayer(); p != nil && p.ID == userID {
			onClock = true
		}
		if prompt := g.StraddlePromptOpen(); prompt != nil && prompt.PlayerID == userID {
			straddler = true
		}
		deferred, err = g.RemovePlayer(userID)
	})
	if err != nil {
		return err
	}

	if onClock || rt.turnPlayerID == userID {
		rt.cancelTurnTimer()
	}
	rt.broadcastState()

	switch {
	case straddler:
		// The departing seat held the open straddle prompt; close it as
		// a decline so the action can open.
		rt.expireStraddle()
	case deferred && onClock:
		// The engine advanced past the folded leaver.
		rt.afterHandAdvance()
	}
	return nil
}

// HandleAction applies a player's betting action and drives whatever it
// unlocked: the next turn timer, the run-it prompt or hand completion.
func (rt *roomRuntime) HandleAction(userID string, action game.Action) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		return room.ErrRoomClosed
	}

	var (
		result *game.ActionResult
		err    error
	)
	rt.room.With(func(g *game.Game) {
		result, err = g.ProcessAction(userID, action)
	})
	if err != nil {
		return err
	}
	rt.cancelTurnTimer()

	rt.broadcast(mustMessage(EvtGameActionDone, result))
	rt.broadcastState()
	rt.afterAction(result)
	return nil
}

// afterAction arms whatever follows a processed action. Caller holds
// rt.mu.
func (rt *roomRuntime) afterAction(result *game.ActionResult) {
	if result.RunItEligible {
		rt.openRunItPrompt()
		return
	}
	if result.HandComplete {
		rt.handComplete()
		return
	}
	rt.afterHandAdvance()
}

// afterHandAdvance inspects the engine after an advance that carried no
// result flags (bomb-pot start, straddle completion) and arms timers.
// Caller holds rt.mu.
func (rt *roomRuntime) afterHandAdvance() {
	var (
		phase game.Phase
		runIt bool
	)
	rt.room.With(func(g *game.Game) {
		phase = g.Phase()
		runIt = g.RunItPromptOpen() != nil
	})
	switch {
	case runIt:
		rt.openRunItPrompt()
	case phase == game.PhaseComplete:
		rt.handComplete()
	case phase.IsBetting():
		rt.startTurnTimer()
	}
}

// openRunItPrompt broadcasts the open run-it offer and arms its decision
// window. Caller holds rt.mu.
func (rt *roomRuntime) openRunItPrompt() {
	var prompt *game.RunItPrompt
	rt.room.With(func(g *game.Game) {
		prompt = g.RunItPromptOpen()
	})
	if prompt == nil {
		return
	}

	rt.cancelRunItTimer()
	rt.runItRemaining = int(runItTimeout / time.Second)
	gen := rt.runItGen

	rt.broadcast(mustMessage(EvtGameRunItPrompt, prompt))
	rt.broadcastState()
	rt.broadcast(mustMessage(EvtGameTimer, TimerData{TimeRemaining: rt.runItRemaining}))
	rt.runItTimer = rt.o.clock.AfterFunc(time.Second, func() { rt.runItTick(gen) })
}

func (rt *roomRuntime) runItTick(gen int) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed || gen != rt.runItGen {
		return
	}
	rt.runItRemaining--
	if rt.runItRemaining > 0 {
		rt.broadcast(mustMessage(EvtGameTimer, TimerData{TimeRemaining: rt.runItRemaining}))
		rt.runItTimer = rt.o.clock.AfterFunc(time.Second, func() { rt.runItTick(gen) })
		return
	}
	rt.finalizeRunIt()
}

// HandleRunItSelect records a board-count selection.
func (rt *roomRuntime) HandleRunItSelect(userID string, choice int) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		return room.ErrRoomClosed
	}

	var err error
	rt.room.With(func(g *game.Game) {
		err = g.ProcessRunItChoice(userID, choice)
		if err == nil {
			// Report the recorded value; out-of-rule selections downgrade.
			if prompt := g.RunItPromptOpen(); prompt != nil {
				if c, ok := prompt.Choices[userID]; ok {
					choice = c.Choice
				}
			}
		}
	})
	if err != nil {
		return err
	}
	rt.broadcast(mustMessage(EvtGameRunItDecision, RunItDecisionData{
		PlayerID: userID,
		Choice:   choice,
	}))
	rt.maybeFinalizeRunIt()
	return nil
}

// HandleRunItConfirm locks in a player's selection.
func (rt *roomRuntime) HandleRunItConfirm(userID string) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		return room.ErrRoomClosed
	}

	var (
		choice int
		err    error
	)
	rt.room.With(func(g *game.Game) {
		err = g.ConfirmRunItChoice(userID)
		if err == nil {
			if prompt := g.RunItPromptOpen(); prompt != nil {
				if c, ok := prompt.Choices[userID]; ok {
					choice = c.Choice
				}
			}
		}
	})
	if err != nil {
		return err
	}
	rt.broadcast(mustMessage(EvtGameRunItDecision, RunItDecisionData{
		PlayerID:  userID,
		Choice:    choice,
		Confirmed: true,
	}))
	rt.maybeFinalizeRunIt()
	return nil
}

// maybeFinalizeRunIt checks both early-termination conditions: every
// eligible player confirmed, or every confirmed player agrees. Caller
// holds rt.mu.
func (rt *roomRuntime) maybeFinalizeRunIt() {
	var done bool
	rt.room.With(func(g *game.Game) {
		done = g.AllRunItChoicesConfirmed() || g.AllConfirmedChoicesSame()
	})
	if done {
		rt.finalizeRunIt()
	}
}

// finalizeRunIt resolves the prompt and runs the boards out. Caller
// holds rt.mu.
func (rt *roomRuntime) finalizeRunIt() {
	rt.cancelRunItTimer()

	var (
		final  int
		boards any
	)
	rt.room.With(func(g *game.Game) {
		final = g.FinalRunItChoice()
		g.ResolveRunIt()
		boards = g.Boards()
	})
	rt.broadcast(mustMessage(EvtGameRunItResult, RunItResultData{
		Boards:      boards,
		FinalChoice: final,
	}))
	rt.broadcastState()
	rt.handComplete()
}

// handComplete publishes resolution events and either opens the rebuy
// barrier or schedules the next hand. Caller holds rt.mu.
func (rt *roomRuntime) handComplete() {
	var (
		winners []game.Winner
		bonus   *game.SevenDeuceBonus
		runout  game.Phase
	)
	rt.room.With(func(g *game.Game) {
		winners = g.Winners()
		bonus = g.SevenDeuce()
		runout = g.RunoutFrom()
	})

	if len(winners) > 0 {
		rt.broadcast(mustMessage(EvtGameWinner, winners))
	}
	if bonus != nil {
		rt.broadcast(mustMessage(EvtGameSevenDeuceBonus, bonus))
	}

	if rt.openRebuyBarrier() {
		return
	}
	rt.scheduleNextHand(runout)
}

// nextHandDelay is the base pause plus the runout animation budget.
func nextHandDelay(runoutFrom game.Phase) time.Duration {
	delay := nextHandBaseDelay
	switch runoutFrom {
	case game.PhasePreflop:
		delay += runoutBudgetPreflop
	case game.PhaseFlop:
		delay += runoutBudgetFlop
	case game.PhaseTurn:
		delay += runoutBudgetTurn
	}
	return delay
}

// scheduleNextHand arms the next-hand timer. Caller holds rt.mu.
func (rt *roomRuntime) scheduleNextHand(runoutFrom game.Phase) {
	rt.cancelNextHand()
	gen := rt.nextHandGen
	rt.nextHandTimer = rt.o.clock.AfterFunc(nextHandDelay(runoutFrom), func() {
		rt.nextHandFire(gen)
	})
}

func (rt *roomRuntime) nextHandFire(gen int) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed || gen != rt.nextHandGen {
		return
	}

	var viable bool
	rt.room.With(func(g *game.Game) {
		viable = g.CanStartHand()
	})
	if !viable || rt.rebuy != nil {
		rt.broadcastState()
		return
	}
	if err := rt.beginHand(); err != nil {
		if !errors.Is(err, game.ErrNotEnoughPlayers) {
			rt.logger.Error("failed to start next hand", "error", err)
		}
		rt.broadcastState()
	}
}

// openRebuyBarrier lists busted seats that must decide before the next
// hand. Returns false when the barrier does not apply. Caller holds
// rt.mu.
func (rt *roomRuntime) openRebuyBarrier() bool {
	var busted []string
	rt.room.With(func(g *game.Game) {
		if !g.Rules().WaitForAllRebuys {
			return
		}
		for _, p := range g.Players() {
			if p.Chips == 0 && p.Status != game.StatusDisconnected && p.Status != game.StatusSittingOut {
				busted = append(busted, p.ID)
			}
		}
	})
	if len(busted) == 0 {
		return false
	}

	prompt := &RebuyPrompt{
		Players:   busted,
		Decisions: make(map[string]RebuyDecision, len(busted)),
		TimeoutAt: rt.o.clock.Now().Add(rebuyTimeout),
	}
	for _, id := range busted {
		prompt.Decisions[id] = RebuyPending
	}
	rt.rebuy = prompt
	rt.cancelRebuyTimer()
	gen := rt.rebuyGen

	rt.broadcast(mustMessage(EvtRoomRebuyPrompt, RebuyPromptData{Prompt: prompt}))
	rt.rebuyTimer = rt.o.clock.AfterFunc(rebuyTimeout, func() { rt.rebuyExpire(gen) })
	return true
}

func (rt *roomRuntime) rebuyExpire(gen int) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed || gen != rt.rebuyGen || rt.rebuy == nil {
		return
	}

	// Pending seats auto-decline and sit out.
	var pending []string
	for id, d := range rt.rebuy.Decisions {
		if d == RebuyPending {
			pending = append(pending, id)
		}
	}
	rt.room.With(func(g *game.Game) {
		for _, id := range pending {
			if p := g.Player(id); p != nil {
				p.Status = game.StatusSittingOut
			}
		}
	})
	for _, id := range pending {
		rt.rebuy.Decisions[id] = RebuyDeclined
	}
	rt.closeRebuyBarrier()
}

// HandleRebuy processes a listed seat's rebuy during the barrier, or a
// plain between-hands rebuy when no barrier is open.
func (rt *roomRuntime) HandleRebuy(userID string, amount int) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		return room.ErrRoomClosed
	}

	if rt.rebuy != nil {
		if _, listed := rt.rebuy.Decisions[userID]; !listed {
			return errNotInPrompt
		}
	}

	var (
		granted int
		err     error
	)
	rt.room.With(func(g *game.Game) {
		granted, err = g.Rebuy(userID, amount)
	})
	if err != nil {
		return err
	}

	rt.broadcast(mustMessage(EvtRoomPlayerRebuy, PlayerRebuyData{UserID: userID, Amount: granted}))
	if rt.rebuy != nil {
		rt.rebuy.Decisions[userID] = RebuyAccepted
		rt.broadcast(mustMessage(EvtRoomRebuyPrompt, RebuyPromptData{Prompt: rt.rebuy}))
		if rt.rebuy.decided() {
			rt.closeRebuyBarrier()
		}
	}
	rt.broadcastState()
	return nil
}

// HandleDeclineRebuy records a decline and sits the player out.
func (rt *roomRuntime) HandleDeclineRebuy(userID string) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		return room.ErrRoomClosed
	}
	if rt.rebuy == nil {
		return errNoRebuyPrompt
	}
	if d, listed := rt.rebuy.Decisions[userID]; !listed || d != RebuyPending {
		return errNotInPrompt
	}

	rt.room.With(func(g *game.Game) {
		if p := g.Player(userID); p != nil {
			p.Status = game.StatusSittingOut
		}
	})
	rt.rebuy.Decisions[userID] = RebuyDeclined
	rt.broadcast(mustMessage(EvtRoomRebuyPrompt, RebuyPromptData{Prompt: rt.rebuy}))
	if rt.rebuy.decided() {
		rt.closeRebuyBarrier()
	}
	rt.broadcastState()
	return nil
}

// closeRebuyBarrier clears the prompt and schedules the next hand.
// Caller holds rt.mu.
func (rt *roomRuntime) closeRebuyBarrier() {
	rt.rebuy = nil
	rt.cancelRebuyTimer()
	rt.broadcast(mustMessage(EvtRoomRebuyPrompt, RebuyPromptData{Prompt: nil}))

	var runout game.Phase
	rt.room.With(func(g *game.Game) {
		runout = g.RunoutFrom()
	})
	rt.scheduleNextHand(runout)
}

// RebuyPromptOpen reports whether the rebuy barrier is holding the room.
func (rt *roomRuntime) RebuyPromptOpen() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.rebuy != nil
}

// PlayerDisconnected reacts to a dropped transport: a seat listed in the
// rebuy barrier auto-declines, and a seat on the clock keeps its timer
// (the auto-fold will clean up).
func (rt *roomRuntime) PlayerDisconnected(userID string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		return
	}

	rt.room.With(func(g *game.Game) {
		if p := g.Player(userID); p != nil {
			p.Status = game.StatusDisconnected
		}
	})

	if rt.rebuy != nil {
		if d, listed := rt.rebuy.Decisions[userID]; listed && d == RebuyPending {
			rt.rebuy.Decisions[userID] = RebuyDeclined
			rt.broadcast(mustMessage(EvtRoomRebuyPrompt, RebuyPromptData{Prompt: rt.rebuy}))
			if rt.rebuy.decided() {
				rt.closeRebuyBarrier()
			}
		}
	}
}

// PlayerReconnected restores active status for a returning seat.
func (rt *roomRuntime) PlayerReconnected(userID string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		return
	}
	rt.room.With(func(g *game.Game) {
		if p := g.Player(userID); p != nil && p.Status == game.StatusDisconnected {
			p.Status = game.StatusActive
		}
	})
}

// Barrier-specific sentinels; the engine has no notion of the rebuy
// prompt so they live here.
var (
	errNoRebuyPrompt = errors.New("server: no rebuy prompt open")
	errNotInPrompt   = errors.New("server: player not listed in rebuy prompt")
)
