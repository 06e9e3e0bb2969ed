// Package game implements the per-room hand state machine: dealing, betting
// round progression, side pots, straddles, run-it-multiple-times, bomb pots
// and showdown resolution. The package is pure; it owns no timers and does
// no I/O. All methods must be called from the room's serialized worker.
package game

import (
	"fmt"

	"github.com/lox/pokerrooms/internal/deck"
)

// Game owns one room's current hand and the seats that persist across hands.
type Game struct {
	variant    Variant
	stakes     Stakes
	rules      Rules
	maxPlayers int

	pendingStakes *Stakes
	pendingRules  *Rules

	players    []*Player // ordered by seat
	dealerSeat int
	handNum    int

	phase Phase
	deck  *deck.Deck

	// boards[0] is the primary community board. A second board exists for
	// dual-board bomb pots; run-it-multiple adds more at resolution.
	boards     [][]deck.Card
	ghostCards []deck.Card
	hole       map[string][]deck.Card

	pot        int
	sidePots   []SidePot
	currentBet int
	minRaise   int

	currentSeat int

	bombPot       bool
	dualBoard     bool
	bombPotAmount int

	straddles        []Straddle
	straddlePrompt   *StraddlePrompt
	straddleNextSeat int
	straddleCount    int
	straddleDone     bool

	runIt *RunItPrompt

	winners      []Winner
	bonus        *SevenDeuceBonus
	wonByFold    bool
	runoutFrom   Phase
	revealedSeed string
}

// New creates an empty game for a room.
func New(variant Variant, stakes Stakes, rules Rules, maxPlayers int) *Game {
	if maxPlayers < 2 {
		maxPlayers = 2
	}
	if maxPlayers > 10 {
		maxPlayers = 10
	}
	return &Game{
		variant:     variant,
		stakes:      stakes,
		rules:       rules,
		maxPlayers:  maxPlayers,
		dealerSeat:  -1,
		currentSeat: -1,
		phase:       PhaseWaiting,
		deck:        deck.New(),
		boards:      [][]deck.Card{nil},
		hole:        make(map[string][]deck.Card),
		runoutFrom:  PhaseWaiting,
	}
}

// Accessors used by the orchestrator and fan-out.

func (g *Game) Phase() Phase          { return g.phase }
func (g *Game) CurrentBet() int       { return g.currentBet }
func (g *Game) MinRaise() int         { return g.minRaise }
func (g *Game) Boards() [][]deck.Card { return g.boards }
func (g *Game) GhostCards() []deck.Card { return g.ghostCards }
func (g *Game) Variant() Variant      { return g.variant }
func (g *Game) Stakes() Stakes        { return g.stakes }
func (g *Game) Rules() Rules          { return g.rules }
func (g *Game) DealerSeat() int       { return g.dealerSeat }
func (g *Game) CurrentSeat() int      { return g.currentSeat }
func (g *Game) HandNum() int          { return g.handNum }
func (g *Game) HandID() string        { return g.deck.HandID() }
func (g *Game) Pot() int              { return g.pot }
func (g *Game) Winners() []Winner     { return g.winners }
func (g *Game) WonByFold() bool       { return g.wonByFold }
func (g *Game) Straddles() []Straddle { return g.straddles }
func (g *Game) MaxPlayers() int       { return g.maxPlayers }

// RunoutFrom returns the phase at which a forced runout began, or
// PhaseWaiting if the last hand had no runout. The orchestrator derives the
// next-hand animation delay from this.
func (g *Game) RunoutFrom() Phase { return g.runoutFrom }

// SevenDeuce returns the 7-2 bonus of the last completed hand, if any.
func (g *Game) SevenDeuce() *SevenDeuceBonus { return g.bonus }

// CurrentPlayer returns the player whose turn it is, or nil.
func (g *Game) CurrentPlayer() *Player {
	if g.currentSeat < 0 {
		return nil
	}
	return g.playerAtSeat(g.currentSeat)
}

// Player returns the seated player with the given id, or nil.
func (g *Game) Player(id string) *Player {
	for _, p := range g.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Players returns the seat-ordered player list. Callers must not mutate.
func (g *Game) Players() []*Player {
	return g.players
}

// HoleCards returns a player's hole cards for the current hand.
func (g *Game) HoleCards(id string) []deck.Card {
	return g.hole[id]
}

// AddPlayer seats a player. Only legal between hands; seat conflicts and
// duplicate ids are rejected.
func (g *Game) AddPlayer(p *Player) error {
	if g.phase.InHand() {
		return ErrHandInProgress
	}
	if p.Seat < 0 || p.Seat >= g.maxPlayers {
		return ErrSeatOutOfRange
	}
	for _, existing := range g.players {
		if existing.ID == p.ID {
			return ErrAlreadySeated
		}
		if existing.Seat == p.Seat {
			return ErrSeatTaken
		}
	}

	// Keep seat order.
	idx := len(g.players)
	for i, existing := range g.players {
		if existing.Seat > p.Seat {
			idx = i
			break
		}
	}
	g.players = append(g.players, nil)
	copy(g.players[idx+1:], g.players[idx:])
	g.players[idx] = p
	return nil
}

// RemovePlayer releases a seat. Between hands the removal is immediate;
// during a hand the seat is marked and released at hand end, with the
// player folded out of the action. Returns true when the removal was
// deferred.
func (g *Game) RemovePlayer(id string) (deferred bool, err error) {
	p := g.Player(id)
	if p == nil {
		return false, ErrPlayerNotFound
	}
	if g.phase.InHand() && p.DealtIn && !p.Folded {
		p.PendingRemove = true
		g.foldPlayer(p)
		if g.phase.IsBetting() && g.currentSeat == p.Seat {
			g.advance(&ActionResult{PlayerID: p.ID, Action: ActionFold})
		}
		return true, nil
	}
	g.deletePlayer(id)
	return false, nil
}

func (g *Game) deletePlayer(id string) {
	for i, p := range g.players {
		if p.ID == id {
			g.players = append(g.players[:i], g.players[i+1:]...)
			delete(g.hole, id)
			return
		}
	}
}

// eligiblePlayers returns seats that can be dealt into a new hand.
func (g *Game) eligiblePlayers() []*Player {
	var out []*Player
	for _, p := range g.players {
		if p.Status == StatusActive && p.Chips > 0 && !p.PendingRemove {
			out = append(out, p)
		}
	}
	return out
}

// CanStartHand reports whether a new hand can begin.
func (g *Game) CanStartHand() bool {
	return !g.phase.InHand() && len(g.eligiblePlayers()) >= 2
}

// NextDealerSeat returns the seat the button will move to at the next
// StartHand. Dealer advancement is centralized here; the orchestrator
// queries it for bomb-pot preference checks rather than recomputing.
func (g *Game) NextDealerSeat() int {
	eligible := g.eligiblePlayers()
	if len(eligible) == 0 {
		return -1
	}
	for _, p := range eligible {
		if p.Seat > g.dealerSeat {
			return p.Seat
		}
	}
	return eligible[0].Seat
}

// Rebuy tops up a busted player, clamping the amount to the buy-in range.
// Players still holding chips cannot rebuy.
func (g *Game) Rebuy(id string, amount int) (int, error) {
	p := g.Player(id)
	if p == nil {
		return 0, ErrPlayerNotFound
	}
	if p.Chips > 0 {
		return 0, ErrHasChips
	}
	if amount < g.stakes.MinBuyIn {
		amount = g.stakes.MinBuyIn
	}
	if amount > g.stakes.MaxBuyIn {
		amount = g.stakes.MaxBuyIn
	}
	p.Chips = amount
	p.Status = StatusActive
	return amount, nil
}

// StagedRules returns the rules the next hand will use: a staged update
// when one is pending, otherwise the current rules.
func (g *Game) StagedRules() Rules {
	if g.pendingRules != nil {
		return *g.pendingRules
	}
	return g.rules
}

// UpdateRules stages a rules change; it takes effect at the next StartHand.
func (g *Game) UpdateRules(r Rules) {
	if g.phase.InHand() {
		g.pendingRules = &r
		return
	}
	g.rules = r
}

// UpdateStakes stages a stakes change; it takes effect at the next StartHand.
func (g *Game) UpdateStakes(s Stakes) {
	if g.phase.InHand() {
		g.pendingStakes = &s
		return
	}
	g.stakes = s
}

// UpdateMaxPlayers resizes the table between hands. The new size must
// still fit every occupied seat.
func (g *Game) UpdateMaxPlayers(n int) error {
	if g.phase.InHand() {
		return ErrHandInProgress
	}
	if n < 2 || n > 10 {
		return ErrInvalidAmount
	}
	for _, p := range g.players {
		if p.Seat >= n {
			return ErrSeatOutOfRange
		}
	}
	g.maxPlayers = n
	return nil
}

// SwitchVariant changes the variant between hands.
func (g *Game) SwitchVariant(v Variant) error {
	if g.phase.InHand() {
		return ErrSwitchDuringHand
	}
	if !v.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidAction, v)
	}
	g.variant = v
	return nil
}

// StartHand begins a new hand. bombPotAmount > 0 forces an ante from every
// dealt-in seat and jumps straight to the flop; dualBoard deals two boards
// for the bomb pot. Fails with ErrNotEnoughPlayers when fewer than two
// seats are eligible, leaving the state at waiting.
func (g *Game) StartHand(bombPotAmount int, dualBoard bool) error {
	if g.phase.InHand() {
		return ErrHandInProgress
	}

	// Release seats vacated during the previous hand.
	for i := 0; i < len(g.players); {
		if g.players[i].PendingRemove {
			g.deletePlayer(g.players[i].ID)
			continue
		}
		i++
	}

	if g.pendingRules != nil {
		g.rules = *g.pendingRules
		g.pendingRules = nil
	}
	if g.pendingStakes != nil {
		g.stakes = *g.pendingStakes
		g.pendingStakes = nil
	}

	eligible := g.eligiblePlayers()
	if len(eligible) < 2 {
		g.phase = PhaseWaiting
		return ErrNotEnoughPlayers
	}

	g.handNum++
	g.dealerSeat = g.NextDealerSeat()
	g.deck.Reset(1)
	g.boards = [][]deck.Card{nil}
	g.ghostCards = nil
	g.hole = make(map[string][]deck.Card)
	g.pot = 0
	g.sidePots = nil
	g.currentBet = 0
	g.minRaise = g.minBetUnit()
	g.currentSeat = -1
	g.straddles = nil
	g.straddlePrompt = nil
	g.straddleCount = 0
	g.straddleDone = false
	g.runIt = nil
	g.winners = nil
	g.bonus = nil
	g.wonByFold = false
	g.runoutFrom = PhaseWaiting
	g.revealedSeed = ""
	g.bombPot = bombPotAmount > 0
	g.bombPotAmount = bombPotAmount
	g.dualBoard = g.bombPot && dualBoard

	for _, p := range g.players {
		p.Bet = 0
		p.HandTotal = 0
		p.HasActed = false
		p.AllIn = false
		p.Folded = false
		p.DealtIn = false
	}
	for _, p := range eligible {
		p.DealtIn = true
	}

	g.phase = PhaseStarting

	if g.dualBoard {
		g.boards = [][]deck.Card{nil, nil}
	}

	if g.bombPot {
		return g.startBombPot(eligible)
	}
	return g.startNormalHand(eligible)
}

func (g *Game) startNormalHand(eligible []*Player) error {
	g.collectAntes(eligible, g.stakes.Ante)

	sbSeat, bbSeat := g.blindSeats()
	if sb := g.playerAtSeat(sbSeat); sb != nil && g.stakes.SmallBlind > 0 {
		sb.commit(g.stakes.SmallBlind)
	}
	if bb := g.playerAtSeat(bbSeat); bb != nil && g.stakes.BigBlind > 0 {
		bb.commit(g.stakes.BigBlind)
	}
	g.currentBet = g.stakes.BigBlind
	g.minRaise = g.minBetUnit()

	g.phase = PhasePreflop
	if err := g.dealHoleCards(eligible); err != nil {
		return g.abortHand(err)
	}

	g.currentSeat = g.firstToActPreflop()
	return nil
}

func (g *Game) startBombPot(eligible []*Player) error {
	g.collectAntes(eligible, g.bombPotAmount)

	g.phase = PhaseFlop
	if err := g.dealHoleCards(eligible); err != nil {
		return g.abortHand(err)
	}
	if err := g.dealStreet(PhaseFlop); err != nil {
		return g.abortHand(err)
	}

	g.currentBet = 0
	g.minRaise = g.minBetUnit()
	g.currentSeat = g.firstActiveAfter(g.dealerSeat)
	if g.currentSeat == -1 {
		// Everyone anted all-in; run the boards out.
		g.runOutToShowdown()
	}
	return nil
}

// collectAntes takes amount from every eligible seat straight into the pot.
func (g *Game) collectAntes(eligible []*Player, amount int) {
	if amount <= 0 {
		return
	}
	for _, p := range eligible {
		paid := p.commit(amount)
		p.Bet -= paid // antes are not street bets
		g.pot += paid
	}
}

// blindSeats returns the small and big blind seats for this hand. Heads-up
// the dealer posts the small blind.
func (g *Game) blindSeats() (sb, bb int) {
	if len(g.eligibleDealtIn()) == 2 {
		return g.dealerSeat, g.nextDealtInSeat(g.dealerSeat)
	}
	sb = g.nextDealtInSeat(g.dealerSeat)
	bb = g.nextDealtInSeat(sb)
	return sb, bb
}

func (g *Game) eligibleDealtIn() []*Player {
	var out []*Player
	for _, p := range g.players {
		if p.DealtIn {
			out = append(out, p)
		}
	}
	return out
}

// dealHoleCards deals round-robin starting at the small blind, who
// heads-up is the dealer.
func (g *Game) dealHoleCards(eligible []*Player) error {
	count := g.variant.HoleCardCount()
	start, _ := g.blindSeats()
	order := g.dealtInFrom(start)

	for round := 0; round < count; round++ {
		for _, p := range order {
			card, ok := g.deck.Deal()
			if !ok {
				return fmt.Errorf("%w: deck exhausted dealing hole cards", ErrInvariantViolated)
			}
			g.hole[p.ID] = append(g.hole[p.ID], card)
		}
	}
	return nil
}

// dealStreet burns and deals the community cards for the given phase onto
// every board.
func (g *Game) dealStreet(phase Phase) error {
	var n int
	switch phase {
	case PhaseFlop:
		n = 3
	case PhaseTurn, PhaseRiver:
		n = 1
	default:
		return nil
	}
	for b := range g.boards {
		g.deck.Burn()
		cards := g.deck.DealN(n)
		if len(cards) != n {
			return fmt.Errorf("%w: deck exhausted dealing %s", ErrInvariantViolated, phase)
		}
		g.boards[b] = append(g.boards[b], cards...)
	}
	return nil
}

// abortHand handles an invariant violation: refund all in-flight chips to
// their seats and return the room to waiting. Never silently continue.
func (g *Game) abortHand(cause error) error {
	for _, p := range g.players {
		p.Chips += p.HandTotal
		p.Bet = 0
		p.HandTotal = 0
		p.AllIn = false
		p.Folded = false
		p.HasActed = false
	}
	g.pot = 0
	g.sidePots = nil
	g.currentBet = 0
	g.currentSeat = -1
	g.phase = PhaseWaiting
	return fmt.Errorf("hand aborted: %w", cause)
}

// Seat traversal helpers. All iterate clockwise in seat order.

func (g *Game) playerAtSeat(seat int) *Player {
	for _, p := range g.players {
		if p.Seat == seat {
			return p
		}
	}
	return nil
}

// nextDealtInSeat returns the next dealt-in seat clockwise after seat.
func (g *Game) nextDealtInSeat(seat int) int {
	if len(g.players) == 0 {
		return -1
	}
	for offset := 1; offset <= g.maxPlayers; offset++ {
		candidate := (seat + offset) % g.maxPlayers
		if p := g.playerAtSeat(candidate); p != nil && p.DealtIn {
			return candidate
		}
	}
	return -1
}

// firstActiveAfter returns the first seat clockwise after seat that can
// still act (dealt in, not folded, not all-in).
func (g *Game) firstActiveAfter(seat int) int {
	for offset := 1; offset <= g.maxPlayers; offset++ {
		candidate := (seat + offset) % g.maxPlayers
		if p := g.playerAtSeat(candidate); p != nil && p.CanAct() {
			return candidate
		}
	}
	return -1
}

// dealtInFrom returns dealt-in players in clockwise order starting at seat.
func (g *Game) dealtInFrom(seat int) []*Player {
	var out []*Player
	for offset := 0; offset < g.maxPlayers; offset++ {
		candidate := (seat + offset) % g.maxPlayers
		if p := g.playerAtSeat(candidate); p != nil && p.DealtIn {
			out = append(out, p)
		}
	}
	return out
}

// firstToActPreflop applies the variant's preflop ordering: heads-up the
// dealer acts first, otherwise the seat after the big blind.
func (g *Game) firstToActPreflop() int {
	if len(g.eligibleDealtIn()) == 2 {
		if p := g.playerAtSeat(g.dealerSeat); p != nil && p.CanAct() {
			return g.dealerSeat
		}
		return g.firstActiveAfter(g.dealerSeat)
	}
	_, bb := g.blindSeats()
	return g.firstActiveAfter(bb)
}

// minBetUnit is the minimum bet increment for a fresh street: the big
// blind, or the ante when the game has no blinds.
func (g *Game) minBetUnit() int {
	if g.stakes.BigBlind > 0 {
		return g.stakes.BigBlind
	}
	if g.bombPot && g.bombPotAmount > 0 {
		return g.bombPotAmount
	}
	if g.stakes.Ante > 0 {
		return g.stakes.Ante
	}
	return 1
}

// chipTotal is the conservation quantity checked by tests: seats plus
// street bets plus collected pot.
func (g *Game) chipTotal() int {
	total := g.pot
	for _, p := range g.players {
		total += p.Chips + p.Bet
	}
	return total
}
