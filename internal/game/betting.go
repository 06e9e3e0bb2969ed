package game

import "fmt"

// ValidAction describes one legal action for the player to act, with the
// chip bounds the client needs to render controls.
type ValidAction struct {
	Type ActionType `json:"type"`
	Min  int        `json:"min,omitempty"`
	Max  int        `json:"max,omitempty"`
}

// ValidActions returns the legal actions for the player whose turn it is.
// Empty when it is not id's turn.
func (g *Game) ValidActions(id string) []ValidAction {
	p := g.CurrentPlayer()
	if p == nil || p.ID != id || !g.phase.IsBetting() {
		return nil
	}

	var out []ValidAction
	out = append(out, ValidAction{Type: ActionFold})

	toCall := g.currentBet - p.Bet
	if toCall <= 0 {
		out = append(out, ValidAction{Type: ActionCheck})
	} else {
		call := toCall
		if call > p.Chips {
			call = p.Chips
		}
		out = append(out, ValidAction{Type: ActionCall, Min: call, Max: call})
	}

	maxTotal := p.Bet + p.Chips
	if g.currentBet == 0 {
		min := g.minBetUnit()
		if min > maxTotal {
			min = maxTotal
		}
		if maxTotal > 0 {
			out = append(out, ValidAction{Type: ActionBet, Min: min, Max: maxTotal})
		}
	} else if maxTotal > g.currentBet && !p.HasActed {
		// A short all-in does not reopen the action; a seat that already
		// acted may only call or fold until someone makes a full raise.
		min := g.currentBet + g.minRaise
		if min > maxTotal {
			min = maxTotal
		}
		out = append(out, ValidAction{Type: ActionRaise, Min: min, Max: maxTotal})
	}
	if p.Chips > 0 {
		out = append(out, ValidAction{Type: ActionAllIn, Min: maxTotal, Max: maxTotal})
	}
	return out
}

// ProcessAction applies a betting action for the player with the given id.
// Amount on bet/raise is the player's target total street contribution.
// The state is unchanged when an error is returned.
func (g *Game) ProcessAction(id string, action Action) (*ActionResult, error) {
	if !g.phase.IsBetting() {
		return nil, ErrNoHandInProgress
	}
	p := g.Player(id)
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	if p.Folded {
		return nil, ErrPlayerFolded
	}
	if g.currentSeat != p.Seat {
		return nil, ErrNotYourTurn
	}

	paid, err := g.applyAction(p, action)
	if err != nil {
		return nil, err
	}

	result := &ActionResult{
		PlayerID:   p.ID,
		Action:     action.Type,
		AmountPaid: paid,
		Pot:        g.potTotal(),
	}

	g.advance(result)
	return result, nil
}

func (g *Game) applyAction(p *Player, action Action) (int, error) {
	toCall := g.currentBet - p.Bet

	switch action.Type {
	case ActionFold:
		g.foldPlayer(p)
		return 0, nil

	case ActionCheck:
		if toCall > 0 {
			return 0, fmt.Errorf("%w: cannot check facing a bet of %d", ErrInvalidAction, g.currentBet)
		}
		p.HasActed = true
		return 0, nil

	case ActionCall:
		if toCall <= 0 {
			return 0, fmt.Errorf("%w: nothing to call", ErrInvalidAction)
		}
		paid := p.commit(toCall)
		p.HasActed = true
		return paid, nil

	case ActionBet:
		if g.currentBet != 0 {
			return 0, fmt.Errorf("%w: bet not allowed facing a bet, raise instead", ErrInvalidAction)
		}
		return g.applyWager(p, action.Amount)

	case ActionRaise:
		if g.currentBet == 0 {
			return 0, fmt.Errorf("%w: nothing to raise, bet instead", ErrInvalidAction)
		}
		return g.applyWager(p, action.Amount)

	case ActionAllIn:
		if p.Chips == 0 {
			return 0, fmt.Errorf("%w: no chips behind", ErrInvalidAction)
		}
		if p.Bet+p.Chips <= g.currentBet {
			// All-in for no more than the current bet is a call for less.
			paid := p.commit(p.Chips)
			p.HasActed = true
			return paid, nil
		}
		return g.applyWager(p, p.Bet+p.Chips)

	default:
		return 0, fmt.Errorf("%w: unknown action %q", ErrInvalidAction, action.Type)
	}
}

// applyWager handles bet and raise alike: target is the player's new total
// street contribution. A wager below the legal minimum is only accepted
// when it puts the player all-in; a short all-in raise moves the current
// bet without reopening the action for players who have already acted.
func (g *Game) applyWager(p *Player, target int) (int, error) {
	if target <= g.currentBet {
		return 0, fmt.Errorf("%w: wager %d does not exceed current bet %d", ErrInvalidAmount, target, g.currentBet)
	}
	if g.currentBet > 0 && p.HasActed {
		return 0, fmt.Errorf("%w: action has not been reopened", ErrInvalidAction)
	}
	add := target - p.Bet
	if add > p.Chips {
		return 0, fmt.Errorf("%w: wager %d exceeds stack", ErrInvalidAmount, target)
	}
	allIn := add == p.Chips

	var legalMin int
	if g.currentBet == 0 {
		legalMin = g.minBetUnit()
	} else {
		legalMin = g.currentBet + g.minRaise
	}
	if target < legalMin && !allIn {
		return 0, fmt.Errorf("%w: minimum is %d", ErrInvalidAmount, legalMin)
	}

	fullRaise := target >= legalMin
	raiseBy := target - g.currentBet

	paid := p.commit(add)
	p.HasActed = true
	g.currentBet = target

	if fullRaise {
		// A full bet or raise reopens the action.
		g.minRaise = raiseBy
		if g.minRaise < g.minBetUnit() {
			g.minRaise = g.minBetUnit()
		}
		for _, other := range g.players {
			if other != p && other.CanAct() {
				other.HasActed = false
			}
		}
	}
	return paid, nil
}

// foldPlayer folds p out of the hand, discarding the street bet into the
// pot accounting (it stays in HandTotal and is collected normally).
func (g *Game) foldPlayer(p *Player) {
	p.Folded = true
	p.HasActed = true
}

// advance moves the hand forward after an action: next player, next street,
// silent runout, or completion. Fills the result flags the orchestrator
// keys its timers on.
func (g *Game) advance(result *ActionResult) {
	inHand := g.playersInHand()

	if len(inHand) == 1 {
		g.completeByFold(inHand[0])
		result.HandComplete = true
		result.Pot = g.potTotal()
		return
	}

	if !g.bettingRoundComplete() {
		g.currentSeat = g.firstActiveAfter(g.currentSeat)
		return
	}

	g.collectBets()
	result.Pot = g.potTotal()

	if g.countCanAct() <= 1 {
		// No more betting possible; the remaining streets run out. Offer
		// the run-it prompt first when the rules allow it.
		if g.phase != PhaseRiver && g.openRunItPrompt() {
			result.RunItEligible = true
			return
		}
		g.runOutToShowdown()
		result.HandComplete = g.phase == PhaseComplete
		result.PhaseChanged = true
		result.Pot = g.potTotal()
		return
	}

	if g.phase == PhaseRiver {
		g.resolveShowdown()
		result.HandComplete = true
		result.Pot = g.potTotal()
		return
	}

	g.startStreet(NextPhase(g.phase))
	result.PhaseChanged = true
}

// startStreet deals the next street and resets the betting round.
func (g *Game) startStreet(phase Phase) {
	g.phase = phase
	if err := g.dealStreet(phase); err != nil {
		g.abortHand(err)
		return
	}
	g.currentBet = 0
	g.minRaise = g.minBetUnit()
	for _, p := range g.players {
		p.HasActed = false
	}
	g.currentSeat = g.firstActiveAfter(g.dealerSeat)
}

// bettingRoundComplete reports whether every player still able to act has
// acted and matched the current bet.
func (g *Game) bettingRoundComplete() bool {
	for _, p := range g.players {
		if !p.CanAct() {
			continue
		}
		if !p.HasActed || p.Bet != g.currentBet {
			return false
		}
	}
	return true
}

// collectBets sweeps street bets into the pot at the end of a round.
func (g *Game) collectBets() {
	for _, p := range g.players {
		g.pot += p.Bet
		p.Bet = 0
	}
	g.currentSeat = -1
}

// potTotal includes bets still in front of players mid-round.
func (g *Game) potTotal() int {
	total := g.pot
	for _, p := range g.players {
		total += p.Bet
	}
	return total
}

func (g *Game) playersInHand() []*Player {
	var out []*Player
	for _, p := range g.players {
		if p.InHand() {
			out = append(out, p)
		}
	}
	return out
}

func (g *Game) countCanAct() int {
	n := 0
	for _, p := range g.players {
		if p.CanAct() {
			n++
		}
	}
	return n
}

// completeByFold awards the pot to the last player standing without a
// showdown. Hole cards stay hidden; with run-out-on-fold enabled the cards
// that would have come are dealt into ghostCards for display only.
func (g *Game) completeByFold(winner *Player) {
	g.collectBets()
	if missing := 5 - len(g.boards[0]); g.rules.RunOutOnFold && missing > 0 {
		g.runoutFrom = g.phase
		g.ghostCards = g.deck.DealN(missing)
	}
	winner.Chips += g.pot
	g.winners = []Winner{{
		PlayerID:  winner.ID,
		Seat:      winner.Seat,
		Amount:    g.pot,
		PotType:   PotTypeMain,
		WonByFold: true,
	}}
	g.wonByFold = true
	g.pot = 0
	g.phase = PhaseComplete
	g.currentSeat = -1
	g.revealedSeed = g.deck.RevealSeed()
}

// dealRemainingStreets deals the board out to the river on every board.
func (g *Game) dealRemainingStreets() {
	for g.phase.IsBetting() && g.phase != PhaseRiver {
		next := NextPhase(g.phase)
		g.phase = next
		if err := g.dealStreet(next); err != nil {
			g.abortHand(err)
			return
		}
	}
}

// runOutToShowdown deals all remaining streets on a single board and
// resolves. Run-it-multiple goes through ExecuteRunIt instead.
func (g *Game) runOutToShowdown() {
	if g.runoutFrom == PhaseWaiting && g.phase != PhaseRiver {
		g.runoutFrom = g.phase
	}
	g.dealRemainingStreets()
	g.resolveShowdown()
}
