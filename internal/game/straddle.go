package game

// Straddle records a posted straddle.
type Straddle struct {
	PlayerID string `json:"playerId"`
	Seat     int    `json:"seat"`
	Amount   int    `json:"amount"`
}

// StraddlePrompt is an open offer to the named player to straddle for
// Amount. The orchestrator gives each prompt a short decision window.
type StraddlePrompt struct {
	PlayerID string `json:"playerId"`
	Seat     int    `json:"seat"`
	Amount   int    `json:"amount"`
}

// StraddlePromptOpen returns the open straddle prompt, if any.
func (g *Game) StraddlePromptOpen() *StraddlePrompt { return g.straddlePrompt }

// StartStraddlePrompt opens the straddle chain after blinds are posted and
// before preflop action. Returns nil when straddling does not apply to this
// hand (disabled, bomb pot, or no affordable candidate). Players with the
// straddle preference set are posted automatically and the chain moves on.
func (g *Game) StartStraddlePrompt() *StraddlePrompt {
	if g.phase != PhasePreflop || g.bombPot || g.straddleDone || len(g.straddles) > 0 {
		return nil
	}
	if g.rules.maxStraddleCount() == 0 || len(g.eligibleDealtIn()) < 3 {
		g.straddleDone = true
		return nil
	}
	_, bb := g.blindSeats()
	g.straddleNextSeat = g.nextDealtInSeat(bb)
	return g.offerStraddle()
}

// offerStraddle prompts the next candidate, consuming the UTG auto-accept,
// until a manual decision is needed or the chain ends.
func (g *Game) offerStraddle() *StraddlePrompt {
	for !g.straddleDone {
		if g.straddleCount >= g.rules.maxStraddleCount() {
			g.endStraddles()
			return nil
		}
		p := g.playerAtSeat(g.straddleNextSeat)
		if p == nil || !p.CanAct() {
			g.endStraddles()
			return nil
		}
		if sb, bb := g.blindSeats(); p.Seat == sb || p.Seat == bb {
			// The chain stops before wrapping back to the blinds.
			g.endStraddles()
			return nil
		}
		amount := g.nextStraddleAmount()
		if p.Chips <= amount-p.Bet {
			// Cannot post a full straddle; the chain ends.
			g.endStraddles()
			return nil
		}
		// Only UTG honors the auto-straddle preference; later seats are
		// always prompted.
		if p.StraddleNextHand && g.straddleCount == 0 {
			g.postStraddle(p, amount)
			continue
		}
		g.straddlePrompt = &StraddlePrompt{PlayerID: p.ID, Seat: p.Seat, Amount: amount}
		return g.straddlePrompt
	}
	return nil
}

// nextStraddleAmount doubles per link: 2xBB, 4xBB, 8xBB.
func (g *Game) nextStraddleAmount() int {
	amount := g.stakes.BigBlind * 2
	for i := 0; i < g.straddleCount; i++ {
		amount *= 2
	}
	return amount
}

// ProcessStraddle resolves the open prompt. Accepting posts the straddle
// and offers the next link; declining ends the chain. Returns the next
// prompt, or nil when the chain is finished and preflop action may begin.
func (g *Game) ProcessStraddle(id string, accept bool) (*StraddlePrompt, error) {
	if g.straddlePrompt == nil {
		return nil, ErrStraddleFailed
	}
	if g.straddlePrompt.PlayerID != id {
		return nil, ErrNotYourTurn
	}
	p := g.Player(id)
	if p == nil {
		return nil, ErrPlayerNotFound
	}

	prompt := g.straddlePrompt
	g.straddlePrompt = nil

	if !accept {
		g.endStraddles()
		return nil, nil
	}
	g.postStraddle(p, prompt.Amount)
	return g.offerStraddle(), nil
}

// ExpireStraddlePrompt treats a timed-out prompt as a decline.
func (g *Game) ExpireStraddlePrompt() {
	if g.straddlePrompt == nil {
		return
	}
	g.straddlePrompt = nil
	g.endStraddles()
}

// postStraddle posts a live straddle: it acts like an extra blind, raising
// the current bet without using the player's action. The raise increment
// stays at the big blind.
func (g *Game) postStraddle(p *Player, amount int) {
	p.commit(amount - p.Bet)
	g.currentBet = amount
	g.straddles = append(g.straddles, Straddle{PlayerID: p.ID, Seat: p.Seat, Amount: amount})
	g.straddleCount++
	g.straddleNextSeat = g.nextDealtInSeat(p.Seat)
}

// endStraddles closes the chain and re-derives preflop order: action opens
// on the seat after the last straddler, who keeps the option like a blind.
func (g *Game) endStraddles() {
	g.straddleDone = true
	g.straddlePrompt = nil
	if len(g.straddles) == 0 {
		return
	}
	last := g.straddles[len(g.straddles)-1]
	g.currentSeat = g.firstActiveAfter(last.Seat)
}
