package game

import "github.com/lox/pokerrooms/internal/deck"

// RunItChoice is one eligible player's selection state.
type RunItChoice struct {
	Choice    int  `json:"choice"` // 0 until a selection is made
	Confirmed bool `json:"confirmed"`
}

// RunItPrompt is the open run-it-multiple offer. Eligible players select a
// number of boards and confirm; the orchestrator finalizes on timeout or
// early termination.
type RunItPrompt struct {
	Eligible []string                `json:"eligible"`
	Choices  map[string]*RunItChoice `json:"choices"`
	MaxTimes int                     `json:"maxTimes"`
}

// RunItPromptOpen returns the open run-it prompt, if any.
func (g *Game) RunItPromptOpen() *RunItPrompt { return g.runIt }

// shouldPromptRunIt reports whether a runout should pause for the run-it
// prompt: multiple boards allowed by rule, at least two all-in contenders,
// cards still to come, and not already a dual-board hand.
func (g *Game) shouldPromptRunIt() bool {
	if !g.rules.RunItTwice && !g.rules.RunItThrice {
		return false
	}
	if g.dualBoard || g.phase == PhaseRiver {
		return false
	}
	allIn := 0
	for _, p := range g.players {
		if p.InHand() && p.AllIn {
			allIn++
		}
	}
	return allIn >= 2
}

// openRunItPrompt opens the prompt when eligible. Reports whether a prompt
// was opened; the caller runs out immediately when it was not.
func (g *Game) openRunItPrompt() bool {
	if !g.shouldPromptRunIt() {
		return false
	}
	prompt := &RunItPrompt{
		Choices:  make(map[string]*RunItChoice),
		MaxTimes: g.maxRunItTimes(),
	}
	for _, p := range g.players {
		if p.InHand() && p.AllIn {
			prompt.Eligible = append(prompt.Eligible, p.ID)
			prompt.Choices[p.ID] = &RunItChoice{}
		}
	}
	g.runIt = prompt
	g.runoutFrom = g.phase
	return true
}

func (g *Game) maxRunItTimes() int {
	if g.rules.RunItThrice {
		return 3
	}
	if g.rules.RunItTwice {
		return 2
	}
	return 1
}

// ProcessRunItChoice records a selection. Out-of-range values error;
// values above the enabled maximum downgrade silently.
func (g *Game) ProcessRunItChoice(id string, choice int) error {
	if g.runIt == nil {
		return ErrNoRunItPrompt
	}
	c, ok := g.runIt.Choices[id]
	if !ok {
		return ErrInvalidChoice
	}
	if c.Confirmed {
		return ErrCannotConfirm
	}
	if choice < 1 || choice > 3 {
		return ErrInvalidChoice
	}
	c.Choice = g.rules.clampRunItChoice(choice)
	return nil
}

// ConfirmRunItChoice locks in a player's selection. Confirming without a
// prior selection locks in a single board.
func (g *Game) ConfirmRunItChoice(id string) error {
	if g.runIt == nil {
		return ErrNoRunItPrompt
	}
	c, ok := g.runIt.Choices[id]
	if !ok {
		return ErrCannotConfirm
	}
	if c.Choice == 0 {
		c.Choice = 1
	}
	c.Confirmed = true
	return nil
}

// AllRunItChoicesConfirmed reports early-termination condition (a).
func (g *Game) AllRunItChoicesConfirmed() bool {
	if g.runIt == nil {
		return false
	}
	for _, c := range g.runIt.Choices {
		if !c.Confirmed {
			return false
		}
	}
	return true
}

// AllConfirmedChoicesSame reports early-termination condition (b): at least
// one confirmation exists and every confirmed player chose the same value.
func (g *Game) AllConfirmedChoicesSame() bool {
	if g.runIt == nil {
		return false
	}
	value := 0
	for _, c := range g.runIt.Choices {
		if !c.Confirmed {
			continue
		}
		if value == 0 {
			value = c.Choice
		} else if c.Choice != value {
			return false
		}
	}
	return value != 0
}

// FinalRunItChoice is the minimum of every eligible player's effective
// choice: their selected value, or 1 for anyone who never selected. A
// selection counts even when the prompt closes before its confirmation,
// so one player's early confirm cannot shrink an agreed board count.
func (g *Game) FinalRunItChoice() int {
	if g.runIt == nil {
		return 1
	}
	final := g.maxRunItTimes()
	for _, c := range g.runIt.Choices {
		effective := 1
		if c.Choice > 0 {
			effective = c.Choice
		}
		if effective < final {
			final = effective
		}
	}
	if final < 1 {
		final = 1
	}
	return final
}

// ResolveRunIt closes the prompt and runs the hand out with the final
// choice, dealing the extra boards when the table agreed to more than one.
func (g *Game) ResolveRunIt() {
	if g.runIt == nil {
		return
	}
	times := g.FinalRunItChoice()
	g.runIt = nil
	if times <= 1 {
		g.skipRunIt()
		return
	}
	g.executeRunIt(times)
}

// skipRunIt runs a single board out to showdown.
func (g *Game) skipRunIt() {
	g.runOutToShowdown()
}

// executeRunIt deals the remaining community cards onto `times` boards.
// Every board shares the cards already on the table; the remainder of each
// comes independently from the live deck.
func (g *Game) executeRunIt(times int) {
	shared := g.boards[0]
	missing := 5 - len(shared)
	if missing <= 0 {
		g.resolveShowdown()
		return
	}

	runouts, err := g.deck.DealRunOut(missing, times)
	if err != nil {
		g.abortHand(err)
		return
	}
	g.boards = make([][]deck.Card, times)
	for i := 0; i < times; i++ {
		board := make([]deck.Card, 0, 5)
		board = append(board, shared...)
		board = append(board, runouts[i]...)
		g.boards[i] = board
	}

	g.phase = PhaseRiver
	g.resolveShowdown()
}
