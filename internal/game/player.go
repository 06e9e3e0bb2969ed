package game

// PlayerStatus is the seat-level status of a player.
type PlayerStatus string

const (
	StatusActive       PlayerStatus = "active"
	StatusSittingOut   PlayerStatus = "sitting-out"
	StatusAway         PlayerStatus = "away"
	StatusDisconnected PlayerStatus = "disconnected"
)

// Player is a seated player. Bet is the street contribution still in front
// of the player; HandTotal accumulates everything committed this hand and
// feeds side-pot construction.
type Player struct {
	ID     string
	Name   string
	Seat   int
	Chips  int
	Status PlayerStatus

	Bet       int
	HandTotal int
	HasActed  bool
	AllIn     bool
	Folded    bool
	DealtIn   bool

	// PendingRemove marks a player who stood up mid-hand; the seat is
	// released when the hand completes.
	PendingRemove bool

	// Preferences persist across hands; only the owner toggles them.
	BombPotWhenDealer bool
	StraddleNextHand  bool
}

// CanAct reports whether the player can take a betting action.
func (p *Player) CanAct() bool {
	return p.DealtIn && !p.Folded && !p.AllIn
}

// InHand reports whether the player still contests the pot.
func (p *Player) InHand() bool {
	return p.DealtIn && !p.Folded
}

// commit moves up to amount chips into the player's street bet, returning
// the amount actually paid. Sets the all-in flag when the stack empties.
func (p *Player) commit(amount int) int {
	if amount > p.Chips {
		amount = p.Chips
	}
	p.Chips -= amount
	p.Bet += amount
	p.HandTotal += amount
	if p.Chips == 0 {
		p.AllIn = true
	}
	return amount
}
