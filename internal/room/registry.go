package room

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// codeAlphabet is the 32-symbol invite code alphabet: A-Z without the
// confusable I and O, plus the digits 2-9.
const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6
)

var (
	ErrRoomNotFound = errors.New("room: not found")
	ErrRoomClosed   = errors.New("room: closed")
	ErrCodeSpace    = errors.New("room: could not allocate a unique code")
)

// RandSource supplies uniform draws for code generation; injectable for
// deterministic tests.
type RandSource interface {
	IntN(n int) int
}

type cryptoSource struct{}

func (cryptoSource) IntN(n int) int {
	// Rejection sampling over a single byte keeps the draw uniform.
	max := 256 - 256%n
	var b [1]byte
	for {
		if _, err := rand.Read(b[:]); err != nil {
			panic("room: crypto/rand failed: " + err.Error())
		}
		if int(b[0]) < max {
			return int(b[0]) % n
		}
	}
}

// Registry is the process-wide directory of open rooms. Lookup is
// read-mostly; creation and closure take the registry lock briefly.
type Registry struct {
	logger *log.Logger
	rand   RandSource

	mu     sync.RWMutex
	rooms  map[string]*Room // by id
	byCode map[string]*Room
	byUser map[string]string // userID -> roomID
}

// NewRegistry creates an empty registry. A nil RandSource uses crypto/rand.
func NewRegistry(logger *log.Logger, src RandSource) *Registry {
	if src == nil {
		src = cryptoSource{}
	}
	return &Registry{
		logger: logger.WithPrefix("rooms"),
		rand:   src,
		rooms:  make(map[string]*Room),
		byCode: make(map[string]*Room),
		byUser: make(map[string]string),
	}
}

// Create allocates a room with a fresh id and a unique invite code.
func (r *Registry) Create(opts Options) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, err := r.uniqueCode()
	if err != nil {
		return nil, err
	}
	rm := newRoom(opts, code)
	r.rooms[rm.ID] = rm
	r.byCode[code] = rm

	r.logger.Info("room created", "id", rm.ID, "code", code, "name", rm.Name, "host", rm.HostID)
	return rm, nil
}

// uniqueCode draws codes until one misses every open room. Caller holds
// the registry lock.
func (r *Registry) uniqueCode() (string, error) {
	for attempt := 0; attempt < 100; attempt++ {
		var sb strings.Builder
		for i := 0; i < codeLength; i++ {
			sb.WriteByte(codeAlphabet[r.rand.IntN(len(codeAlphabet))])
		}
		code := sb.String()
		if _, taken := r.byCode[code]; !taken {
			return code, nil
		}
	}
	return "", ErrCodeSpace
}

// Get returns the room with the given id.
func (r *Registry) Get(id string) (*Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return rm, nil
}

// GetByCode resolves an invite code, case-insensitively.
func (r *Registry) GetByCode(code string) (*Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.byCode[strings.ToUpper(code)]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return rm, nil
}

// Close shuts a room down and releases its code. Member bindings to the
// room are dropped. Idempotent.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[id]
	if !ok {
		return ErrRoomNotFound
	}
	rm.close()
	delete(r.rooms, id)
	delete(r.byCode, rm.Code)
	for userID, roomID := range r.byUser {
		if roomID == id {
			delete(r.byUser, userID)
		}
	}

	r.logger.Info("room closed", "id", id, "code", rm.Code)
	return nil
}

// ListPublic returns summaries of every open public room.
func (r *Registry) ListPublic() []Summary {
	r.mu.RLock()
	rooms := make([]*Room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		if rm.Public {
			rooms = append(rooms, rm)
		}
	}
	r.mu.RUnlock()

	out := make([]Summary, 0, len(rooms))
	for _, rm := range rooms {
		out = append(out, rm.Summarize())
	}
	return out
}

// BindUser records which room a user currently occupies.
func (r *Registry) BindUser(userID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[userID] = roomID
}

// UnbindUser clears a user's room binding.
func (r *Registry) UnbindUser(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byUser, userID)
}

// RoomFor returns the room the user is currently in.
func (r *Registry) RoomFor(userID string) (*Room, error) {
	r.mu.RLock()
	roomID, ok := r.byUser[userID]
	var rm *Room
	if ok {
		rm = r.rooms[roomID]
	}
	r.mu.RUnlock()

	if rm == nil {
		return nil, ErrRoomNotFound
	}
	return rm, nil
}

// Count returns the number of open rooms.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
