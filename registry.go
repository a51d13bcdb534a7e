package server

import "sync"

// Participant is one connected player inside a room. The ID is the opaque
// connection identifier assigned by the transport layer.
type Participant struct {
	ID     string  `json:"id"`
	Number int     `json:"number"`
	Y      float64 `json:"y"`
}

// Room bundles everything that shares a room's lifetime: the roster, the
// game state, the command lock, and the lifecycle timers. The four are
// created together and torn down together, keyed by the same code.
type Room struct {
	Code string

	participants []*Participant
	started      bool

	game   *gameState
	lock   *roomLock
	timers *lifecycleTimers
}

// Registry is the directory of live rooms. It owns rosters and the started
// flag; timing and game-state decisions belong to the Hub.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// Create registers a new room aggregate under code. The caller supplies the
// constructed aggregate so game state, lock, and timers exist from the first
// moment the room is reachable.
func (r *Registry) Create(room *Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rooms[room.Code]; exists {
		return ErrDuplicateRoomCode
	}
	r.rooms[room.Code] = room
	return nil
}

// Get returns the live aggregate for code.
func (r *Registry) Get(code string) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[code]
	return room, ok
}

// Join seats a participant and returns their seat number. Seat numbers are
// recounted from the current roster size, matching the original servers:
// a player joining after a mid-game departure takes over the vacated number.
func (r *Registry) Join(code, participantID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return 0, ErrRoomNotFound
	}
	if len(room.participants) >= maxSeats {
		return 0, ErrRoomFull
	}

	number := len(room.participants) + 1
	room.participants = append(room.participants, &Participant{
		ID:     participantID,
		Number: number,
		Y:      paddleHomeY,
	})
	return number, nil
}

// Leave removes a participant. Any in-progress game is invalidated the
// moment either side departs, so the started flag is cleared.
func (r *Registry) Leave(code, participantID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return false
	}
	for i, p := range room.participants {
		if p.ID == participantID {
			room.participants = append(room.participants[:i], room.participants[i+1:]...)
			room.started = false
			return true
		}
	}
	return false
}

// IsFull reports whether the room has both seats taken.
func (r *Registry) IsFull(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[code]
	return ok && len(room.participants) >= maxSeats
}

// Roster returns the participants in arrival order.
func (r *Registry) Roster(code string) []Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[code]
	if !ok {
		return nil
	}
	roster := make([]Participant, 0, len(room.participants))
	for _, p := range room.participants {
		roster = append(roster, *p)
	}
	return roster
}

// UpdatePaddle overwrites a participant's paddle offset.
func (r *Registry) UpdatePaddle(code, participantID string, y float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return false
	}
	for _, p := range room.participants {
		if p.ID == participantID {
			p.Y = y
			return true
		}
	}
	return false
}

// SetStarted flips the room's started flag.
func (r *Registry) SetStarted(code string, started bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return false
	}
	room.started = started
	return true
}

// Started reports the room's started flag.
func (r *Registry) Started(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[code]
	return ok && room.started
}

// Close removes the room from the directory.
func (r *Registry) Close(code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[code]; !ok {
		return false
	}
	delete(r.rooms, code)
	return true
}

// Codes snapshots the live room codes for the tick loop.
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := make([]string, 0, len(r.rooms))
	for code := range r.rooms {
		codes = append(codes, code)
	}
	return codes
}

// RoomsWith returns the codes of every room seating participantID. A
// connection belongs to at most one room in practice, but the scan keeps
// disconnect handling correct even if that assumption breaks.
func (r *Registry) RoomsWith(participantID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var codes []string
	for code, room := range r.rooms {
		for _, p := range room.participants {
			if p.ID == participantID {
				codes = append(codes, code)
				break
			}
		}
	}
	return codes
}

// Len reports the number of live rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
