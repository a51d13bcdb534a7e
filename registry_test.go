package server

import (
	"errors"
	"testing"
	"time"
)

func newTestRoom(code string) *Room {
	return &Room{
		Code:   code,
		game:   newGameState(nil, 0, 0, time.Now()),
		lock:   newRoomLock(time.Second),
		timers: newLifecycleTimers(),
	}
}

func TestRegistryJoinAssignsSequentialSeats(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Create(newTestRoom("1234")); err != nil {
		t.Fatalf("create room: %v", err)
	}

	n1, err := reg.Join("1234", "alice")
	if err != nil {
		t.Fatalf("first join failed: %v", err)
	}
	if n1 != 1 {
		t.Fatalf("expected seat 1, got %d", n1)
	}

	n2, err := reg.Join("1234", "bob")
	if err != nil {
		t.Fatalf("second join failed: %v", err)
	}
	if n2 != 2 {
		t.Fatalf("expected seat 2, got %d", n2)
	}

	if !reg.IsFull("1234") {
		t.Fatalf("expected room to be full with two seats taken")
	}
}

func TestRegistryJoinRejectsThirdPlayer(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Create(newTestRoom("1234")); err != nil {
		t.Fatalf("create room: %v", err)
	}
	if _, err := reg.Join("1234", "alice"); err != nil {
		t.Fatalf("first join failed: %v", err)
	}
	if _, err := reg.Join("1234", "bob"); err != nil {
		t.Fatalf("second join failed: %v", err)
	}

	if _, err := reg.Join("1234", "carol"); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
	if got := len(reg.Roster("1234")); got != 2 {
		t.Fatalf("expected roster unchanged at 2, got %d", got)
	}
}

func TestRegistryJoinUnknownRoom(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Join("9999", "alice"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestRegistrySeatNumberRecountedAfterDeparture(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Create(newTestRoom("1234")); err != nil {
		t.Fatalf("create room: %v", err)
	}
	if _, err := reg.Join("1234", "alice"); err != nil {
		t.Fatalf("join alice: %v", err)
	}
	if _, err := reg.Join("1234", "bob"); err != nil {
		t.Fatalf("join bob: %v", err)
	}
	if !reg.Leave("1234", "alice") {
		t.Fatalf("expected leave to succeed")
	}

	// Seats are recounted from the roster size, so the newcomer takes
	// seat 2 even though bob already holds it.
	n, err := reg.Join("1234", "carol")
	if err != nil {
		t.Fatalf("join carol: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected recounted seat 2, got %d", n)
	}
}

func TestRegistryLeaveClearsStarted(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Create(newTestRoom("1234")); err != nil {
		t.Fatalf("create room: %v", err)
	}
	if _, err := reg.Join("1234", "alice"); err != nil {
		t.Fatalf("join alice: %v", err)
	}
	if _, err := reg.Join("1234", "bob"); err != nil {
		t.Fatalf("join bob: %v", err)
	}
	reg.SetStarted("1234", true)

	if !reg.Leave("1234", "bob") {
		t.Fatalf("expected leave to succeed")
	}
	if reg.Started("1234") {
		t.Fatalf("expected started flag cleared after departure")
	}
}

func TestRegistryCreateDuplicateCode(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Create(newTestRoom("1234")); err != nil {
		t.Fatalf("create room: %v", err)
	}
	if err := reg.Create(newTestRoom("1234")); !errors.Is(err, ErrDuplicateRoomCode) {
		t.Fatalf("expected ErrDuplicateRoomCode, got %v", err)
	}
}

func TestRegistryJoinSeatsPaddleAtHomePosition(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Create(newTestRoom("1234")); err != nil {
		t.Fatalf("create room: %v", err)
	}
	if _, err := reg.Join("1234", "alice"); err != nil {
		t.Fatalf("join alice: %v", err)
	}

	roster := reg.Roster("1234")
	if len(roster) != 1 {
		t.Fatalf("expected one participant, got %d", len(roster))
	}
	if roster[0].Y != paddleHomeY {
		t.Fatalf("expected paddle at %v, got %v", float64(paddleHomeY), roster[0].Y)
	}
}

func TestRegistryUpdatePaddle(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Create(newTestRoom("1234")); err != nil {
		t.Fatalf("create room: %v", err)
	}
	if _, err := reg.Join("1234", "alice"); err != nil {
		t.Fatalf("join alice: %v", err)
	}

	if !reg.UpdatePaddle("1234", "alice", 222) {
		t.Fatalf("expected paddle update to succeed")
	}
	if reg.UpdatePaddle("1234", "ghost", 10) {
		t.Fatalf("expected unknown participant update to fail")
	}
	if got := reg.Roster("1234")[0].Y; got != 222 {
		t.Fatalf("expected paddle at 222, got %v", got)
	}
}

func TestRegistryRoomsWith(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Create(newTestRoom("1111")); err != nil {
		t.Fatalf("create room: %v", err)
	}
	if err := reg.Create(newTestRoom("2222")); err != nil {
		t.Fatalf("create room: %v", err)
	}
	if _, err := reg.Join("1111", "alice"); err != nil {
		t.Fatalf("join alice: %v", err)
	}
	if _, err := reg.Join("2222", "bob"); err != nil {
		t.Fatalf("join bob: %v", err)
	}

	codes := reg.RoomsWith("alice")
	if len(codes) != 1 || codes[0] != "1111" {
		t.Fatalf("expected [1111], got %v", codes)
	}
	if got := reg.RoomsWith("ghost"); len(got) != 0 {
		t.Fatalf("expected no rooms for unknown participant, got %v", got)
	}
}

func TestRegistryCloseRemovesRoom(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Create(newTestRoom("1234")); err != nil {
		t.Fatalf("create room: %v", err)
	}
	if !reg.Close("1234") {
		t.Fatalf("expected close to succeed")
	}
	if reg.Close("1234") {
		t.Fatalf("expected second close to report missing room")
	}
	if _, ok := reg.Get("1234"); ok {
		t.Fatalf("expected room to be gone after close")
	}
	if reg.Len() != 0 {
		t.Fatalf("expected empty registry, got %d rooms", reg.Len())
	}
}
