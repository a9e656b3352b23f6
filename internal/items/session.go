package items

import (
	"fmt"

	"github.com/marks-app/marks/internal/model"
)

// Mode is the interaction mode of a Session. The two active modes are
// mutually exclusive; entering one while the other is running fails.
type Mode int

const (
	ModeIdle Mode = iota
	ModeReordering
	ModeDragging
)

// String returns the mode name for status lines.
func (m Mode) String() string {
	switch m {
	case ModeReordering:
		return "reorder"
	case ModeDragging:
		return "drag"
	default:
		return "idle"
	}
}

// Group names one sibling group: a parent (nil = root) and a kind.
type Group struct {
	ParentID *string
	Kind     model.Kind
}

// Session models one client's drag/reorder interaction. While reordering it
// holds a candidate order in memory; nothing is persisted until SaveOrder.
// Canceling, or finishing either mode, returns to idle and the next read
// comes from the store again.
type Session struct {
	svc     *Service
	ownerID string

	mode      Mode
	group     Group
	candidate []string // candidate order while reordering
	dragID    string   // bookmark being dragged
}

// NewSession creates an idle session for one owner.
func NewSession(svc *Service, ownerID string) *Session {
	return &Session{svc: svc, ownerID: ownerID}
}

// Mode returns the current interaction mode.
func (s *Session) Mode() Mode {
	return s.mode
}

// CandidateOrder returns the in-memory order while reordering.
func (s *Session) CandidateOrder() []string {
	return s.candidate
}

// Group returns the sibling group being reordered.
func (s *Session) Group() Group {
	return s.group
}

// BeginReorder enters reorder mode for one sibling group, seeded with the
// group's current order.
func (s *Session) BeginReorder(group Group, current []string) error {
	if s.mode != ModeIdle {
		return fmt.Errorf("%w: session is in %s mode", model.ErrConflict, s.mode)
	}
	s.mode = ModeReordering
	s.group = group
	s.candidate = append([]string(nil), current...)
	return nil
}

// MoveItem shifts the item at position from to position to in the candidate
// order. Only the in-memory order changes.
func (s *Session) MoveItem(from, to int) error {
	if s.mode != ModeReordering {
		return fmt.Errorf("%w: not in reorder mode", model.ErrConflict)
	}
	if from < 0 || from >= len(s.candidate) || to < 0 || to >= len(s.candidate) {
		return fmt.Errorf("%w: position out of range", model.ErrValidation)
	}

	id := s.candidate[from]
	s.candidate = append(s.candidate[:from], s.candidate[from+1:]...)
	s.candidate = append(s.candidate[:to], append([]string{id}, s.candidate[to:]...)...)
	return nil
}

// SaveOrder persists the candidate order and returns to idle. On failure the
// session stays in reorder mode so the caller can retry or cancel.
func (s *Session) SaveOrder() error {
	if s.mode != ModeReordering {
		return fmt.Errorf("%w: not in reorder mode", model.ErrConflict)
	}
	if err := s.svc.SaveOrder(s.ownerID, s.group.ParentID, s.group.Kind, s.candidate); err != nil {
		return err
	}
	s.reset()
	return nil
}

// BeginDrag enters drag mode with the given bookmark in hand.
func (s *Session) BeginDrag(bookmarkID string) error {
	if s.mode != ModeIdle {
		return fmt.Errorf("%w: session is in %s mode", model.ErrConflict, s.mode)
	}
	s.mode = ModeDragging
	s.dragID = bookmarkID
	return nil
}

// Drop reparents the dragged bookmark onto the target and returns to idle.
// A no-op drop (current parent, non-folder target) still ends the drag.
func (s *Session) Drop(targetID string) error {
	if s.mode != ModeDragging {
		return fmt.Errorf("%w: not in drag mode", model.ErrConflict)
	}
	err := s.svc.MoveToFolder(s.ownerID, s.dragID, targetID)
	if err != nil {
		s.reset()
		return err
	}
	s.reset()
	return nil
}

// Cancel discards any in-memory state and returns to idle.
func (s *Session) Cancel() {
	s.reset()
}

func (s *Session) reset() {
	s.mode = ModeIdle
	s.group = Group{}
	s.candidate = nil
	s.dragID = ""
}
