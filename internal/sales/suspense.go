package sales

import (
	"fmt"
	"sync"

	pkgerrors "github.com/retailpulse/retailpulse-backend/pkg/errors"
)

// SuspendStore keeps suspended transaction mementos per business
// entity, in suspension order. It is an injected collaborator, one per
// process, and safe for concurrent use.
type SuspendStore struct {
	mu       sync.Mutex
	byEntity map[int64][]Memento
}

// NewSuspendStore returns an empty store.
func NewSuspendStore() *SuspendStore {
	return &SuspendStore{byEntity: make(map[int64][]Memento)}
}

// Append adds a memento for the entity and returns a copy of its
// current list.
func (s *SuspendStore) Append(businessEntityID int64, m Memento) []Memento {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byEntity[businessEntityID] = append(s.byEntity[businessEntityID], m)
	return copyMementos(s.byEntity[businessEntityID])
}

// List returns a copy of the entity's suspended mementos.
func (s *SuspendStore) List(businessEntityID int64) []Memento {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyMementos(s.byEntity[businessEntityID])
}

// Remove takes the memento with the given id out of the entity's list
// and returns it with the remaining list.
func (s *SuspendStore) Remove(businessEntityID int64, mementoID string) (Memento, []Memento, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.byEntity[businessEntityID]
	for i, m := range list {
		if m.ID != mementoID {
			continue
		}
		remaining := make([]Memento, 0, len(list)-1)
		remaining = append(remaining, list[:i]...)
		remaining = append(remaining, list[i+1:]...)
		if len(remaining) == 0 {
			delete(s.byEntity, businessEntityID)
		} else {
			s.byEntity[businessEntityID] = remaining
		}
		return m, copyMementos(remaining), nil
	}

	return Memento{}, nil, pkgerrors.New(pkgerrors.CodeNotFound,
		fmt.Sprintf("suspended transaction %s not found", mementoID))
}

func copyMementos(list []Memento) []Memento {
	out := make([]Memento, len(list))
	copy(out, list)
	return out
}
