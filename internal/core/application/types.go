package application

import (
	"github.com/vulpemventures/seedcheck/internal/core/domain"
)

type ChipInfo domain.Chip

type SlotInfo struct {
	Kind     string
	Position int
	Word     string
}

type GroupInfo struct {
	Index     int
	Completed bool
	Slots     []SlotInfo
}

// SessionInfo is what a client needs to render a validation session: the
// groups with their blanks, the pool of chips still to be placed, the step
// and, once complete, the outcome.
type SessionInfo struct {
	ID        string
	Step      string
	Outcome   string
	Attempt   uint32
	GroupSize int
	Groups    []GroupInfo
	Chips     []ChipInfo
	CreatedAt int64
	UpdatedAt int64
}

type BackupInfo domain.Backup

type BackupStatus struct {
	Fingerprint string
	Verified    bool
	Backup      *BackupInfo
}

func newSessionInfo(s *domain.ValidationSession) *SessionInfo {
	groups := make([]GroupInfo, 0, s.NumOfGroups())
	for i := 0; i < s.NumOfGroups(); i++ {
		slots, _ := s.Slots(i)
		slotsInfo := make([]SlotInfo, 0, len(slots))
		for _, slot := range slots {
			slotsInfo = append(slotsInfo, SlotInfo{
				Kind:     slot.Kind.String(),
				Position: slot.Position,
				Word:     slot.Word,
			})
		}
		groups = append(groups, GroupInfo{
			Index:     i,
			Completed: s.GroupCompleted(i),
			Slots:     slotsInfo,
		})
	}

	availableChips := s.AvailableChips()
	chips := make([]ChipInfo, 0, len(availableChips))
	for _, c := range availableChips {
		chips = append(chips, ChipInfo(c))
	}

	return &SessionInfo{
		ID:        s.ID,
		Step:      s.Step().String(),
		Outcome:   s.Outcome().String(),
		Attempt:   s.Attempt,
		GroupSize: s.GroupSize,
		Groups:    groups,
		Chips:     chips,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
