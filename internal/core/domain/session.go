package domain

import (
	"fmt"
	"sort"
	"time"
)

const (
	StepInitial ValidationStep = iota
	StepIncomplete
	StepComplete
)

const (
	OutcomeNone ValidationOutcome = iota
	OutcomeSuccess
	OutcomeFailure
)

const (
	SlotOrdered SlotKind = iota
	SlotEmpty
	SlotUnassigned
)

var (
	ErrSessionMissingID           = fmt.Errorf("missing session id")
	ErrSessionMissingRandomSource = fmt.Errorf("missing random source")
	ErrInvalidGroup               = fmt.Errorf("group index out of range")
	ErrUnknownChip                = fmt.Errorf("chip is not available for placement")
	ErrGroupNotCompleted          = fmt.Errorf("no word placed in group")

	stepString = map[ValidationStep]string{
		StepInitial:    "initial",
		StepIncomplete: "incomplete",
		StepComplete:   "complete",
	}
	outcomeString = map[ValidationOutcome]string{
		OutcomeNone:    "none",
		OutcomeSuccess: "success",
		OutcomeFailure: "failure",
	}
	slotKindString = map[SlotKind]string{
		SlotOrdered:    "ordered",
		SlotEmpty:      "empty",
		SlotUnassigned: "unassigned",
	}
)

// ValidationStep is derived from the number of completions of a session.
type ValidationStep int

func (s ValidationStep) String() string {
	return stepString[s]
}

// ValidationOutcome tells where a session should be routed once the user
// filled every blank.
type ValidationOutcome int

func (o ValidationOutcome) String() string {
	return outcomeString[o]
}

// Chip is one withheld word instance. It is identified by its absolute
// position in the phrase, so that the same word appearing twice in a phrase
// yields two distinct chips.
type Chip struct {
	Position int
	Word     string
}

// WordCompletion records that a chip has been placed into the blank of a
// group.
type WordCompletion struct {
	GroupIndex int
	Chip       Chip
}

type SlotKind int

func (k SlotKind) String() string {
	return slotKindString[k]
}

// Slot is what a group shows at one of its positions: an ordered (visible)
// word, an empty blank, or the word placed into the blank.
type Slot struct {
	Kind     SlotKind
	Position int
	Word     string
}

// ValidationSession is the state of one backup-verification attempt: the
// phrase split into groups, the word withheld from each group and the words
// the user placed into the blanks so far.
type ValidationSession struct {
	ID             string
	Phrase         RecoveryPhrase
	GroupSize      int
	MissingIndices []int
	Chips          []Chip
	Completions    []WordCompletion
	Attempt        uint32
	CreatedAt      int64
	UpdatedAt      int64
}

type NewValidationSessionArgs struct {
	ID        string
	Phrase    RecoveryPhrase
	GroupSize int
	Random    RandomSource
}

func (a NewValidationSessionArgs) validate() error {
	if len(a.ID) <= 0 {
		return ErrSessionMissingID
	}
	if a.Random == nil {
		return ErrSessionMissingRandomSource
	}
	if _, err := NewRecoveryPhrase(a.Phrase); err != nil {
		return err
	}
	if _, err := a.Phrase.Chunks(a.GroupSize); err != nil {
		return err
	}
	return nil
}

// NewValidationSession splits the phrase into groups, withholds one random
// word per group and returns the session with no completions.
func NewValidationSession(args NewValidationSessionArgs) (*ValidationSession, error) {
	if err := args.validate(); err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	s := &ValidationSession{
		ID:        args.ID,
		Phrase:    append(RecoveryPhrase{}, args.Phrase...),
		GroupSize: args.GroupSize,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.draw(args.Random)
	return s, nil
}

// NumOfGroups returns the number of word groups of the phrase.
func (s *ValidationSession) NumOfGroups() int {
	return len(s.Phrase) / s.GroupSize
}

// Chunks returns the groups of the phrase.
func (s *ValidationSession) Chunks() []Chunk {
	chunks, _ := s.Phrase.Chunks(s.GroupSize)
	return chunks
}

// MissingPosition returns the absolute position of the word withheld from the
// given group.
func (s *ValidationSession) MissingPosition(group int) (int, error) {
	if !s.isValidGroup(group) {
		return -1, ErrInvalidGroup
	}
	return group*s.GroupSize + s.MissingIndices[group], nil
}

// AvailableChips returns the withheld words not placed yet. The order is the
// one shuffled when the session was drawn and doesn't change between reads.
func (s *ValidationSession) AvailableChips() []Chip {
	chips := make([]Chip, 0, len(s.Chips)-len(s.Completions))
	for _, c := range s.Chips {
		if !s.isPlaced(c) {
			chips = append(chips, c)
		}
	}
	return chips
}

// Place puts the given chip into the blank of the given group. A word
// previously placed in the same group goes back among the available chips.
func (s *ValidationSession) Place(chip Chip, group int) error {
	if !s.isValidGroup(group) {
		return ErrInvalidGroup
	}
	if !s.isAvailable(chip) {
		return ErrUnknownChip
	}

	s.removeCompletion(group)
	s.Completions = append(s.Completions, WordCompletion{
		GroupIndex: group,
		Chip:       chip,
	})
	sort.SliceStable(s.Completions, func(i, j int) bool {
		return s.Completions[i].GroupIndex < s.Completions[j].GroupIndex
	})
	s.touch()
	return nil
}

// Unplace removes the word placed into the given group, if any, and makes it
// available again.
func (s *ValidationSession) Unplace(group int) error {
	if !s.isValidGroup(group) {
		return ErrInvalidGroup
	}
	if !s.removeCompletion(group) {
		return ErrGroupNotCompleted
	}
	s.touch()
	return nil
}

// GroupCompleted returns whether a word has been placed into the group.
func (s *ValidationSession) GroupCompleted(group int) bool {
	_, ok := s.completion(group)
	return ok
}

// Completion returns the chip placed into the given group, if any.
func (s *ValidationSession) Completion(group int) (Chip, bool) {
	c, ok := s.completion(group)
	if !ok {
		return Chip{}, false
	}
	return c.Chip, true
}

// Step returns the step of the session based on its completions.
func (s *ValidationSession) Step() ValidationStep {
	switch len(s.Completions) {
	case 0:
		return StepInitial
	case s.NumOfGroups():
		return StepComplete
	default:
		return StepIncomplete
	}
}

// IsValid returns whether every placed word matches the original word of the
// phrase at the withheld position. It's meaningful only once the session is
// complete, false is returned otherwise.
func (s *ValidationSession) IsValid() bool {
	if s.Step() != StepComplete {
		return false
	}
	for _, c := range s.Completions {
		pos := c.GroupIndex*s.GroupSize + s.MissingIndices[c.GroupIndex]
		if c.Chip.Word != s.Phrase[pos] {
			return false
		}
	}
	return true
}

// Outcome returns success or failure for a complete session, none otherwise.
func (s *ValidationSession) Outcome() ValidationOutcome {
	if s.Step() != StepComplete {
		return OutcomeNone
	}
	if s.IsValid() {
		return OutcomeSuccess
	}
	return OutcomeFailure
}

// Reset draws new missing words with the given random source and clears all
// completions.
func (s *ValidationSession) Reset(random RandomSource) error {
	if random == nil {
		return ErrSessionMissingRandomSource
	}
	s.draw(random)
	s.Attempt++
	s.touch()
	return nil
}

// Slots returns what the given group looks like: ordered words with their
// 1-based position in the phrase, plus the blank, either empty or showing the
// placed word.
func (s *ValidationSession) Slots(group int) ([]Slot, error) {
	if !s.isValidGroup(group) {
		return nil, ErrInvalidGroup
	}

	placed, hasPlaced := s.completion(group)
	start := group * s.GroupSize
	slots := make([]Slot, 0, s.GroupSize)
	for i := 0; i < s.GroupSize; i++ {
		pos := start + i
		if i != s.MissingIndices[group] {
			slots = append(slots, Slot{
				Kind: SlotOrdered, Position: pos + 1, Word: s.Phrase[pos],
			})
			continue
		}
		if hasPlaced {
			slots = append(slots, Slot{
				Kind: SlotUnassigned, Position: pos + 1, Word: placed.Chip.Word,
			})
			continue
		}
		slots = append(slots, Slot{Kind: SlotEmpty, Position: pos + 1})
	}
	return slots, nil
}

// Clone returns a deep copy of the session.
func (s *ValidationSession) Clone() *ValidationSession {
	clone := *s
	clone.Phrase = append(RecoveryPhrase{}, s.Phrase...)
	clone.MissingIndices = append([]int{}, s.MissingIndices...)
	clone.Chips = append([]Chip{}, s.Chips...)
	clone.Completions = append([]WordCompletion{}, s.Completions...)
	return &clone
}

func (s *ValidationSession) draw(random RandomSource) {
	numOfGroups := s.NumOfGroups()
	missing := make([]int, numOfGroups)
	chips := make([]Chip, 0, numOfGroups)
	for group := range missing {
		missing[group] = random.Intn(s.GroupSize)
		pos := group*s.GroupSize + missing[group]
		chips = append(chips, Chip{Position: pos, Word: s.Phrase[pos]})
	}
	random.Shuffle(len(chips), func(i, j int) {
		chips[i], chips[j] = chips[j], chips[i]
	})

	s.MissingIndices = missing
	s.Chips = chips
	s.Completions = nil
}

func (s *ValidationSession) isValidGroup(group int) bool {
	return group >= 0 && group < s.NumOfGroups()
}

func (s *ValidationSession) isAvailable(chip Chip) bool {
	for _, c := range s.Chips {
		if c == chip {
			return !s.isPlaced(c)
		}
	}
	return false
}

func (s *ValidationSession) isPlaced(chip Chip) bool {
	for _, c := range s.Completions {
		if c.Chip.Position == chip.Position {
			return true
		}
	}
	return false
}

func (s *ValidationSession) completion(group int) (WordCompletion, bool) {
	for _, c := range s.Completions {
		if c.GroupIndex == group {
			return c, true
		}
	}
	return WordCompletion{}, false
}

func (s *ValidationSession) removeCompletion(group int) bool {
	for i, c := range s.Completions {
		if c.GroupIndex == group {
			s.Completions = append(s.Completions[:i], s.Completions[i+1:]...)
			return true
		}
	}
	return false
}

func (s *ValidationSession) touch() {
	s.UpdatedAt = time.Now().Unix()
}
