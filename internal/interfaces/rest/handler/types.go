package rest_handler

type genSeedResponse struct {
	Mnemonic []string `json:"mnemonic"`
}

type mnemonicRequest struct {
	Mnemonic string `json:"mnemonic"`
}

type placeWordRequest struct {
	Position int    `json:"position"`
	Word     string `json:"word"`
	Group    int    `json:"group"`
}

type unplaceWordRequest struct {
	Group int `json:"group"`
}

type chipResponse struct {
	Position int    `json:"position"`
	Word     string `json:"word"`
}

type slotResponse struct {
	Kind     string `json:"kind"`
	Position int    `json:"position"`
	Word     string `json:"word,omitempty"`
}

type groupResponse struct {
	Index     int            `json:"index"`
	Completed bool           `json:"completed"`
	Slots     []slotResponse `json:"slots"`
}

type sessionResponse struct {
	ID        string          `json:"id"`
	Step      string          `json:"step"`
	Outcome   string          `json:"outcome"`
	Attempt   uint32          `json:"attempt"`
	GroupSize int             `json:"group_size"`
	Groups    []groupResponse `json:"groups"`
	Chips     []chipResponse  `json:"chips"`
	CreatedAt int64           `json:"created_at"`
	UpdatedAt int64           `json:"updated_at"`
}

type backupResponse struct {
	Fingerprint    string `json:"fingerprint"`
	WordCount      int    `json:"word_count"`
	Verified       bool   `json:"verified"`
	Attempts       uint32 `json:"attempts"`
	FailedAttempts uint32 `json:"failed_attempts"`
	CreatedAt      int64  `json:"created_at"`
	LastAttemptAt  int64  `json:"last_attempt_at"`
	VerifiedAt     int64  `json:"verified_at"`
}

type backupStatusResponse struct {
	Fingerprint string          `json:"fingerprint"`
	Verified    bool            `json:"verified"`
	Backup      *backupResponse `json:"backup,omitempty"`
}

type listBackupsResponse struct {
	Backups []backupResponse `json:"backups"`
}

type eventMessage struct {
	Source      string `json:"source"`
	EventType   string `json:"event_type"`
	SessionID   string `json:"session_id,omitempty"`
	GroupIndex  *int   `json:"group_index,omitempty"`
	Step        string `json:"step,omitempty"`
	Outcome     string `json:"outcome,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Attempt     uint32 `json:"attempt"`
}
