package main

type mnemonicRequest struct {
	Mnemonic string `json:"mnemonic,omitempty"`
}

type placeWordRequest struct {
	Position int    `json:"position"`
	Word     string `json:"word"`
	Group    int    `json:"group"`
}

type unplaceWordRequest struct {
	Group int `json:"group"`
}

type genSeedReply struct {
	Mnemonic []string `json:"mnemonic"`
}

type chip struct {
	Position int    `json:"position"`
	Word     string `json:"word"`
}

type slot struct {
	Kind     string `json:"kind"`
	Position int    `json:"position"`
	Word     string `json:"word,omitempty"`
}

type group struct {
	Index     int    `json:"index"`
	Completed bool   `json:"completed"`
	Slots     []slot `json:"slots"`
}

type sessionReply struct {
	ID        string  `json:"id"`
	Step      string  `json:"step"`
	Outcome   string  `json:"outcome"`
	Attempt   uint32  `json:"attempt"`
	GroupSize int     `json:"group_size"`
	Groups    []group `json:"groups"`
	Chips     []chip  `json:"chips"`
	CreatedAt int64   `json:"created_at"`
	UpdatedAt int64   `json:"updated_at"`
}

func (s sessionReply) currentGroup() int {
	for _, g := range s.Groups {
		if !g.Completed {
			return g.Index
		}
	}
	return -1
}

type backupReply struct {
	Fingerprint    string `json:"fingerprint"`
	WordCount      int    `json:"word_count"`
	Verified       bool   `json:"verified"`
	Attempts       uint32 `json:"attempts"`
	FailedAttempts uint32 `json:"failed_attempts"`
	CreatedAt      int64  `json:"created_at"`
	LastAttemptAt  int64  `json:"last_attempt_at"`
	VerifiedAt     int64  `json:"verified_at"`
}

type backupStatusReply struct {
	Fingerprint string       `json:"fingerprint"`
	Verified    bool         `json:"verified"`
	Backup      *backupReply `json:"backup,omitempty"`
}

type listBackupsReply struct {
	Backups []backupReply `json:"backups"`
}
