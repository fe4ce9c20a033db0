package catalog

import (
	"time"
)

// BoardGame is the DB model for a catalog document.
// The id is an opaque string assigned on Add.
type BoardGame struct {
	ID          string `gorm:"primaryKey;size:64"`
	Name        string `gorm:"size:255;not null"`
	ReleaseYear int
	Publisher   string `gorm:"size:255"`
	MinPlayers  int
	MaxPlayers  int
	// BaseGame | Expansion
	Kind       string `gorm:"size:16;index"`
	BaseGameID string `gorm:"size:64;index"`
	Standalone bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (BoardGame) TableName() string { return "board_games" }

// ExpansionLink is one entry of a base game's expansions list. The autoincrement
// ID keeps insertion order; the unique pair makes appends set-unions.
type ExpansionLink struct {
	ID          uint   `gorm:"primaryKey"`
	GameID      string `gorm:"size:64;not null;uniqueIndex:idx_expansion_link"`
	ExpansionID string `gorm:"size:64;not null;uniqueIndex:idx_expansion_link;index"`
	Name        string `gorm:"size:255"`
}

func (ExpansionLink) TableName() string { return "board_game_expansions" }
