package models

import "time"

// Game идентифицирует поддерживаемую игру.
type Game string

const (
	GameBGMI     Game = "bgmi"
	GameFreeFire Game = "freefire"
)

func (g Game) Valid() bool {
	switch g {
	case GameBGMI, GameFreeFire:
		return true
	}
	return false
}

// Mode определяет формат турнира и размер состава.
type Mode string

const (
	ModeSolo  Mode = "solo"
	ModeDuo   Mode = "duo"
	ModeSquad Mode = "squad"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeSolo, ModeDuo, ModeSquad:
		return true
	}
	return false
}

// RosterSize возвращает ожидаемое число участников заявки, включая лидера.
func (m Mode) RosterSize() int {
	switch m {
	case ModeSolo:
		return 1
	case ModeDuo:
		return 2
	case ModeSquad:
		return 4
	}
	return 0
}

// Tournament представляет одну конфигурацию каталога (игра × формат).
// Вместимость фиксируется при создании и не мутируется потоком регистраций.
type Tournament struct {
	ID          int       `json:"id" db:"id"`
	Game        Game      `json:"game" db:"game"`
	Mode        Mode      `json:"mode" db:"mode"`
	EntryFee    int       `json:"entry_fee" db:"entry_fee"`
	PrizeFirst  int       `json:"prize_first" db:"prize_first"`
	PrizeSecond int       `json:"prize_second" db:"prize_second"`
	PrizeThird  int       `json:"prize_third" db:"prize_third"`
	MaxCapacity int       `json:"max_capacity" db:"max_capacity"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
