package models

// SlotAvailability — снимок занятости турнира, всегда выводится из реестра.
// Remaining никогда не отрицательный: значение прижимается к нулю.
type SlotAvailability struct {
	TournamentID int `json:"tournament_id"`
	Capacity     int `json:"capacity"`
	Filled       int `json:"filled"`
	Remaining    int `json:"remaining"`
}

// TournamentStats — разбивка заявок турнира по статусам для дашборда.
type TournamentStats struct {
	TournamentID   int  `json:"tournament_id"`
	Game           Game `json:"game"`
	Mode           Mode `json:"mode"`
	Capacity       int  `json:"capacity"`
	PendingCount   int  `json:"pending_count"`
	ApprovedCount  int  `json:"approved_count"`
	RejectedCount  int  `json:"rejected_count"`
	RemainingSlots int  `json:"remaining_slots"`
}

// DashboardStats — агрегат по всем турнирам каталога.
type DashboardStats struct {
	Tournaments   []TournamentStats `json:"tournaments"`
	TotalPending  int               `json:"total_pending"`
	TotalApproved int               `json:"total_approved"`
	TotalRejected int               `json:"total_rejected"`
}
