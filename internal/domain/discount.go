package domain

import "time"

// DiscountUsage marks that a student consumed a promotional discount in a
// category. One row per (student, category); UsedAt drives the cooldown.
type DiscountUsage struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"student_id"`
	Category  string    `json:"category"`
	UsedAt    time.Time `json:"used_at"`
}

// DiscountEvaluation is the read-only answer of the discount engine:
// whether the pair is eligible right now and who absorbs the cost.
type DiscountEvaluation struct {
	Eligible   bool             `json:"eligible"`
	Percentage int32            `json:"percentage"`
	AbsorbedBy DiscountAbsorber `json:"absorbed_by"`
}
