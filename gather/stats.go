package gather

import "time"

// DeriveView computes the projection of a gathering from its contribution
// set. It is a pure function: the same inputs yield the same view no
// matter what order the store returned the contributions in.
func DeriveView(g Gathering, contributions []Contribution, now time.Time) View {
	total := int64(0)
	for _, c := range contributions {
		total += c.Amount
	}

	v := View{
		Gathering:        g,
		CurrentAmount:    total,
		ContributorCount: len(contributions),
	}
	v.Status = deriveStatus(g, total, now)
	return v
}

// deriveStatus resolves the lifecycle status. A completed seed status is
// sticky and wins over everything else; an ends_at that fails to parse
// never triggers expiry.
func deriveStatus(g Gathering, currentAmount int64, now time.Time) string {
	if g.Status == StatusCompleted {
		return StatusCompleted
	}

	if currentAmount >= g.GoalAmount {
		return StatusCompleted
	}

	if endsAt, err := ParseTime(g.EndsAt); err == nil && now.After(endsAt) {
		return StatusExpired
	}

	return StatusActive
}
