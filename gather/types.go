// Package gather holds the domain records of the money gathering app and
// the read-time derivations over them. Gatherings and contributions are
// immutable once stored; every aggregate is recomputed from the
// contribution set on each read.
package gather

// Gathering statuses. Active and completed can be stored as the seed
// status of a gathering; expired only ever appears on derived views.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusExpired   = "expired"
)

// Gathering is a fundraising campaign record. It is never rewritten after
// creation, so it carries no aggregate fields.
type Gathering struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	GoalAmount  int64  `json:"goal_amount"`
	Creator     string `json:"creator"`
	Status      string `json:"status"`
	EndsAt      string `json:"ends_at"`
	CreatedAt   string `json:"created_at"`
	ImageURL    string `json:"image_url"`
}

// Contribution is a single payment event linked to a gathering.
type Contribution struct {
	ID            string `json:"id"`
	GatheringID   string `json:"gathering_id"`
	Contributor   string `json:"contributor"`
	Amount        int64  `json:"amount"`
	Message       string `json:"message"`
	PaymentTxHash string `json:"payment_tx_hash"`
	CreatedAt     string `json:"created_at"`
}

// View is the read-time projection of a gathering. Status is the derived
// status, which may differ from the stored seed status. Views are never
// persisted.
type View struct {
	Gathering
	CurrentAmount    int64 `json:"current_amount"`
	ContributorCount int   `json:"contributor_count"`
}
