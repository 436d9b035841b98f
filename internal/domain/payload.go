package domain

// Webhook actions accepted on the sync endpoint
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionSync   = "sync"
	ActionDelete = "delete"
)

// WebhookPayload is the batch payload delivered to the sync endpoint. It is a
// tagged union on Action: delete carries ProductIDs, everything else Products.
type WebhookPayload struct {
	Action     string    `json:"action"`
	ProductIDs []int64   `json:"productIds,omitempty"`
	Products   []Product `json:"products,omitempty"`
}

// IsDeletion reports whether the payload is a deletion directive.
func (p WebhookPayload) IsDeletion() bool {
	return p.Action == ActionDelete
}

// Validate checks the action tag and that the matching list is present.
func (p WebhookPayload) Validate() string {
	switch p.Action {
	case ActionDelete:
		if len(p.ProductIDs) == 0 {
			return "delete payload requires productIds"
		}
	case ActionCreate, ActionUpdate, ActionSync:
		if len(p.Products) == 0 {
			return "payload requires products"
		}
	default:
		return "unknown action"
	}
	return ""
}
