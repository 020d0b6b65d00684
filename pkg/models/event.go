package models

import "time"

// Event is an inbound marketing/analytics event. Category is the coarse
// classification matched against trigger event types; the remaining typed
// fields are the ones trigger filters can constrain. Data carries whatever
// else the producer sent and is reachable from trigger conditions and
// variable mappings by dotted path.
type Event struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id" validate:"required"`
	Category       string         `json:"category"        validate:"required"`
	Name           string         `json:"name,omitempty"`
	ItemName       string         `json:"item_name,omitempty"`
	ItemCategory   string         `json:"item_category,omitempty"`
	ItemID         string         `json:"item_id,omitempty"`
	Value          *float64       `json:"value,omitempty"`
	UserID         string         `json:"user_id,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
	OccurredAt     time.Time      `json:"occurred_at"`
}

// AsMap flattens the event into a key-value view for path resolution.
// Typed fields take precedence over same-named keys in Data.
func (e *Event) AsMap() map[string]any {
	out := make(map[string]any, len(e.Data)+10)
	for k, v := range e.Data {
		out[k] = v
	}

	out["id"] = e.ID
	out["organization_id"] = e.OrganizationID
	out["category"] = e.Category
	out["name"] = e.Name
	out["item_name"] = e.ItemName
	out["item_category"] = e.ItemCategory
	out["item_id"] = e.ItemID
	out["user_id"] = e.UserID
	out["occurred_at"] = e.OccurredAt

	if e.Value != nil {
		out["value"] = *e.Value
	}

	return out
}
