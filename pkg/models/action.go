package models

// ActionType discriminates the action variants of a workflow.
type ActionType string

const (
	ActionTypePushNotification ActionType = "push_notification"
	ActionTypeWhatsAppMessage  ActionType = "whatsapp_message"
	ActionTypeSMSMessage       ActionType = "sms_message"
	ActionTypePromoCode        ActionType = "promo_code"
	ActionTypeCondition        ActionType = "condition"
	ActionTypePersonalization  ActionType = "personalization"
)

// ActionItem is one step of a workflow's effect sequence. Configuration is
// variant-specific and parsed by the action's factory; messaging variants
// may carry a "variable_mappings" map of field name to expression string.
type ActionItem struct {
	ID            string         `json:"id"   validate:"required"`
	Type          ActionType     `json:"type" validate:"required"`
	Name          string         `json:"name" validate:"required"`
	Description   string         `json:"description,omitempty"`
	Configuration map[string]any `json:"configuration"`
}
