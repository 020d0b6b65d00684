package models

// ConditionOperator is the comparison applied by a trigger condition.
type ConditionOperator string

const (
	ConditionOperatorEquals      ConditionOperator = "equals"
	ConditionOperatorContains    ConditionOperator = "contains"
	ConditionOperatorGreaterThan ConditionOperator = "greater_than"
	ConditionOperatorLessThan    ConditionOperator = "less_than"
)

// TriggerConfig is the declarative predicate that gates whether a workflow
// executes for a given event: the event category must equal EventType, every
// set filter must match exactly, and every condition must evaluate true.
type TriggerConfig struct {
	EventType  string             `json:"event_type" validate:"required"`
	Filters    TriggerFilters     `json:"filters"`
	Conditions []TriggerCondition `json:"conditions,omitempty"`
}

// TriggerFilters holds the fixed set of exact-match filter fields. Nil
// pointers mean "no constraint"; a zero Value is a real constraint and is
// checked.
type TriggerFilters struct {
	EventName    *string  `json:"event_name,omitempty"`
	ItemName     *string  `json:"item_name,omitempty"`
	ItemCategory *string  `json:"item_category,omitempty"`
	ItemID       *string  `json:"item_id,omitempty"`
	Value        *float64 `json:"value,omitempty"`
	Category     *string  `json:"category,omitempty"`
}

// TriggerCondition compares the event field at a dotted path against a
// literal value. Missing intermediate keys resolve to nil.
type TriggerCondition struct {
	Field    string            `json:"field"    validate:"required"`
	Operator ConditionOperator `json:"operator" validate:"required,oneof=equals contains greater_than less_than"`
	Value    any               `json:"value"`
}
