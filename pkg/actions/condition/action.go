// Package condition provides the condition evaluation workflow action. It
// computes a boolean result for later steps to reference; it does not alter
// workflow control flow.
package condition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/journeyd/journeyd/pkg/expression"
	"github.com/journeyd/journeyd/pkg/models"
	"github.com/journeyd/journeyd/pkg/protocol"
)

// Comparison operators for operand mode.
const (
	OpEquals      = "equals"
	OpNotEquals   = "not_equals"
	OpGreaterThan = "greater_than"
	OpLessThan    = "less_than"
	OpContains    = "contains"
	OpNotContains = "not_contains"
)

var (
	// ErrConditionConfigRequired is returned when neither an expression nor
	// an operand pair is configured.
	ErrConditionConfigRequired = errors.New("condition requires an expression or operand pair")
	// ErrConditionTypeInvalid is returned for an unknown comparison operator.
	ErrConditionTypeInvalid = errors.New("invalid condition type")
	// ErrOperandNotNumeric is returned when a numeric comparison receives a
	// value that cannot coerce to a number.
	ErrOperandNotNumeric = errors.New("operand is not numeric")
)

// Action evaluates either a sandboxed boolean expression or a two-operand
// comparison against the execution context.
type Action struct {
	ID             string
	Expression     string
	LeftOperand    string
	RightOperand   any
	ConditionType  string
	OutputVariable string

	engine *expression.Engine
}

// NewAction creates a condition action from configuration.
func NewAction(config map[string]any, engine *expression.Engine) (*Action, error) {
	actionID, _ := config["id"].(string)
	expr, _ := config["expression"].(string)
	leftOperand, _ := config["left_operand"].(string)
	rightOperand := config["right_operand"]
	conditionType, _ := config["condition_type"].(string)

	if expr == "" && leftOperand == "" {
		return nil, ErrConditionConfigRequired
	}

	if expr == "" {
		if conditionType == "" {
			conditionType = OpEquals
		}

		switch conditionType {
		case OpEquals, OpNotEquals, OpGreaterThan, OpLessThan, OpContains, OpNotContains:
		default:
			return nil, fmt.Errorf("unknown condition type %q: %w", conditionType, ErrConditionTypeInvalid)
		}
	}

	outputVariable, _ := config["output_variable"].(string)
	if outputVariable == "" {
		outputVariable = "conditionResult"
	}

	return &Action{
		ID:             actionID,
		Expression:     expr,
		LeftOperand:    leftOperand,
		RightOperand:   rightOperand,
		ConditionType:  conditionType,
		OutputVariable: outputVariable,
		engine:         engine,
	}, nil
}

// Execute evaluates the condition and returns the boolean result together
// with the resolved operand values.
func (a *Action) Execute(
	ctx context.Context,
	executionCtx models.ExecutionContext,
	logger *slog.Logger,
) (map[string]any, error) {
	logger = logger.With("module", "condition_action")

	env := executionCtx.Env()

	if a.Expression != "" {
		result, err := a.engine.EvaluateBool(a.Expression, env)
		if err != nil {
			return nil, fmt.Errorf("condition evaluation failed: %w", err)
		}

		logger.InfoContext(ctx, "Condition evaluated", "result", result)

		return map[string]any{
			"result":     result,
			"expression": a.Expression,
			protocol.ContextUpdatesKey: map[string]any{
				a.OutputVariable: result,
			},
		}, nil
	}

	leftValue := expression.Resolve(a.LeftOperand, env)
	rightValue := a.resolveRight(env)

	result, err := compare(a.ConditionType, leftValue, rightValue)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Condition evaluated",
		"condition_type", a.ConditionType, "result", result)

	return map[string]any{
		"result":      result,
		"left_value":  leftValue,
		"right_value": rightValue,
		protocol.ContextUpdatesKey: map[string]any{
			a.OutputVariable: result,
		},
	}, nil
}

// Validate checks the action configuration.
func (a *Action) Validate(_ context.Context) error {
	if a.Expression == "" && a.LeftOperand == "" {
		return ErrConditionConfigRequired
	}

	return nil
}

// resolveRight resolves a string right operand as an expression; any other
// type is a literal.
func (a *Action) resolveRight(env map[string]any) any {
	str, ok := a.RightOperand.(string)
	if !ok {
		return a.RightOperand
	}

	if value := expression.Resolve(str, env); value != nil {
		return value
	}

	return str
}

func compare(conditionType string, left, right any) (bool, error) {
	switch conditionType {
	case OpEquals:
		return strictEquals(left, right), nil
	case OpNotEquals:
		return !strictEquals(left, right), nil
	case OpGreaterThan, OpLessThan:
		leftNum, err := asNumber(left)
		if err != nil {
			return false, fmt.Errorf("left operand %v: %w", left, err)
		}

		rightNum, err := asNumber(right)
		if err != nil {
			return false, fmt.Errorf("right operand %v: %w", right, err)
		}

		if conditionType == OpGreaterThan {
			return leftNum > rightNum, nil
		}

		return leftNum < rightNum, nil
	case OpContains:
		return strings.Contains(asString(left), asString(right)), nil
	case OpNotContains:
		return !strings.Contains(asString(left), asString(right)), nil
	default:
		return false, fmt.Errorf("unknown condition type %q: %w", conditionType, ErrConditionTypeInvalid)
	}
}

// strictEquals compares without cross-type coercion: values of different
// kinds are never equal, except within the numeric family.
func strictEquals(left, right any) bool {
	leftNum, leftErr := numericValue(left)
	rightNum, rightErr := numericValue(right)

	if leftErr == nil && rightErr == nil {
		return leftNum == rightNum
	}

	if (leftErr == nil) != (rightErr == nil) {
		return false
	}

	return left == right
}

// numericValue accepts only values that already are numbers.
func numericValue(value any) (float64, error) {
	switch typed := value.(type) {
	case float64:
		return typed, nil
	case float32:
		return float64(typed), nil
	case int:
		return float64(typed), nil
	case int32:
		return float64(typed), nil
	case int64:
		return float64(typed), nil
	default:
		return 0, ErrOperandNotNumeric
	}
}

// asNumber coerces numbers and numeric strings.
func asNumber(value any) (float64, error) {
	if num, err := numericValue(value); err == nil {
		return num, nil
	}

	if str, ok := value.(string); ok {
		num, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return 0, ErrOperandNotNumeric
		}

		return num, nil
	}

	return 0, ErrOperandNotNumeric
}

func asString(value any) string {
	if value == nil {
		return ""
	}

	return fmt.Sprintf("%v", value)
}
