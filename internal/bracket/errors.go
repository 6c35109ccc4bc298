package bracket

import (
	"errors"
	"fmt"
)

// Rule identifies which validation rule a candidate order violated.
type Rule string

const (
	RuleQuantity        Rule = "quantity"
	RuleEntryPrice      Rule = "entry_price"
	RuleStopLoss        Rule = "stop_loss"
	RuleTakeProfitPrice Rule = "take_profit_price"
	RuleLevelCount      Rule = "level_count"
	RuleLevelQuantity   Rule = "level_quantity"
	RuleLevelPrice      Rule = "level_price"
	RuleQuantityBudget  Rule = "quantity_budget"
	RuleLevelOrdering   Rule = "level_ordering"
)

// ValidationError is a client-caused rejection of a bracket order spec.
// Level is the 1-indexed take-profit level at fault, or 0 when the rule
// is not level specific.
type ValidationError struct {
	Rule    Rule
	Level   int
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func violation(rule Rule, format string, args ...any) *ValidationError {
	return &ValidationError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

func levelViolation(rule Rule, level int, format string, args ...any) *ValidationError {
	return &ValidationError{Rule: rule, Level: level, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrNotFound is returned when no order exists for the requested id. By
// default the store also returns it for orders that exist but are no
// longer editable, matching the API's historical behavior of conflating
// the two cases into a 404.
var ErrNotFound = errors.New("bracket order not found")

// ErrImmutableStatus is returned instead of ErrNotFound for orders that
// exist but are past the editable window, when the store is constructed
// with StrictStatusErrors.
var ErrImmutableStatus = errors.New("bracket order is not pending and cannot be updated")
