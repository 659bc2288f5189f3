package valueobject

import "fmt"

// ScheduleType selects how a loan product's repayment plan is generated.
type ScheduleType struct {
	value string
}

const (
	scheduleTypeFixed   = "FIXED"
	scheduleTypeHarvest = "HARVEST"
	scheduleTypeCustom  = "CUSTOM"
)

var (
	// ScheduleTypeFixed produces equal-principal monthly installments.
	ScheduleTypeFixed = ScheduleType{value: scheduleTypeFixed}
	// ScheduleTypeHarvest aligns installments with expected harvest dates
	// plus the product's grace period.
	ScheduleTypeHarvest = ScheduleType{value: scheduleTypeHarvest}
	// ScheduleTypeCustom splits the principal across caller-supplied dates.
	ScheduleTypeCustom = ScheduleType{value: scheduleTypeCustom}
)

var validScheduleTypes = map[string]ScheduleType{
	scheduleTypeFixed:   ScheduleTypeFixed,
	scheduleTypeHarvest: ScheduleTypeHarvest,
	scheduleTypeCustom:  ScheduleTypeCustom,
}

// NewScheduleType creates a ScheduleType from a raw string.
func NewScheduleType(s string) (ScheduleType, error) {
	v, ok := validScheduleTypes[s]
	if !ok {
		return ScheduleType{}, fmt.Errorf("invalid schedule type: %q", s)
	}
	return v, nil
}

// String returns the string representation of the type.
func (t ScheduleType) String() string { return t.value }

// IsZero returns true when not initialised.
func (t ScheduleType) IsZero() bool { return t.value == "" }

// Equal returns true when both types match.
func (t ScheduleType) Equal(other ScheduleType) bool { return t.value == other.value }
