package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type RuleKind string

const (
	RuleDateRange RuleKind = "date_range"
	RuleWeekend   RuleKind = "weekend"
)

type ModifierKind string

const (
	ModifierPercentage ModifierKind = "percentage"
	ModifierFixed      ModifierKind = "fixed"
)

var hundred = decimal.NewFromInt(100)

// Schedule decides on which calendar dates a rule applies.
type Schedule interface {
	Kind() RuleKind
	Matches(date time.Time) bool
}

// DateRangeSchedule applies on every date in [Start, End], both inclusive.
type DateRangeSchedule struct {
	Start time.Time
	End   time.Time
}

func (DateRangeSchedule) Kind() RuleKind { return RuleDateRange }

func (s DateRangeSchedule) Matches(date time.Time) bool {
	d := DateOf(date)
	return !d.Before(DateOf(s.Start)) && !d.After(DateOf(s.End))
}

// WeekendSchedule applies on every Saturday and Sunday.
type WeekendSchedule struct{}

func (WeekendSchedule) Kind() RuleKind { return RuleWeekend }

func (WeekendSchedule) Matches(date time.Time) bool { return IsWeekend(date) }

// NewSchedule builds the schedule variant for kind. Dates are ignored for weekend rules.
func NewSchedule(kind RuleKind, start, end *time.Time) (Schedule, error) {
	switch kind {
	case RuleDateRange:
		if start == nil || end == nil {
			return nil, &InvalidRuleError{Reason: "date_range rule requires start and end dates"}
		}
		s, e := DateOf(*start), DateOf(*end)
		if s.After(e) {
			return nil, &InvalidRuleError{Reason: "start date is after end date"}
		}
		return DateRangeSchedule{Start: s, End: e}, nil
	case RuleWeekend:
		return WeekendSchedule{}, nil
	default:
		return nil, &InvalidRuleError{Reason: fmt.Sprintf("unknown rule kind %q", kind)}
	}
}

type Modifier struct {
	Kind  ModifierKind
	Value decimal.Decimal
}

func NewModifier(kind ModifierKind, value decimal.Decimal) (Modifier, error) {
	switch kind {
	case ModifierPercentage:
	case ModifierFixed:
		if !value.IsInteger() {
			return Modifier{}, &InvalidRuleError{Reason: "fixed modifier must be a whole amount"}
		}
	default:
		return Modifier{}, &InvalidRuleError{Reason: fmt.Sprintf("unknown modifier kind %q", kind)}
	}
	return Modifier{Kind: kind, Value: value}, nil
}

// Apply transforms a running price. Percentage results are rounded half away
// from zero to a whole minor unit.
func (m Modifier) Apply(price int64) (int64, error) {
	p := decimal.NewFromInt(price)
	switch m.Kind {
	case ModifierPercentage:
		return p.Mul(hundred.Add(m.Value)).Div(hundred).Round(0).IntPart(), nil
	case ModifierFixed:
		return p.Add(m.Value).IntPart(), nil
	default:
		return 0, &InvalidRuleError{Reason: fmt.Sprintf("unknown modifier kind %q", m.Kind)}
	}
}

// PriceRule is the validated form of a special price rule.
type PriceRule struct {
	ID        int64
	Name      string
	RoomIDs   []int64
	Schedule  Schedule
	Modifier  Modifier
	Active    bool
	CreatedAt time.Time
}

func (r PriceRule) AppliesTo(roomID int64, date time.Time) bool {
	if !r.Active || r.Schedule == nil || !r.Schedule.Matches(date) {
		return false
	}
	for _, id := range r.RoomIDs {
		if id == roomID {
			return true
		}
	}
	return false
}

// SpecialPriceRule is the persisted, flat form of a PriceRule.
type SpecialPriceRule struct {
	ID            int64           `json:"id" gorm:"primaryKey"`
	Name          string          `json:"name" gorm:"size:255;not null"`
	Kind          RuleKind        `json:"kind" gorm:"size:16;not null"`
	StartDate     *time.Time      `json:"start_date,omitempty"`
	EndDate       *time.Time      `json:"end_date,omitempty"`
	ModifierKind  ModifierKind    `json:"modifier_kind" gorm:"size:16;not null"`
	ModifierValue decimal.Decimal `json:"modifier_value" gorm:"type:numeric(12,4);not null"`
	IsActive      bool            `json:"is_active" gorm:"not null;index"`
	CreatedAt     time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Rooms []SpecialPriceRuleRoom `json:"rooms,omitempty" gorm:"foreignKey:RuleID;constraint:OnDelete:CASCADE"`
}

type SpecialPriceRuleRoom struct {
	RuleID int64 `json:"rule_id" gorm:"primaryKey"`
	RoomID int64 `json:"room_id" gorm:"primaryKey;index"`
}

func (SpecialPriceRuleRoom) TableName() string {
	return "special_price_rule_rooms"
}

func (r SpecialPriceRule) RoomIDs() []int64 {
	ids := make([]int64, 0, len(r.Rooms))
	for _, rr := range r.Rooms {
		ids = append(ids, rr.RoomID)
	}
	return ids
}

// ToPriceRule validates the stored row and converts it.
func (r SpecialPriceRule) ToPriceRule() (PriceRule, error) {
	sched, err := NewSchedule(r.Kind, r.StartDate, r.EndDate)
	if err != nil {
		return PriceRule{}, withRuleID(err, r.ID)
	}
	mod, err := NewModifier(r.ModifierKind, r.ModifierValue)
	if err != nil {
		return PriceRule{}, withRuleID(err, r.ID)
	}
	ids := r.RoomIDs()
	if len(ids) == 0 {
		return PriceRule{}, &InvalidRuleError{RuleID: r.ID, Reason: "rule targets no rooms"}
	}
	return PriceRule{
		ID:        r.ID,
		Name:      r.Name,
		RoomIDs:   ids,
		Schedule:  sched,
		Modifier:  mod,
		Active:    r.IsActive,
		CreatedAt: r.CreatedAt,
	}, nil
}

func withRuleID(err error, id int64) error {
	if ire, ok := err.(*InvalidRuleError); ok {
		ire.RuleID = id
	}
	return err
}
