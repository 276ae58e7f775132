package pricing

import (
	"sort"
	"time"

	"hotelbooking/internal/domain"
)

// NightPrice is the resolved price of one night with the rules that shaped it.
type NightPrice struct {
	Date         time.Time `json:"date"`
	BasePrice    int64     `json:"base_price"`
	Price        int64     `json:"price"`
	AppliedRules []int64   `json:"applied_rules,omitempty"`
}

// SortRules orders rules by creation time, then ID. This is the order in which
// matching rules compound.
func SortRules(rules []domain.PriceRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if !rules[i].CreatedAt.Equal(rules[j].CreatedAt) {
			return rules[i].CreatedAt.Before(rules[j].CreatedAt)
		}
		return rules[i].ID < rules[j].ID
	})
}

// Resolve applies every matching rule to the running price, in the order of
// rules (callers sort with SortRules). The result is floored at zero.
func Resolve(basePrice, roomID int64, date time.Time, rules []domain.PriceRule) (NightPrice, error) {
	night := NightPrice{Date: domain.DateOf(date), BasePrice: basePrice, Price: basePrice}
	for _, r := range rules {
		if !r.AppliesTo(roomID, night.Date) {
			continue
		}
		next, err := r.Modifier.Apply(night.Price)
		if err != nil {
			return NightPrice{}, withRuleID(err, r.ID)
		}
		night.Price = next
		night.AppliedRules = append(night.AppliedRules, r.ID)
	}
	if night.Price < 0 {
		night.Price = 0
	}
	return night, nil
}

func withRuleID(err error, id int64) error {
	if ire, ok := err.(*domain.InvalidRuleError); ok && ire.RuleID == 0 {
		ire.RuleID = id
	}
	return err
}
