package pricing

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"hotelbooking/internal/domain"
)

// RuleSource loads the active rules targeting a room, ordered for resolution.
type RuleSource interface {
	ActiveRulesForRoom(ctx context.Context, roomID int64) ([]domain.SpecialPriceRule, error)
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.SpecialPriceRule, error) {
	var rule domain.SpecialPriceRule
	err := r.db.WithContext(ctx).Preload("Rooms").First(&rule, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("special price rule %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// Save creates or replaces the rule and its room targets in one transaction.
func (r *Repository) Save(ctx context.Context, rule *domain.SpecialPriceRule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rooms := rule.Rooms
		rule.Rooms = nil
		defer func() { rule.Rooms = rooms }()

		if rule.ID == 0 {
			if err := tx.Create(rule).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Save(rule).Error; err != nil {
				return err
			}
			if err := tx.Where("rule_id = ?", rule.ID).Delete(&domain.SpecialPriceRuleRoom{}).Error; err != nil {
				return err
			}
		}
		for i := range rooms {
			rooms[i].RuleID = rule.ID
		}
		return tx.Create(&rooms).Error
	})
}

func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	res := r.db.WithContext(ctx).Model(&domain.SpecialPriceRule{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("special price rule %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *Repository) ActiveRulesForRoom(ctx context.Context, roomID int64) ([]domain.SpecialPriceRule, error) {
	return r.rulesForRoom(ctx, roomID, true)
}

func (r *Repository) ListForRoom(ctx context.Context, roomID int64) ([]domain.SpecialPriceRule, error) {
	return r.rulesForRoom(ctx, roomID, false)
}

func (r *Repository) rulesForRoom(ctx context.Context, roomID int64, activeOnly bool) ([]domain.SpecialPriceRule, error) {
	q := r.db.WithContext(ctx).
		Preload("Rooms").
		Joins("JOIN special_price_rule_rooms ON special_price_rule_rooms.rule_id = special_price_rules.id").
		Where("special_price_rule_rooms.room_id = ?", roomID)
	if activeOnly {
		q = q.Where("special_price_rules.is_active = ?", true)
	}
	var rules []domain.SpecialPriceRule
	err := q.Order("special_price_rules.created_at asc, special_price_rules.id asc").Find(&rules).Error
	return rules, err
}

func (r *Repository) CountRooms(ctx context.Context, ids []int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Room{}).Where("id IN ?", ids).Count(&n).Error
	return n, err
}
