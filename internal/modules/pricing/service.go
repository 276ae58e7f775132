package pricing

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"hotelbooking/internal/domain"
	"hotelbooking/internal/repository"
)

type invalidator interface {
	Invalidate(ctx context.Context, roomIDs ...int64)
}

type Service struct {
	repo   *Repository
	rules  RuleSource
	rooms  *repository.RoomRepository
	purger invalidator
}

// NewService resolves prices from rules, which may be a cache in front of repo.
func NewService(repo *Repository, rules RuleSource, rooms *repository.RoomRepository) *Service {
	s := &Service{repo: repo, rules: rules, rooms: rooms}
	if inv, ok := rules.(invalidator); ok {
		s.purger = inv
	}
	return s
}

type RuleInput struct {
	ID            int64
	Name          string
	RoomIDs       []int64
	Kind          domain.RuleKind
	StartDate     *time.Time
	EndDate       *time.Time
	ModifierKind  domain.ModifierKind
	ModifierValue decimal.Decimal
	Active        *bool
}

// UpsertRule validates and stores a rule. Malformed rules are rejected here so
// resolution never meets them.
func (s *Service) UpsertRule(ctx context.Context, in RuleInput) (*domain.SpecialPriceRule, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	roomIDs := dedupe(in.RoomIDs)
	if len(roomIDs) == 0 {
		return nil, &domain.InvalidRuleError{RuleID: in.ID, Reason: "rule must target at least one room"}
	}
	sched, err := domain.NewSchedule(in.Kind, in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	if _, err := domain.NewModifier(in.ModifierKind, in.ModifierValue); err != nil {
		return nil, err
	}
	n, err := s.repo.CountRooms(ctx, roomIDs)
	if err != nil {
		return nil, err
	}
	if int(n) != len(roomIDs) {
		return nil, domain.NewValidationError("room_ids", "references unknown rooms")
	}

	rule := &domain.SpecialPriceRule{IsActive: true}
	var previous []int64
	if in.ID != 0 {
		existing, err := s.repo.GetByID(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		rule = existing
		previous = existing.RoomIDs()
	}

	rule.Name = name
	rule.Kind = sched.Kind()
	rule.StartDate, rule.EndDate = nil, nil
	if dr, ok := sched.(domain.DateRangeSchedule); ok {
		start, end := dr.Start, dr.End
		rule.StartDate, rule.EndDate = &start, &end
	}
	rule.ModifierKind = in.ModifierKind
	rule.ModifierValue = in.ModifierValue
	if in.Active != nil {
		rule.IsActive = *in.Active
	}
	rule.Rooms = make([]domain.SpecialPriceRuleRoom, 0, len(roomIDs))
	for _, id := range roomIDs {
		rule.Rooms = append(rule.Rooms, domain.SpecialPriceRuleRoom{RoomID: id})
	}

	if err := s.repo.Save(ctx, rule); err != nil {
		return nil, err
	}
	s.invalidate(ctx, append(previous, roomIDs...))

	log.WithFields(log.Fields{
		"rule_id":  rule.ID,
		"kind":     rule.Kind,
		"modifier": rule.ModifierKind,
		"value":    rule.ModifierValue.String(),
		"rooms":    roomIDs,
	}).Info("special price rule saved")
	return rule, nil
}

func (s *Service) DeactivateRule(ctx context.Context, id int64) error {
	rule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.invalidate(ctx, rule.RoomIDs())
	log.WithField("rule_id", id).Info("special price rule deactivated")
	return nil
}

func (s *Service) GetRule(ctx context.Context, id int64) (*domain.SpecialPriceRule, error) {
	return s.repo.GetByID(ctx, id)
}

// ListRulesForRoom returns active and inactive rules targeting the room.
func (s *Service) ListRulesForRoom(ctx context.Context, roomID int64) ([]domain.SpecialPriceRule, error) {
	return s.repo.ListForRoom(ctx, roomID)
}

func (s *Service) ResolvePrice(ctx context.Context, roomID int64, date time.Time) (*NightPrice, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	rules, err := s.loadRules(ctx, roomID)
	if err != nil {
		return nil, err
	}
	night, err := Resolve(room.BasePrice, room.ID, date, rules)
	if err != nil {
		return nil, err
	}
	return &night, nil
}

// Quote is the per-night price breakdown of a stay.
type Quote struct {
	RoomID   int64        `json:"room_id"`
	CheckIn  time.Time    `json:"check_in"`
	CheckOut time.Time    `json:"check_out"`
	Nights   []NightPrice `json:"nights"`
	Total    int64        `json:"total"`
}

// QuoteStay prices every night in [checkIn, checkOut).
func (s *Service) QuoteStay(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (*Quote, error) {
	in, out := domain.DateOf(checkIn), domain.DateOf(checkOut)
	if !in.Before(out) {
		return nil, domain.NewValidationError("check_out", "must be after check_in")
	}
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	rules, err := s.loadRules(ctx, roomID)
	if err != nil {
		return nil, err
	}

	q := &Quote{RoomID: room.ID, CheckIn: in, CheckOut: out}
	for _, d := range domain.Nights(in, out) {
		night, err := Resolve(room.BasePrice, room.ID, d, rules)
		if err != nil {
			return nil, err
		}
		q.Nights = append(q.Nights, night)
		q.Total += night.Price
	}
	return q, nil
}

func (s *Service) loadRules(ctx context.Context, roomID int64) ([]domain.PriceRule, error) {
	rows, err := s.rules.ActiveRulesForRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	rules := make([]domain.PriceRule, 0, len(rows))
	for _, row := range rows {
		r, err := row.ToPriceRule()
		if err != nil {
			log.WithError(err).WithField("rule_id", row.ID).Error("stored special price rule is malformed")
			return nil, err
		}
		rules = append(rules, r)
	}
	SortRules(rules)
	return rules, nil
}

func (s *Service) invalidate(ctx context.Context, roomIDs []int64) {
	if s.purger != nil {
		s.purger.Invalidate(ctx, dedupe(roomIDs)...)
	}
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
