package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"hotelbooking/internal/domain"
	"hotelbooking/internal/pkg/testdb"
	"hotelbooking/internal/repository"
)

type mockInvalidator struct {
	RuleSource
	mock.Mock
}

func (m *mockInvalidator) Invalidate(ctx context.Context, roomIDs ...int64) {
	m.Called(roomIDs)
}

type ServiceSuite struct {
	suite.Suite
	db   *gorm.DB
	svc  *Service
	room *domain.Room
	ctx  context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.db = testdb.Open(s.T())
	s.room = testdb.CreateRoom(s.T(), s.db, 1_000_000, 2)
	repo := NewRepository(s.db)
	s.svc = NewService(repo, repo, repository.NewRoomRepository(s.db))
	s.ctx = context.Background()
}

func (s *ServiceSuite) weekendRule(value string) *domain.SpecialPriceRule {
	rule, err := s.svc.UpsertRule(s.ctx, RuleInput{
		Name:          "Weekend " + value,
		RoomIDs:       []int64{s.room.ID},
		Kind:          domain.RuleWeekend,
		ModifierKind:  domain.ModifierPercentage,
		ModifierValue: decimal.RequireFromString(value),
	})
	s.Require().NoError(err)
	return rule
}

func (s *ServiceSuite) TestResolvePrice_WeekendThenFixed() {
	s.weekendRule("20")
	_, err := s.svc.UpsertRule(s.ctx, RuleInput{
		Name:          "Summer surcharge",
		RoomIDs:       []int64{s.room.ID},
		Kind:          domain.RuleDateRange,
		StartDate:     ptr(date("2024-05-01")),
		EndDate:       ptr(date("2024-08-31")),
		ModifierKind:  domain.ModifierFixed,
		ModifierValue: decimal.NewFromInt(50_000),
	})
	s.Require().NoError(err)

	night, err := s.svc.ResolvePrice(s.ctx, s.room.ID, date("2024-06-01"))
	s.Require().NoError(err)
	s.Equal(int64(1_250_000), night.Price)

	night, err = s.svc.ResolvePrice(s.ctx, s.room.ID, date("2024-06-03"))
	s.Require().NoError(err)
	s.Equal(int64(1_050_000), night.Price)
}

func (s *ServiceSuite) TestUpsertRule_RejectsMalformedRules() {
	_, err := s.svc.UpsertRule(s.ctx, RuleInput{
		Name: "No dates", RoomIDs: []int64{s.room.ID}, Kind: domain.RuleDateRange,
		StartDate: ptr(date("2024-05-01")), ModifierKind: domain.ModifierFixed, ModifierValue: decimal.NewFromInt(1),
	})
	s.ErrorIs(err, domain.ErrInvalidRule)

	_, err = s.svc.UpsertRule(s.ctx, RuleInput{
		Name: "Backwards", RoomIDs: []int64{s.room.ID}, Kind: domain.RuleDateRange,
		StartDate: ptr(date("2024-05-10")), EndDate: ptr(date("2024-05-01")),
		ModifierKind: domain.ModifierFixed, ModifierValue: decimal.NewFromInt(1),
	})
	s.ErrorIs(err, domain.ErrInvalidRule)

	_, err = s.svc.UpsertRule(s.ctx, RuleInput{
		Name: "Odd", RoomIDs: []int64{s.room.ID}, Kind: domain.RuleWeekend,
		ModifierKind: "multiply", ModifierValue: decimal.NewFromInt(2),
	})
	s.ErrorIs(err, domain.ErrInvalidRule)

	_, err = s.svc.UpsertRule(s.ctx, RuleInput{
		Name: "Nobody", Kind: domain.RuleWeekend, ModifierKind: domain.ModifierFixed, ModifierValue: decimal.NewFromInt(2),
	})
	s.ErrorIs(err, domain.ErrInvalidRule)

	_, err = s.svc.UpsertRule(s.ctx, RuleInput{
		Name: "Ghost room", RoomIDs: []int64{9999}, Kind: domain.RuleWeekend,
		ModifierKind: domain.ModifierFixed, ModifierValue: decimal.NewFromInt(2),
	})
	s.ErrorIs(err, domain.ErrValidation)
}

func (s *ServiceSuite) TestUpsertRule_WeekendDropsDates() {
	rule, err := s.svc.UpsertRule(s.ctx, RuleInput{
		Name: "Weekend", RoomIDs: []int64{s.room.ID, s.room.ID}, Kind: domain.RuleWeekend,
		StartDate: ptr(date("2024-05-01")), ModifierKind: domain.ModifierFixed, ModifierValue: decimal.NewFromInt(10),
	})
	s.Require().NoError(err)
	s.Nil(rule.StartDate)
	s.Equal([]int64{s.room.ID}, rule.RoomIDs())
}

func (s *ServiceSuite) TestUpdateKeepsCompoundingPosition() {
	first := s.weekendRule("20")
	s.Require().NoError(s.db.Model(first).Update("created_at", time.Now().Add(-time.Hour)).Error)
	_, err := s.svc.UpsertRule(s.ctx, RuleInput{
		Name: "Flat", RoomIDs: []int64{s.room.ID}, Kind: domain.RuleWeekend,
		ModifierKind: domain.ModifierFixed, ModifierValue: decimal.NewFromInt(50_000),
	})
	s.Require().NoError(err)

	_, err = s.svc.UpsertRule(s.ctx, RuleInput{
		ID: first.ID, Name: "Weekend 10", RoomIDs: []int64{s.room.ID}, Kind: domain.RuleWeekend,
		ModifierKind: domain.ModifierPercentage, ModifierValue: decimal.NewFromInt(10),
	})
	s.Require().NoError(err)

	night, err := s.svc.ResolvePrice(s.ctx, s.room.ID, date("2024-06-01"))
	s.Require().NoError(err)
	s.Equal(int64(1_150_000), night.Price)
	s.Require().Len(night.AppliedRules, 2)
	s.Equal(first.ID, night.AppliedRules[0])
}

func (s *ServiceSuite) TestDeactivateRule() {
	rule := s.weekendRule("20")
	s.Require().NoError(s.svc.DeactivateRule(s.ctx, rule.ID))

	night, err := s.svc.ResolvePrice(s.ctx, s.room.ID, date("2024-06-01"))
	s.Require().NoError(err)
	s.Equal(int64(1_000_000), night.Price)

	all, err := s.svc.ListRulesForRoom(s.ctx, s.room.ID)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.False(all[0].IsActive)

	s.ErrorIs(s.svc.DeactivateRule(s.ctx, 424242), domain.ErrNotFound)
}

func (s *ServiceSuite) TestQuoteStay() {
	s.weekendRule("20")

	q, err := s.svc.QuoteStay(s.ctx, s.room.ID, date("2024-05-31"), date("2024-06-03"))
	s.Require().NoError(err)
	s.Require().Len(q.Nights, 3)
	s.Equal(int64(1_000_000), q.Nights[0].Price)
	s.Equal(int64(1_200_000), q.Nights[1].Price)
	s.Equal(int64(1_200_000), q.Nights[2].Price)
	s.Equal(int64(3_400_000), q.Total)

	_, err = s.svc.QuoteStay(s.ctx, s.room.ID, date("2024-06-03"), date("2024-06-01"))
	s.ErrorIs(err, domain.ErrValidation)
}

func (s *ServiceSuite) TestResolvePrice_MalformedStoredRuleFails() {
	bad := domain.SpecialPriceRule{
		Name: "Broken", Kind: domain.RuleDateRange, ModifierKind: domain.ModifierFixed,
		ModifierValue: decimal.NewFromInt(5), IsActive: true,
		Rooms: []domain.SpecialPriceRuleRoom{{RoomID: s.room.ID}},
	}
	s.Require().NoError(s.db.Create(&bad).Error)

	_, err := s.svc.ResolvePrice(s.ctx, s.room.ID, date("2024-06-01"))
	s.ErrorIs(err, domain.ErrInvalidRule)
}

func TestService_InvalidatesCacheOnWrite(t *testing.T) {
	db := testdb.Open(t)
	roomA := testdb.CreateRoom(t, db, 1000, 1)
	roomB := testdb.CreateRoom(t, db, 1000, 1)
	repo := NewRepository(db)
	inv := &mockInvalidator{RuleSource: repo}
	svc := NewService(repo, inv, repository.NewRoomRepository(db))
	ctx := context.Background()

	inv.On("Invalidate", []int64{roomA.ID}).Once()
	rule, err := svc.UpsertRule(ctx, RuleInput{
		Name: "A", RoomIDs: []int64{roomA.ID}, Kind: domain.RuleWeekend,
		ModifierKind: domain.ModifierFixed, ModifierValue: decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	inv.On("Invalidate", []int64{roomA.ID, roomB.ID}).Once()
	_, err = svc.UpsertRule(ctx, RuleInput{
		ID: rule.ID, Name: "B", RoomIDs: []int64{roomB.ID}, Kind: domain.RuleWeekend,
		ModifierKind: domain.ModifierFixed, ModifierValue: decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	inv.On("Invalidate", []int64{roomB.ID}).Once()
	require.NoError(t, svc.DeactivateRule(ctx, rule.ID))

	inv.AssertExpectations(t)
	assert.Len(t, inv.Calls, 3)
}

func ptr[T any](v T) *T { return &v }
