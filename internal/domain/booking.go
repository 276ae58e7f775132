package domain

import "time"

type BookingStatus string

const (
	BookingPending          BookingStatus = "pending"
	BookingPendingDeposit   BookingStatus = "pending_deposit"
	BookingAwaitingApproval BookingStatus = "awaiting_approval"
	BookingConfirmed        BookingStatus = "confirmed"
	BookingCompleted        BookingStatus = "completed"
	BookingCancelled        BookingStatus = "cancelled"
)

// OccupyingStatuses are the booking statuses that hold a room unit.
var OccupyingStatuses = []BookingStatus{
	BookingPendingDeposit,
	BookingAwaitingApproval,
	BookingConfirmed,
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "unpaid"
	PaymentAwaitingProof PaymentStatus = "awaiting_verification"
	PaymentPaid          PaymentStatus = "paid"
	PaymentOutstanding   PaymentStatus = "outstanding"
	PaymentRefunded      PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	MethodWallet       PaymentMethod = "wallet"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodMixed        PaymentMethod = "mixed"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodWallet, MethodBankTransfer, MethodMixed:
		return true
	}
	return false
}

type PaymentOption string

const (
	OptionUseBonus    PaymentOption = "use_bonus"
	OptionUseMainOnly PaymentOption = "use_main_only"
)

func (o PaymentOption) Valid() bool {
	return o == OptionUseBonus || o == OptionUseMainOnly
}

type Booking struct {
	ID      int64 `json:"id" gorm:"primaryKey"`
	UserID  int64 `json:"user_id" gorm:"not null;index"`
	HotelID int64 `json:"hotel_id" gorm:"not null;index"`
	RoomID  int64 `json:"room_id" gorm:"not null;index:idx_bookings_room_dates"`

	CheckIn        time.Time  `json:"check_in" gorm:"not null;index:idx_bookings_room_dates"`
	CheckOut       time.Time  `json:"check_out" gorm:"not null;index:idx_bookings_room_dates"`
	ActualCheckIn  *time.Time `json:"actual_check_in,omitempty"`
	ActualCheckOut *time.Time `json:"actual_check_out,omitempty"`
	Adults         int        `json:"adults" gorm:"not null"`
	Children       int        `json:"children" gorm:"not null"`

	RoomPrice      int64  `json:"room_price" gorm:"not null"`
	ServicePrice   int64  `json:"service_price" gorm:"not null"`
	TotalPrice     int64  `json:"total_price" gorm:"not null"`
	EstimatedPrice int64  `json:"estimated_price" gorm:"not null"`
	FinalPrice     *int64 `json:"final_price,omitempty"`

	PaidFromWallet    int64 `json:"paid_from_wallet" gorm:"not null"`
	PaidFromBonus     int64 `json:"paid_from_bonus" gorm:"not null"`
	PaidExternal      int64 `json:"paid_external" gorm:"not null"`
	PaidOnSettlement  int64 `json:"paid_on_settlement" gorm:"not null"`
	RefundedAmount    int64 `json:"refunded_amount" gorm:"not null"`
	OutstandingAmount int64 `json:"outstanding_amount" gorm:"not null"`

	Status         BookingStatus `json:"status" gorm:"size:32;not null;index:idx_bookings_room_dates"`
	PaymentStatus  PaymentStatus `json:"payment_status" gorm:"size:32;not null"`
	PaymentMethod  PaymentMethod `json:"payment_method,omitempty" gorm:"size:32"`
	PaymentOption  PaymentOption `json:"payment_option,omitempty" gorm:"size:32"`
	ProofReference string        `json:"proof_reference,omitempty" gorm:"size:512"`

	ContactName  string `json:"contact_name,omitempty" gorm:"size:255"`
	ContactEmail string `json:"contact_email,omitempty" gorm:"size:255"`
	ContactPhone string `json:"contact_phone,omitempty" gorm:"size:32"`
	Notes        string `json:"notes,omitempty" gorm:"type:text"`

	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty" gorm:"type:text"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	Services []BookingService `json:"services,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
}

// PaidTotal is everything the guest has paid toward the booking so far, net of refunds.
func (b *Booking) PaidTotal() int64 {
	return b.PaidFromWallet + b.PaidFromBonus + b.PaidExternal + b.PaidOnSettlement - b.RefundedAmount
}

// BookingService is an add-on attached to a booking with its price snapshot.
type BookingService struct {
	ID                 int64     `json:"id" gorm:"primaryKey"`
	BookingID          int64     `json:"booking_id" gorm:"not null;index"`
	ServiceID          int64     `json:"service_id" gorm:"not null"`
	Name               string    `json:"name" gorm:"size:255"`
	Quantity           int       `json:"quantity" gorm:"not null;check:quantity >= 1"`
	UnitPrice          int64     `json:"unit_price" gorm:"not null"`
	AddedAfterCreation bool      `json:"added_after_creation" gorm:"not null"`
	CreatedAt          time.Time `json:"created_at"`
}

func (s BookingService) Total() int64 {
	return s.UnitPrice * int64(s.Quantity)
}
