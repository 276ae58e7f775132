package booking

type ServiceItem struct {
	ServiceID int64 `json:"service_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gte=1"`
}

type CreateBookingRequest struct {
	RoomID        int64         `json:"room_id" binding:"required,gt=0"`
	CheckIn       string        `json:"check_in" binding:"required"`
	CheckOut      string        `json:"check_out" binding:"required"`
	Adults        int           `json:"adults" binding:"required,gte=1"`
	Children      int           `json:"children" binding:"gte=0"`
	Services      []ServiceItem `json:"services" binding:"dive"`
	PaymentOption string        `json:"payment_option"`
	ContactName   string        `json:"contact_name"`
	ContactEmail  string        `json:"contact_email" binding:"omitempty,email"`
	ContactPhone  string        `json:"contact_phone"`
	Notes         string        `json:"notes"`
}

type RequestDepositRequest struct {
	PaymentOption string `json:"payment_option" binding:"required"`
}

type PayRequest struct {
	Method         string `json:"method" binding:"required"`
	ProofReference string `json:"proof_reference"`
}

type AddServiceRequest struct {
	ServiceItem
}

type SettleRequest struct {
	Method         string `json:"method" binding:"required"`
	ProofReference string `json:"proof_reference"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}
