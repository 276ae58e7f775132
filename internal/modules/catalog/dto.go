package catalog

type CreateHotelRequest struct {
	Name               string `json:"name" validate:"required,max=255"`
	Address            string `json:"address" validate:"max=512"`
	CancellationPolicy string `json:"cancellation_policy"`
}

type CreateRoomRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	BasePrice   int64  `json:"base_price" validate:"gte=0"`
	Quantity    int    `json:"quantity" validate:"gte=0"`
	MaxAdults   int    `json:"max_adults" validate:"required,gte=1"`
	MaxChildren int    `json:"max_children" validate:"gte=0"`
}

type UpdateRoomRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	BasePrice   *int64  `json:"base_price,omitempty" validate:"omitempty,gte=0"`
	Quantity    *int    `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	MaxAdults   *int    `json:"max_adults,omitempty" validate:"omitempty,gte=1"`
	MaxChildren *int    `json:"max_children,omitempty" validate:"omitempty,gte=0"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type CreateServiceRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Price int64  `json:"price" validate:"gte=0"`
}
