package httpapi

type CreateOrderRequest struct {
	UserID int64 `json:"userId"`
	CartID int64 `json:"cartId"`
}

type CancelOrderRequest struct {
	OrderID int64 `json:"orderId"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
