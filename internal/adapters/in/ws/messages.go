package ws

// Client to server message types.
const (
	MessageRegister             = "register"
	MessageSubscribeToOrder     = "subscribeToOrder"
	MessageUnsubscribeFromOrder = "unsubscribeFromOrder"
	MessageSubscribeToCompany   = "subscribeToCompany"
	MessageHeartbeat            = "heartbeat"
)

// Server to client replies, next to the realtime events.
const (
	EventAck   = "ack"
	EventError = "error"
)

// Message is what a client sends. Only the field matching Type is read.
type Message struct {
	Type      string `json:"type"`
	UserID    string `json:"userId,omitempty"`
	OrderID   string `json:"orderId,omitempty"`
	CompanyID string `json:"companyId,omitempty"`
}

type AckPayload struct {
	Action    string `json:"action"`
	OrderID   string `json:"orderId,omitempty"`
	CompanyID string `json:"companyId,omitempty"`
}

type ErrorPayload struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}
