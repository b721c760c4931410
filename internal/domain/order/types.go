package order

type Status string

const (
	StatusPending         Status = "PENDING"
	StatusProcessing      Status = "PROCESSING"
	StatusShipped         Status = "SHIPPED"
	StatusDelivered       Status = "DELIVERED"
	StatusCancelled       Status = "CANCELLED"
	StatusReturnRequested Status = "RETURN_REQUESTED"
	StatusReturned        Status = "RETURNED"
)

// Only forward edges plus the two explicit reversal edges are legal.
var allowedTransitions = map[Status][]Status{
	StatusPending:         {StatusProcessing, StatusCancelled},
	StatusProcessing:      {StatusShipped, StatusCancelled},
	StatusShipped:         {StatusDelivered},
	StatusDelivered:       {StatusReturnRequested},
	StatusReturnRequested: {StatusReturned},
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered,
		StatusCancelled, StatusReturnRequested, StatusReturned:
		return true
	default:
		return false
	}
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range allowedTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusCancelled, StatusReturned:
		return true
	default:
		return false
	}
}

// Cancellation is permitted only before the order has shipped.
func (s Status) IsCancellable() bool {
	return s == StatusPending || s == StatusProcessing
}

// Refunds apply to orders whose goods have already reached the customer.
func (s Status) IsRefundable() bool {
	return s == StatusDelivered || s == StatusReturned
}

type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "PENDING"
	PaymentPaid              PaymentStatus = "PAID"
	PaymentFailed            PaymentStatus = "FAILED"
	PaymentRefunded          PaymentStatus = "REFUNDED"
	PaymentPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
)

func (s PaymentStatus) String() string {
	return string(s)
}

type PaymentMethod string

const (
	PaymentMethodWallet         PaymentMethod = "WALLET"
	PaymentMethodCashOnDelivery PaymentMethod = "COD"
)

func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodWallet || m == PaymentMethodCashOnDelivery
}
