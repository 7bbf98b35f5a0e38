package models

const (
	OrderStatusPending          = "pending"
	OrderStatusConfirmed        = "confirmed"
	OrderStatusProcessing       = "processing"
	OrderStatusPrepared         = "prepared"
	OrderStatusShipped          = "shipped"
	OrderStatusTransit          = "transit"
	OrderStatusDelivery         = "delivery"
	OrderStatusDelivered        = "delivered"
	OrderStatusOutForDelivery   = "out_for_delivery"
	OrderStatusFailedAttempt    = "failed_attempt"
	OrderStatusReturnedToSender = "returned_to_sender"
	OrderStatusCancelled        = "cancelled"
	OrderStatusRefunded         = "refunded"
)

// OrderStatuses lists the accepted values in lifecycle order, followed by
// the exception branches.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusPrepared,
	OrderStatusShipped,
	OrderStatusTransit,
	OrderStatusDelivery,
	OrderStatusDelivered,
	OrderStatusOutForDelivery,
	OrderStatusFailedAttempt,
	OrderStatusReturnedToSender,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

func ValidOrderStatus(status string) bool {
	for _, s := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

const (
	PaymentStatusRequiresPayment = "requires_payment_method"
	PaymentStatusSucceeded       = "succeeded"
)
