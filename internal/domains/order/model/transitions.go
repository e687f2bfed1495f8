package model

// =====================================================
// STATUS TRANSITION TABLE
// =====================================================
// The workflow is a strict state machine. Holds branch off PROCESSING and
// rejoin it on release; RTO branches off SHIPPED when the courier returns
// the parcel undelivered.
var statusTransitions = map[string][]string{
	OrderStatusPending:     {OrderStatusProcessing, OrderStatusOnHold, OrderStatusCancelled},
	OrderStatusProcessing:  {OrderStatusOnHold, OrderStatusReadyToShip, OrderStatusCancelled},
	OrderStatusOnHold:      {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusReadyToShip: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:     {OrderStatusDelivered, OrderStatusReturned, OrderStatusRTO},
	OrderStatusDelivered:   {OrderStatusReturned},
	OrderStatusCancelled:   {},
	OrderStatusReturned:    {},
	OrderStatusRTO:         {},
}

// StatusLabels give tracking-timeline display names for each status.
var StatusLabels = map[string]string{
	OrderStatusPending:     "Order Placed",
	OrderStatusProcessing:  "Processing",
	OrderStatusOnHold:      "On Hold",
	OrderStatusReadyToShip: "Ready to Ship",
	OrderStatusShipped:     "Shipped",
	OrderStatusDelivered:   "Delivered",
	OrderStatusCancelled:   "Cancelled",
	OrderStatusReturned:    "Returned",
	OrderStatusRTO:         "Returned to Origin",
}

// IsValidStatus checks membership in the status enum
func IsValidStatus(status string) bool {
	_, ok := statusTransitions[status]
	return ok
}

// CanTransition checks whether from -> to is allowed by the workflow
func CanTransition(from, to string) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from the given one
func AllowedTransitions(from string) []string {
	return statusTransitions[from]
}
