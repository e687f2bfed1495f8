package model

// =====================================================
// CALLBACK CODES
// =====================================================
// Codes posted by the gateway to the callback URL. Only PAYMENT_SUCCESS
// triggers server-side verification; everything else is a failure redirect.
const (
	CodePaymentSuccess  = "PAYMENT_SUCCESS"
	CodePaymentError    = "PAYMENT_ERROR"
	CodePaymentDeclined = "PAYMENT_DECLINED"
	CodePaymentPending  = "PAYMENT_PENDING"
)

// =====================================================
// REDIRECT TARGETS
// =====================================================
// Paths appended to the storefront base URL after a callback.
const (
	RedirectConfirmationPath = "/order-confirmation/"
	RedirectCartFailedPath   = "/cart?error=payment_failed"
	RedirectCartErrorPath    = "/cart?error=server_error"
	RedirectErrorSlug        = "error"
)
