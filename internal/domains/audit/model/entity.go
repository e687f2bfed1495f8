package model

import "time"

// =============================================================================
// SYSTEM LOG ENTITY
// =============================================================================

// Event types recorded in system_logs.
const (
	EventRTORisk             = "RTO_RISK"
	EventStatusOverride      = "STATUS_OVERRIDE"
	EventShipmentCreation    = "SHIPMENT_CREATION"
	EventLabelGeneration     = "LABEL_GENERATION"
	EventManifestGeneration  = "MANIFEST_GENERATION"
	EventPaymentReconcile    = "PAYMENT_RECONCILE"
	EventPaymentCallback     = "PAYMENT_CALLBACK"
	EventClientError         = "CLIENT_ERROR"
)

// Outcome statuses.
const (
	StatusSuccess = "SUCCESS"
	StatusFailure = "FAILURE"
)

// SystemLog is one audit record. RequestData and ResponseData hold raw JSON
// payloads so the original exchange can be replayed during an investigation.
type SystemLog struct {
	ID           int64                  `json:"id" db:"id"`
	EventType    string                 `json:"event_type" db:"event_type"`
	Status       string                 `json:"status" db:"status"`
	Message      string                 `json:"message" db:"message"`
	RequestData  map[string]interface{} `json:"request_data,omitempty" db:"request_data"`
	ResponseData map[string]interface{} `json:"response_data,omitempty" db:"response_data"`
	URL          string                 `json:"url,omitempty" db:"url"`
	UserAgent    string                 `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt    time.Time              `json:"created_at" db:"created_at"`
}
