package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nplusone-backend/internal/domains/logistics/model"
)

func decodeEnvelope(t *testing.T, r *http.Request) map[string]interface{} {
	t.Helper()
	var body struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body.Data
}

func newTestClient(serverURL string) *Client {
	return NewClient(&Config{
		BaseURL:     serverURL,
		AccessToken: "token",
		SecretKey:   "secret",
		PickupID:    "19129",
	})
}

func TestCreateShipment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/order/add.json", r.URL.Path)

		data := decodeEnvelope(t, r)
		assert.Equal(t, "token", data["access_token"])
		assert.Equal(t, "secret", data["secret_key"])
		assert.Equal(t, "19129", data["pickup_address_id"])

		shipments := data["shipments"].([]interface{})
		shipment := shipments[0].(map[string]interface{})
		assert.Equal(t, "ORD123", shipment["order"])
		assert.Equal(t, "560038", shipment["pin"])
		assert.Equal(t, "prepaid", shipment["payment_mode"])

		products := shipment["products"].([]interface{})
		product := products[0].(map[string]interface{})
		assert.Equal(t, "Linen Kurta", product["p_name"])
		assert.Equal(t, "2", product["p_qty"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "success",
			"data": map[string]interface{}{
				"1": map[string]interface{}{
					"status":        "success",
					"waybill":       "AWB00042",
					"refnum":        "ORD123",
					"logistic_id":   "3",
					"logistic_name": "Delhivery",
				},
			},
		})
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).CreateShipment(context.Background(), &model.ShipmentRequest{
		OrderID:       "ORD123",
		CustomerName:  "Asha Verma",
		CustomerPhone: "9876543210",
		AddressLine1:  "14 MG Road",
		City:          "Bengaluru",
		State:         "Karnataka",
		Pincode:       "560038",
		PaymentMode:   "prepaid",
		CODAmount:     "0",
		InvoiceValue:  "2598.00",
		Products: []model.ShipmentProduct{
			{Name: "Linen Kurta", SKU: "prod-1-M", Quantity: 2, Price: "1299.00"},
		},
		Weight: 0.5,
	})
	require.NoError(t, err)

	assert.Equal(t, "AWB00042", resp.WaybillNumber)
	assert.Equal(t, "Delhivery", resp.LogisticName)
}

func TestCreateShipment_RowFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "success",
			"data": map[string]interface{}{
				"1": map[string]interface{}{
					"status": "error",
					"remark": "pincode not serviceable",
				},
			},
		})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CreateShipment(context.Background(), &model.ShipmentRequest{OrderID: "ORD123"})

	var logErr *model.LogisticsError
	require.ErrorAs(t, err, &logErr)
	assert.Equal(t, model.ErrCodeBookingRejected, logErr.Code)
	assert.Contains(t, logErr.Message, "pincode not serviceable")
}

func TestTrack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/order/track.json", r.URL.Path)
		data := decodeEnvelope(t, r)
		assert.Equal(t, "AWB00042", data["awb_number_list"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "success",
			"data": map[string]interface{}{
				"AWB00042": map[string]interface{}{
					"current_status":         "In Transit",
					"expected_delivery_date": "30-08-2026",
					"scan_detail": []map[string]interface{}{
						{"status": "Picked Up", "location": "Bengaluru", "datetime": "28-08-2026 10:00"},
					},
				},
			},
		})
	}))
	defer server.Close()

	results, err := newTestClient(server.URL).Track(context.Background(), []string{"AWB00042"})
	require.NoError(t, err)

	result := results["AWB00042"]
	require.NotNil(t, result)
	assert.Equal(t, "In Transit", result.CurrentStatus)
	require.Len(t, result.Scans, 1)
	assert.Equal(t, "Picked Up", result.Scans[0].Status)
}

func TestCheckPincode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pincode/check.json", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "success",
			"data": map[string]interface{}{
				"pincode":    "560038",
				"city_name":  "Bengaluru",
				"state_name": "Karnataka",
				"prepaid":    "Y",
				"cod":        "N",
			},
		})
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).CheckPincode(context.Background(), "560038")
	require.NoError(t, err)

	assert.True(t, result.Serviceable)
	assert.False(t, result.CODAllowed)
	assert.Equal(t, "Bengaluru", result.City)
}

func TestCarrierErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "error",
			"message": "invalid credentials",
		})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Track(context.Background(), []string{"AWB1"})

	var logErr *model.LogisticsError
	require.ErrorAs(t, err, &logErr)
	assert.Contains(t, logErr.Message, "invalid credentials")
}
