package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mjacobhvac/fieldops/internal/dispatch/entity"
	"github.com/mjacobhvac/fieldops/internal/dispatch/repository"
	"github.com/mjacobhvac/fieldops/internal/dispatch/service"
	"github.com/mjacobhvac/fieldops/internal/dispatch/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupBookingTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	bookingSvc := service.NewBookingService(db, repos, zap.NewNop())
	bookingHandler := NewBookingHandler(bookingSvc, zap.NewNop())

	router := testutil.SetupRouter()
	router.POST("/api/v1/bookings", bookingHandler.CreateBooking)

	return router, db
}

func TestCreateBooking(t *testing.T) {
	router, db := setupBookingTest(t)

	w := testutil.DoRequest(router, "POST", "/api/v1/bookings", map[string]interface{}{
		"name":              "Jane Miller",
		"phone":             "412-555-0142",
		"email":             "jane@example.com",
		"preferred_date":    "2025-07-10",
		"preferred_time":    "morning",
		"issue_description": "AC not cooling upstairs",
	}, "")

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	if resp["success"] != true {
		t.Fatalf("Expected success=true, got %v", resp)
	}

	booking := resp["booking"].(map[string]interface{})
	if booking["status"] != entity.StatusPending {
		t.Errorf("Expected status pending, got %v", booking["status"])
	}
	if booking["priority"].(float64) != 2 {
		t.Errorf("Expected default priority 2, got %v", booking["priority"])
	}

	var count int64
	db.Model(&entity.ServiceRequest{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 service request, got %d", count)
	}
}

func TestCreateBookingMissingFields(t *testing.T) {
	router, _ := setupBookingTest(t)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing name", map[string]interface{}{
			"phone": "412-555-0142", "preferred_date": "2025-07-10", "issue_description": "no heat",
		}},
		{"missing phone", map[string]interface{}{
			"name": "Jane", "preferred_date": "2025-07-10", "issue_description": "no heat",
		}},
		{"missing preferred_date", map[string]interface{}{
			"name": "Jane", "phone": "412-555-0142", "issue_description": "no heat",
		}},
		{"missing issue_description", map[string]interface{}{
			"name": "Jane", "phone": "412-555-0142", "preferred_date": "2025-07-10",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := testutil.DoRequest(router, "POST", "/api/v1/bookings", tc.body, "")
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestCreateBookingInvalidDate(t *testing.T) {
	router, _ := setupBookingTest(t)

	w := testutil.DoRequest(router, "POST", "/api/v1/bookings", map[string]interface{}{
		"name":              "Jane Miller",
		"phone":             "412-555-0142",
		"preferred_date":    "07/10/2025",
		"issue_description": "AC not cooling",
	}, "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateBookingReusesCustomerByPhone(t *testing.T) {
	router, db := setupBookingTest(t)

	body := map[string]interface{}{
		"name":              "Jane Miller",
		"phone":             "412-555-0142",
		"preferred_date":    "2025-07-10",
		"issue_description": "AC not cooling",
	}
	if w := testutil.DoRequest(router, "POST", "/api/v1/bookings", body, ""); w.Code != http.StatusCreated {
		t.Fatalf("first booking: expected 201, got %d", w.Code)
	}

	// Same phone, different name: must reuse the existing customer.
	body["name"] = "J. Miller"
	body["issue_description"] = "Furnace making noise"
	if w := testutil.DoRequest(router, "POST", "/api/v1/bookings", body, ""); w.Code != http.StatusCreated {
		t.Fatalf("second booking: expected 201, got %d", w.Code)
	}

	var customerCount, requestCount int64
	db.Model(&entity.Customer{}).Count(&customerCount)
	db.Model(&entity.ServiceRequest{}).Count(&requestCount)
	if customerCount != 1 {
		t.Errorf("Expected 1 customer, got %d", customerCount)
	}
	if requestCount != 2 {
		t.Errorf("Expected 2 service requests, got %d", requestCount)
	}

	var customer entity.Customer
	db.First(&customer)
	if customer.Name != "Jane Miller" {
		t.Errorf("Expected original customer name kept, got %q", customer.Name)
	}
}
