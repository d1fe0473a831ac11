package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mjacobhvac/fieldops/internal/dispatch/entity"
	"github.com/mjacobhvac/fieldops/internal/dispatch/repository"
	"github.com/mjacobhvac/fieldops/internal/dispatch/service"
	"github.com/mjacobhvac/fieldops/internal/dispatch/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDispatchTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	dispatchSvc := service.NewDispatchService(repos, zap.NewNop())
	statsSvc := service.NewStatsService(db)
	techSvc := service.NewTechnicianService(repos.Technician)

	dispatchHandler := NewDispatchHandler(dispatchSvc, statsSvc, zap.NewNop())
	techHandler := NewTechnicianHandler(techSvc, zap.NewNop())

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1/dispatch", "dispatcher")
	api.GET("/bookings", dispatchHandler.ListBookings)
	api.GET("/technicians", techHandler.ListTechnicians)
	api.GET("/stats", dispatchHandler.GetStats)
	api.PUT("/bookings/:id/assign", dispatchHandler.AssignTechnician)
	api.PUT("/bookings/:id/status", dispatchHandler.UpdateStatus)
	api.PUT("/bookings/:id", dispatchHandler.UpdateDetails)

	return router, db
}

func dateP(s string) *time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return &d
}

func TestAssignTechnician(t *testing.T) {
	router, db := setupDispatchTest(t)
	token := testutil.DispatcherToken()

	testutil.SeedCustomer(t, db, "cust-001", "Jane Miller", "412-555-0142")
	testutil.SeedTechnician(t, db, "tech-001", "Mike Ross")
	testutil.SeedRequest(t, db, &entity.ServiceRequest{
		ID:               "req-001",
		CustomerID:       "cust-001",
		PreferredDate:    dateP("2025-07-10"),
		IssueDescription: "AC not cooling",
	})

	w := testutil.DoRequest(router, "PUT", "/api/v1/dispatch/bookings/req-001/assign", map[string]interface{}{
		"tech_id":        "tech-001",
		"scheduled_date": "2025-07-11",
		"scheduled_time": "09:00",
	}, token)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	booking := resp["booking"].(map[string]interface{})
	if booking["status"] != entity.StatusScheduled {
		t.Errorf("Expected status scheduled, got %v", booking["status"])
	}
	if booking["assigned_tech_id"] != "tech-001" {
		t.Errorf("Expected assigned_tech_id tech-001, got %v", booking["assigned_tech_id"])
	}

	// The mutation must bump updated_at past created_at.
	created, err := time.Parse(time.RFC3339Nano, booking["created_at"].(string))
	if err != nil {
		t.Fatalf("parse created_at: %v", err)
	}
	updated, err := time.Parse(time.RFC3339Nano, booking["updated_at"].(string))
	if err != nil {
		t.Fatalf("parse updated_at: %v", err)
	}
	if updated.Before(created) {
		t.Errorf("Expected updated_at >= created_at, got %v < %v", updated, created)
	}

	// The board must now surface it under the scheduled filter.
	w = testutil.DoRequest(router, "GET", "/api/v1/dispatch/bookings?status=scheduled", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	resp = testutil.ParseResponse(w)
	if resp["count"].(float64) != 1 {
		t.Errorf("Expected 1 scheduled booking, got %v", resp["count"])
	}

	// Assignment is recorded in the activity log.
	logs, err := repository.NewActivityLogRepository(db).FindByEntity(context.Background(), "service_request", "req-001")
	if err != nil {
		t.Fatalf("read activity log: %v", err)
	}
	assigns := 0
	for _, l := range logs {
		if l.Action == "assign_tech" {
			assigns++
		}
	}
	if assigns != 1 {
		t.Errorf("Expected 1 assign_tech activity log, got %d", assigns)
	}
}

func TestAssignUnknownTechnician(t *testing.T) {
	router, db := setupDispatchTest(t)

	testutil.SeedCustomer(t, db, "cust-001", "Jane Miller", "412-555-0142")
	testutil.SeedRequest(t, db, &entity.ServiceRequest{ID: "req-001", CustomerID: "cust-001"})

	w := testutil.DoRequest(router, "PUT", "/api/v1/dispatch/bookings/req-001/assign", map[string]interface{}{
		"tech_id":        "tech-ghost",
		"scheduled_date": "2025-07-11",
		"scheduled_time": "09:00",
	}, testutil.DispatcherToken())

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d: %s", w.Code, w.Body.String())
	}

	var req entity.ServiceRequest
	db.First(&req, "id = ?", "req-001")
	if req.Status != entity.StatusPending || req.AssignedTechID != nil {
		t.Errorf("Expected request unchanged, got status=%s tech=%v", req.Status, req.AssignedTechID)
	}
}

func TestAssignTechnicianNotFound(t *testing.T) {
	router, _ := setupDispatchTest(t)

	w := testutil.DoRequest(router, "PUT", "/api/v1/dispatch/bookings/missing/assign", map[string]interface{}{
		"tech_id":        "tech-001",
		"scheduled_date": "2025-07-11",
		"scheduled_time": "09:00",
	}, testutil.DispatcherToken())

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAssignTechnicianValidation(t *testing.T) {
	router, db := setupDispatchTest(t)
	token := testutil.DispatcherToken()

	testutil.SeedCustomer(t, db, "cust-001", "Jane Miller", "412-555-0142")
	testutil.SeedRequest(t, db, &entity.ServiceRequest{ID: "req-001", CustomerID: "cust-001"})

	// Missing scheduled_time
	w := testutil.DoRequest(router, "PUT", "/api/v1/dispatch/bookings/req-001/assign", map[string]interface{}{
		"tech_id":        "tech-001",
		"scheduled_date": "2025-07-11",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing field: expected 400, got %d", w.Code)
	}

	// Malformed date
	w = testutil.DoRequest(router, "PUT", "/api/v1/dispatch/bookings/req-001/assign", map[string]interface{}{
		"tech_id":        "tech-001",
		"scheduled_date": "July 11",
		"scheduled_time": "09:00",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad date: expected 400, got %d", w.Code)
	}

	// Record must be untouched after rejected requests.
	var req entity.ServiceRequest
	db.First(&req, "id = ?", "req-001")
	if req.Status != entity.StatusPending || req.AssignedTechID != nil {
		t.Errorf("Expected request unchanged, got status=%s tech=%v", req.Status, req.AssignedTechID)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	router, db := setupDispatchTest(t)

	testutil.SeedCustomer(t, db, "cust-001", "Jane Miller", "412-555-0142")
	testutil.SeedRequest(t, db, &entity.ServiceRequest{ID: "req-001", CustomerID: "cust-001"})

	w := testutil.DoRequest(router, "PUT", "/api/v1/dispatch/bookings/req-001/status", map[string]interface{}{
		"status": "paused",
	}, testutil.DispatcherToken())

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var req entity.ServiceRequest
	db.First(&req, "id = ?", "req-001")
	if req.Status != entity.StatusPending {
		t.Errorf("Expected status unchanged (pending), got %s", req.Status)
	}
}

func TestUpdateStatus(t *testing.T) {
	router, db := setupDispatchTest(t)

	testutil.SeedCustomer(t, db, "cust-001", "Jane Miller", "412-555-0142")
	testutil.SeedRequest(t, db, &entity.ServiceRequest{ID: "req-001", CustomerID: "cust-001"})

	w := testutil.DoRequest(router, "PUT", "/api/v1/dispatch/bookings/req-001/status", map[string]interface{}{
		"status": "cancelled",
	}, testutil.DispatcherToken())

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var req entity.ServiceRequest
	db.First(&req, "id = ?", "req-001")
	if req.Status != entity.StatusCancelled {
		t.Errorf("Expected cancelled, got %s", req.Status)
	}

	logs, err := repository.NewActivityLogRepository(db).FindByEntity(context.Background(), "service_request", "req-001")
	if err != nil || len(logs) == 0 {
		t.Fatalf("Expected status_change activity log, got %d entries (err=%v)", len(logs), err)
	}
	logEntry := logs[0]
	if logEntry.Action != "status_change" {
		t.Errorf("Expected status_change action, got %s", logEntry.Action)
	}
	if logEntry.FromStatus != entity.StatusPending || logEntry.ToStatus != entity.StatusCancelled {
		t.Errorf("Expected pending→cancelled in log, got %s→%s", logEntry.FromStatus, logEntry.ToStatus)
	}
}

func TestUpdateDetailsEmptyPatch(t *testing.T) {
	router, db := setupDispatchTest(t)

	testutil.SeedCustomer(t, db, "cust-001", "Jane Miller", "412-555-0142")
	testutil.SeedRequest(t, db, &entity.ServiceRequest{ID: "req-001", CustomerID: "cust-001"})

	w := testutil.DoRequest(router, "PUT", "/api/v1/dispatch/bookings/req-001", map[string]interface{}{}, testutil.DispatcherToken())

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["message"] != "No fields to update" {
		t.Errorf("Expected 'No fields to update', got %v", resp["message"])
	}
}

func TestUpdateDetailsPartial(t *testing.T) {
	router, db := setupDispatchTest(t)

	testutil.SeedCustomer(t, db, "cust-001", "Jane Miller", "412-555-0142")
	testutil.SeedRequest(t, db, &entity.ServiceRequest{
		ID:               "req-001",
		CustomerID:       "cust-001",
		IssueDescription: "AC not cooling",
		Notes:            "gate code 4412",
	})

	w := testutil.DoRequest(router, "PUT", "/api/v1/dispatch/bookings/req-001", map[string]interface{}{
		"priority": 3,
	}, testutil.DispatcherToken())

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var req entity.ServiceRequest
	db.First(&req, "id = ?", "req-001")
	if req.Priority != 3 {
		t.Errorf("Expected priority 3, got %d", req.Priority)
	}
	// Untouched fields survive.
	if req.Notes != "gate code 4412" {
		t.Errorf("Expected notes unchanged, got %q", req.Notes)
	}
	if req.IssueDescription != "AC not cooling" {
		t.Errorf("Expected issue description unchanged, got %q", req.IssueDescription)
	}
	if req.Status != entity.StatusPending {
		t.Errorf("Expected status unchanged, got %s", req.Status)
	}
}

func TestBoardOrdering(t *testing.T) {
	router, db := setupDispatchTest(t)

	testutil.SeedCustomer(t, db, "cust-001", "Jane Miller", "412-555-0142")

	base := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	seed := func(id, status string, priority int, scheduled *time.Time, createdOffset time.Duration) {
		testutil.SeedRequest(t, db, &entity.ServiceRequest{
			ID:            id,
			CustomerID:    "cust-001",
			Status:        status,
			Priority:      priority,
			ScheduledDate: scheduled,
			CreatedAt:     base.Add(createdOffset),
			UpdatedAt:     base.Add(createdOffset),
		})
	}

	seed("r-cancelled", entity.StatusCancelled, 2, nil, 0)
	seed("r-pending-new", entity.StatusPending, 2, nil, 2*time.Hour)
	seed("r-pending-old", entity.StatusPending, 2, nil, time.Hour)
	seed("r-pending-high", entity.StatusPending, 3, nil, 3*time.Hour)
	seed("r-sched-late", entity.StatusScheduled, 2, dateP("2025-07-12"), 0)
	seed("r-sched-early", entity.StatusScheduled, 2, dateP("2025-07-10"), 0)
	seed("r-sched-high", entity.StatusScheduled, 3, dateP("2025-07-11"), 0)
	seed("r-inprog", entity.StatusInProgress, 2, dateP("2025-07-09"), 0)

	w := testutil.DoRequest(router, "GET", "/api/v1/dispatch/bookings", nil, testutil.DispatcherToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	bookings := resp["bookings"].([]interface{})

	want := []string{
		"r-inprog",      // in_progress ranks first
		"r-sched-high",  // within scheduled: priority DESC
		"r-sched-early", // then scheduled_date ASC
		"r-sched-late",
		"r-pending-high", // within pending: priority DESC
		"r-pending-old",  // then created_at ASC
		"r-pending-new",
		"r-cancelled", // everything else last
	}
	if len(bookings) != len(want) {
		t.Fatalf("Expected %d bookings, got %d", len(want), len(bookings))
	}
	for i, id := range want {
		got := bookings[i].(map[string]interface{})["request_id"]
		if got != id {
			t.Errorf("Position %d: expected %s, got %v", i, id, got)
		}
	}
}

func TestBoardDateFilterMatchesEitherDate(t *testing.T) {
	router, db := setupDispatchTest(t)
	token := testutil.DispatcherToken()

	testutil.SeedCustomer(t, db, "cust-001", "Jane Miller", "412-555-0142")
	testutil.SeedRequest(t, db, &entity.ServiceRequest{
		ID: "r-preferred", CustomerID: "cust-001", PreferredDate: dateP("2025-07-10"),
	})
	testutil.SeedRequest(t, db, &entity.ServiceRequest{
		ID: "r-scheduled", CustomerID: "cust-001", Status: entity.StatusScheduled, ScheduledDate: dateP("2025-07-10"),
	})
	testutil.SeedRequest(t, db, &entity.ServiceRequest{
		ID: "r-other", CustomerID: "cust-001", PreferredDate: dateP("2025-07-20"),
	})

	w := testutil.DoRequest(router, "GET", "/api/v1/dispatch/bookings?date=2025-07-10", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	if resp["count"].(float64) != 2 {
		t.Errorf("Expected 2 bookings for 2025-07-10, got %v", resp["count"])
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/dispatch/bookings?date=bogus", nil, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad date: expected 400, got %d", w.Code)
	}
}

func TestGetStats(t *testing.T) {
	router, db := setupDispatchTest(t)
	token := testutil.DispatcherToken()

	testutil.SeedCustomer(t, db, "cust-001", "Jane Miller", "412-555-0142")

	// Stats compare against the database's CURRENT_DATE, so "today" must come
	// from the database clock, not the test host's.
	var today time.Time
	if err := db.Raw("SELECT CURRENT_DATE").Scan(&today).Error; err != nil {
		t.Fatalf("read database date: %v", err)
	}
	tomorrow := today.Add(24 * time.Hour)

	testutil.SeedRequest(t, db, &entity.ServiceRequest{ID: "r-p1", CustomerID: "cust-001"})
	testutil.SeedRequest(t, db, &entity.ServiceRequest{ID: "r-p2", CustomerID: "cust-001"})
	testutil.SeedRequest(t, db, &entity.ServiceRequest{
		ID: "r-s1", CustomerID: "cust-001", Status: entity.StatusScheduled, ScheduledDate: &today,
	})
	testutil.SeedRequest(t, db, &entity.ServiceRequest{
		ID: "r-s2", CustomerID: "cust-001", Status: entity.StatusScheduled, ScheduledDate: &tomorrow,
	})
	testutil.SeedRequest(t, db, &entity.ServiceRequest{
		ID: "r-ip", CustomerID: "cust-001", Status: entity.StatusInProgress,
	})
	testutil.SeedRequest(t, db, &entity.ServiceRequest{
		ID: "r-x", CustomerID: "cust-001", Status: entity.StatusCancelled,
	})
	// Complete one through the API so updated_at lands on today.
	testutil.SeedRequest(t, db, &entity.ServiceRequest{
		ID: "r-done", CustomerID: "cust-001", Status: entity.StatusInProgress,
	})
	if w := testutil.DoRequest(router, "PUT", "/api/v1/dispatch/bookings/r-done/status", map[string]interface{}{
		"status": "completed",
	}, token); w.Code != http.StatusOK {
		t.Fatalf("complete r-done: expected 200, got %d", w.Code)
	}

	w := testutil.DoRequest(router, "GET", "/api/v1/dispatch/stats", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	stats := resp["stats"].(map[string]interface{})

	checks := map[string]float64{
		"pending_count":      2,
		"scheduled_count":    2,
		"in_progress_count":  1,
		"completed_today":    1,
		"scheduled_today":    1,
		"scheduled_tomorrow": 1,
	}
	for key, want := range checks {
		if got := stats[key].(float64); got != want {
			t.Errorf("%s: expected %v, got %v", key, want, got)
		}
	}
}

func TestListTechniciansActiveJobs(t *testing.T) {
	router, db := setupDispatchTest(t)

	testutil.SeedCustomer(t, db, "cust-001", "Jane Miller", "412-555-0142")
	testutil.SeedTechnician(t, db, "tech-001", "Mike Ross")
	testutil.SeedTechnician(t, db, "tech-002", "Sam Ortiz")

	techID := "tech-001"
	testutil.SeedRequest(t, db, &entity.ServiceRequest{
		ID: "r-1", CustomerID: "cust-001", Status: entity.StatusScheduled, AssignedTechID: &techID,
	})
	testutil.SeedRequest(t, db, &entity.ServiceRequest{
		ID: "r-2", CustomerID: "cust-001", Status: entity.StatusInProgress, AssignedTechID: &techID,
	})
	// Completed jobs do not count as active.
	testutil.SeedRequest(t, db, &entity.ServiceRequest{
		ID: "r-3", CustomerID: "cust-001", Status: entity.StatusCompleted, AssignedTechID: &techID,
	})

	w := testutil.DoRequest(router, "GET", "/api/v1/dispatch/technicians", nil, testutil.DispatcherToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	techs := resp["technicians"].([]interface{})
	if len(techs) != 2 {
		t.Fatalf("Expected 2 technicians, got %d", len(techs))
	}
	// Ordered by name: Mike before Sam.
	mike := techs[0].(map[string]interface{})
	sam := techs[1].(map[string]interface{})
	if mike["active_jobs"].(float64) != 2 {
		t.Errorf("Expected 2 active jobs for tech-001, got %v", mike["active_jobs"])
	}
	if sam["active_jobs"].(float64) != 0 {
		t.Errorf("Expected 0 active jobs for tech-002, got %v", sam["active_jobs"])
	}
}

func TestDispatchRequiresDispatcherRole(t *testing.T) {
	router, _ := setupDispatchTest(t)

	w := testutil.DoRequest(router, "GET", "/api/v1/dispatch/bookings", nil, testutil.TechToken("tech-001"))
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for technician token, got %d", w.Code)
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/dispatch/bookings", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without token, got %d", w.Code)
	}
}
