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

func setupTechPortalTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	dispatchSvc := service.NewDispatchService(repos, zap.NewNop())
	portalHandler := NewTechPortalHandler(dispatchSvc, zap.NewNop())

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1/tech", "technician")
	api.GET("/jobs", portalHandler.ListJobs)
	api.PUT("/jobs/:id/status", portalHandler.UpdateJobStatus)

	return router, db
}

func seedAssignedJob(t *testing.T, db *gorm.DB, requestID, techID string) {
	t.Helper()
	testutil.SeedRequest(t, db, &entity.ServiceRequest{
		ID:             requestID,
		CustomerID:     "cust-001",
		Status:         entity.StatusScheduled,
		AssignedTechID: &techID,
		ScheduledDate:  dateP("2025-07-11"),
		ScheduledTime:  "09:00",
	})
}

func TestTechListJobsScopedToSelf(t *testing.T) {
	router, db := setupTechPortalTest(t)

	testutil.SeedCustomer(t, db, "cust-001", "Jane Miller", "412-555-0142")
	testutil.SeedTechnician(t, db, "tech-001", "Mike Ross")
	testutil.SeedTechnician(t, db, "tech-002", "Sam Ortiz")
	seedAssignedJob(t, db, "job-mine", "tech-001")
	seedAssignedJob(t, db, "job-other", "tech-002")

	w := testutil.DoRequest(router, "GET", "/api/v1/tech/jobs", nil, testutil.TechToken("tech-001"))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	if resp["count"].(float64) != 1 {
		t.Fatalf("Expected 1 job, got %v", resp["count"])
	}
	job := resp["jobs"].([]interface{})[0].(map[string]interface{})
	if job["request_id"] != "job-mine" {
		t.Errorf("Expected job-mine, got %v", job["request_id"])
	}
}

func TestTechUpdateJobStatus(t *testing.T) {
	router, db := setupTechPortalTest(t)

	testutil.SeedCustomer(t, db, "cust-001", "Jane Miller", "412-555-0142")
	testutil.SeedTechnician(t, db, "tech-001", "Mike Ross")
	seedAssignedJob(t, db, "job-001", "tech-001")
	token := testutil.TechToken("tech-001")

	w := testutil.DoRequest(router, "PUT", "/api/v1/tech/jobs/job-001/status", map[string]interface{}{
		"status": "in_progress",
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "PUT", "/api/v1/tech/jobs/job-001/status", map[string]interface{}{
		"status": "completed",
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var req entity.ServiceRequest
	db.First(&req, "id = ?", "job-001")
	if req.Status != entity.StatusCompleted {
		t.Errorf("Expected completed, got %s", req.Status)
	}
}

func TestTechUpdateJobStatusRestricted(t *testing.T) {
	router, db := setupTechPortalTest(t)

	testutil.SeedCustomer(t, db, "cust-001", "Jane Miller", "412-555-0142")
	testutil.SeedTechnician(t, db, "tech-001", "Mike Ross")
	seedAssignedJob(t, db, "job-001", "tech-001")
	token := testutil.TechToken("tech-001")

	// Technicians cannot cancel or reschedule through the portal.
	for _, status := range []string{"cancelled", "pending", "scheduled"} {
		w := testutil.DoRequest(router, "PUT", "/api/v1/tech/jobs/job-001/status", map[string]interface{}{
			"status": status,
		}, token)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status %s: expected 400, got %d", status, w.Code)
		}
	}

	var req entity.ServiceRequest
	db.First(&req, "id = ?", "job-001")
	if req.Status != entity.StatusScheduled {
		t.Errorf("Expected status unchanged, got %s", req.Status)
	}
}

func TestTechUpdateJobStatusOwnership(t *testing.T) {
	router, db := setupTechPortalTest(t)

	testutil.SeedCustomer(t, db, "cust-001", "Jane Miller", "412-555-0142")
	testutil.SeedTechnician(t, db, "tech-001", "Mike Ross")
	testutil.SeedTechnician(t, db, "tech-002", "Sam Ortiz")
	seedAssignedJob(t, db, "job-001", "tech-001")

	// A job assigned to someone else looks like it does not exist.
	w := testutil.DoRequest(router, "PUT", "/api/v1/tech/jobs/job-001/status", map[string]interface{}{
		"status": "in_progress",
	}, testutil.TechToken("tech-002"))
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for other tech's job, got %d: %s", w.Code, w.Body.String())
	}

	var req entity.ServiceRequest
	db.First(&req, "id = ?", "job-001")
	if req.Status != entity.StatusScheduled {
		t.Errorf("Expected status unchanged, got %s", req.Status)
	}
}
