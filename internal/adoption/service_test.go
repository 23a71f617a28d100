package adoption

import (
	"context"
	"errors"
	"testing"
	"time"

	"adoption-service/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// A single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.User{}, &model.Cat{}, &model.AdoptionRequest{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewService(db), db
}

func seedUser(t *testing.T, db *gorm.DB, username string, salary float64, occupation string) model.User {
	t.Helper()
	user := model.User{
		Username:   username,
		Email:      username + "@example.com",
		Name:       username,
		Salary:     salary,
		Occupation: occupation,
		Role:       "USER",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

func seedCat(t *testing.T, db *gorm.DB, name string) model.Cat {
	t.Helper()
	cat := model.Cat{Name: name, Age: 2, Gender: "female", Breed: "domestic shorthair"}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("seed cat %s: %v", name, err)
	}
	return cat
}

func requestCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&model.AdoptionRequest{}).Count(&n).Error; err != nil {
		t.Fatalf("count requests: %v", err)
	}
	return n
}

func TestSubmitCreatesPendingRequest(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "alice", 5000, "teacher")
	cat := seedCat(t, db, "Mochi")

	req, resubmitted, err := svc.Submit(context.Background(), cat.ID, "alice", "I have a big yard")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resubmitted {
		t.Fatal("first submission reported as resubmitted")
	}
	if req.Status != model.StatusPending {
		t.Fatalf("status = %q, expected %q", req.Status, model.StatusPending)
	}
	if req.Message != "I have a big yard" {
		t.Fatalf("message = %q", req.Message)
	}
	if n := requestCount(t, db); n != 1 {
		t.Fatalf("request count = %d, expected 1", n)
	}
}

func TestSubmitDefaultsMessage(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "alice", 5000, "teacher")
	cat := seedCat(t, db, "Mochi")

	req, _, err := svc.Submit(context.Background(), cat.ID, "alice", "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if req.Message == "" {
		t.Fatal("expected a default message for an empty submission")
	}
}

func TestSubmitEligibilityGate(t *testing.T) {
	tests := []struct {
		name       string
		salary     float64
		occupation string
	}{
		{name: "zero salary", salary: 0, occupation: "teacher"},
		{name: "negative salary", salary: -100, occupation: "teacher"},
		{name: "empty occupation", salary: 5000, occupation: ""},
		{name: "placeholder occupation", salary: 5000, occupation: "-"},
		{name: "blank occupation", salary: 5000, occupation: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, db := newTestService(t)
			seedUser(t, db, "alice", tt.salary, tt.occupation)
			cat := seedCat(t, db, "Mochi")

			_, _, err := svc.Submit(context.Background(), cat.ID, "alice", "")
			if !errors.Is(err, ErrProfileIncomplete) {
				t.Fatalf("err = %v, expected ErrProfileIncomplete", err)
			}
			if n := requestCount(t, db); n != 0 {
				t.Fatalf("request count = %d, expected 0 after rejected submission", n)
			}
		})
	}
}

func TestSubmitUnknownUserAndCat(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "alice", 5000, "teacher")
	cat := seedCat(t, db, "Mochi")

	if _, _, err := svc.Submit(context.Background(), cat.ID, "nobody", ""); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown user: err = %v, expected ErrUserNotFound", err)
	}
	if _, _, err := svc.Submit(context.Background(), cat.ID+99, "alice", ""); !errors.Is(err, ErrCatNotFound) {
		t.Fatalf("unknown cat: err = %v, expected ErrCatNotFound", err)
	}
}

func TestSubmitAdoptedCat(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "alice", 5000, "teacher")
	cat := seedCat(t, db, "Mochi")

	adopter := "bob"
	if err := db.Model(&model.Cat{}).Where("id = ?", cat.ID).
		Updates(map[string]interface{}{"adopted": true, "adopter": adopter}).Error; err != nil {
		t.Fatalf("lock cat: %v", err)
	}

	_, _, err := svc.Submit(context.Background(), cat.ID, "alice", "")
	if !errors.Is(err, ErrCatAlreadyAdopted) {
		t.Fatalf("err = %v, expected ErrCatAlreadyAdopted", err)
	}
}

func TestSubmitDuplicatePending(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "alice", 5000, "teacher")
	cat := seedCat(t, db, "Mochi")

	if _, _, err := svc.Submit(context.Background(), cat.ID, "alice", ""); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	_, _, err := svc.Submit(context.Background(), cat.ID, "alice", "")
	if !errors.Is(err, ErrDuplicatePending) {
		t.Fatalf("err = %v, expected ErrDuplicatePending", err)
	}
	if n := requestCount(t, db); n != 1 {
		t.Fatalf("request count = %d, expected 1", n)
	}
}

func TestSubmitAfterRejectionReusesRow(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "alice", 5000, "teacher")
	cat := seedCat(t, db, "Mochi")

	first := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return first }

	req, _, err := svc.Submit(context.Background(), cat.ID, "alice", "please")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := svc.Reject(context.Background(), req.ID); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	second := first.Add(48 * time.Hour)
	svc.now = func() time.Time { return second }

	revived, resubmitted, err := svc.Submit(context.Background(), cat.ID, "alice", "one more chance")
	if err != nil {
		t.Fatalf("re-Submit: %v", err)
	}
	if !resubmitted {
		t.Fatal("expected the revived submission to be reported as resubmitted")
	}
	if revived.ID != req.ID {
		t.Fatalf("revived id = %d, expected original id %d", revived.ID, req.ID)
	}
	if revived.Status != model.StatusPending {
		t.Fatalf("status = %q, expected %q", revived.Status, model.StatusPending)
	}
	if !revived.Date.Equal(second) {
		t.Fatalf("date = %v, expected refreshed %v", revived.Date, second)
	}
	if n := requestCount(t, db); n != 1 {
		t.Fatalf("request count = %d, expected the single reused row", n)
	}
}

func TestSubmitOnOwnApprovedRequest(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "alice", 5000, "teacher")
	cat := seedCat(t, db, "Mochi")

	req, _, err := svc.Submit(context.Background(), cat.ID, "alice", "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := svc.Approve(context.Background(), req.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	_, _, err = svc.Submit(context.Background(), cat.ID, "alice", "")
	// The cat is locked first, so the earlier of the two conflicts wins
	if !errors.Is(err, ErrCatAlreadyAdopted) && !errors.Is(err, ErrAlreadyApproved) {
		t.Fatalf("err = %v, expected a conflict", err)
	}
}

func TestApproveRejectsRivalsAndLocksCat(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "alice", 5000, "teacher")
	seedUser(t, db, "bob", 4000, "engineer")
	seedUser(t, db, "carol", 4500, "nurse")
	cat := seedCat(t, db, "Mochi")

	adoptTime := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return adoptTime }

	target, _, err := svc.Submit(context.Background(), cat.ID, "alice", "")
	if err != nil {
		t.Fatalf("Submit alice: %v", err)
	}
	if _, _, err := svc.Submit(context.Background(), cat.ID, "bob", ""); err != nil {
		t.Fatalf("Submit bob: %v", err)
	}
	if _, _, err := svc.Submit(context.Background(), cat.ID, "carol", ""); err != nil {
		t.Fatalf("Submit carol: %v", err)
	}

	if err := svc.Approve(context.Background(), target.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	var requests []model.AdoptionRequest
	if err := db.Where("cat_id = ?", cat.ID).Find(&requests).Error; err != nil {
		t.Fatalf("load requests: %v", err)
	}
	approved := 0
	for _, r := range requests {
		switch {
		case r.ID == target.ID:
			if r.Status != model.StatusApproved {
				t.Fatalf("target status = %q, expected %q", r.Status, model.StatusApproved)
			}
			approved++
		case r.Status != model.StatusRejected:
			t.Fatalf("rival %s status = %q, expected %q", r.Username, r.Status, model.StatusRejected)
		}
	}
	if approved != 1 {
		t.Fatalf("approved count = %d, expected exactly 1", approved)
	}

	var locked model.Cat
	if err := db.First(&locked, cat.ID).Error; err != nil {
		t.Fatalf("load cat: %v", err)
	}
	if !locked.Adopted {
		t.Fatal("cat not marked adopted")
	}
	if locked.Adopter == nil || *locked.Adopter != "alice" {
		t.Fatalf("adopter = %v, expected alice", locked.Adopter)
	}
	if locked.AdoptDate == nil || !locked.AdoptDate.Equal(adoptTime) {
		t.Fatalf("adopt date = %v, expected %v", locked.AdoptDate, adoptTime)
	}
	if locked.Taken {
		t.Fatal("cat marked taken straight after approval")
	}
}

func TestApproveUnknownRequest(t *testing.T) {
	svc, _ := newTestService(t)
	if err := svc.Approve(context.Background(), 42); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("err = %v, expected ErrRequestNotFound", err)
	}
}

func TestApproveTwice(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "alice", 5000, "teacher")
	cat := seedCat(t, db, "Mochi")

	req, _, err := svc.Submit(context.Background(), cat.ID, "alice", "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := svc.Approve(context.Background(), req.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if err := svc.Approve(context.Background(), req.ID); !errors.Is(err, ErrAlreadyApproved) {
		t.Fatalf("err = %v, expected ErrAlreadyApproved", err)
	}
}

func TestApproveRejectedRequest(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "alice", 5000, "teacher")
	cat := seedCat(t, db, "Mochi")

	req, _, err := svc.Submit(context.Background(), cat.ID, "alice", "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := svc.Reject(context.Background(), req.ID); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if err := svc.Approve(context.Background(), req.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, expected ErrInvalidTransition", err)
	}
}

func TestRejectIsIdempotent(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "alice", 5000, "teacher")
	cat := seedCat(t, db, "Mochi")

	req, _, err := svc.Submit(context.Background(), cat.ID, "alice", "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := svc.Reject(context.Background(), req.ID); err != nil {
		t.Fatalf("first Reject: %v", err)
	}
	if err := svc.Reject(context.Background(), req.ID); err != nil {
		t.Fatalf("second Reject: %v", err)
	}

	var got model.AdoptionRequest
	if err := db.First(&got, req.ID).Error; err != nil {
		t.Fatalf("load request: %v", err)
	}
	if got.Status != model.StatusRejected {
		t.Fatalf("status = %q, expected %q", got.Status, model.StatusRejected)
	}
}

func TestRejectUnknownRequest(t *testing.T) {
	svc, _ := newTestService(t)
	if err := svc.Reject(context.Background(), 42); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("err = %v, expected ErrRequestNotFound", err)
	}
}

func TestRejectHasNoSideEffects(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "alice", 5000, "teacher")
	seedUser(t, db, "bob", 4000, "engineer")
	cat := seedCat(t, db, "Mochi")

	aliceReq, _, err := svc.Submit(context.Background(), cat.ID, "alice", "")
	if err != nil {
		t.Fatalf("Submit alice: %v", err)
	}
	bobReq, _, err := svc.Submit(context.Background(), cat.ID, "bob", "")
	if err != nil {
		t.Fatalf("Submit bob: %v", err)
	}

	if err := svc.Reject(context.Background(), aliceReq.ID); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	var other model.AdoptionRequest
	if err := db.First(&other, bobReq.ID).Error; err != nil {
		t.Fatalf("load request: %v", err)
	}
	if other.Status != model.StatusPending {
		t.Fatalf("rival status = %q, expected untouched %q", other.Status, model.StatusPending)
	}

	var got model.Cat
	if err := db.First(&got, cat.ID).Error; err != nil {
		t.Fatalf("load cat: %v", err)
	}
	if got.Adopted || got.Taken {
		t.Fatal("reject must not touch the cat")
	}
}

func TestMarkTakenRequiresAdoption(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "alice", 5000, "teacher")
	cat := seedCat(t, db, "Mochi")

	if _, err := svc.MarkTaken(context.Background(), cat.ID); !errors.Is(err, ErrCatNotAdopted) {
		t.Fatalf("err = %v, expected ErrCatNotAdopted before approval", err)
	}

	req, _, err := svc.Submit(context.Background(), cat.ID, "alice", "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := svc.Approve(context.Background(), req.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	taken, err := svc.MarkTaken(context.Background(), cat.ID)
	if err != nil {
		t.Fatalf("MarkTaken: %v", err)
	}
	if !taken.Taken {
		t.Fatal("cat not marked taken")
	}

	// Claiming twice is a no-op
	if _, err := svc.MarkTaken(context.Background(), cat.ID); err != nil {
		t.Fatalf("second MarkTaken: %v", err)
	}
}

func TestMarkTakenUnknownCat(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.MarkTaken(context.Background(), 42); !errors.Is(err, ErrCatNotFound) {
		t.Fatalf("err = %v, expected ErrCatNotFound", err)
	}
}

func TestPendingAndHistoryViews(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "alice", 5000, "teacher")
	cat := seedCat(t, db, "Mochi")

	req, _, err := svc.Submit(context.Background(), cat.ID, "alice", "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	pending, err := svc.PendingForUser(context.Background(), "alice")
	if err != nil {
		t.Fatalf("PendingForUser: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending count = %d, expected 1", len(pending))
	}
	if pending[0].StatusRequest != model.StatusPending {
		t.Fatalf("status_request = %q, expected %q", pending[0].StatusRequest, model.StatusPending)
	}
	if pending[0].AdoptDate != nil {
		t.Fatal("adopt date set before approval")
	}

	if err := svc.Approve(context.Background(), req.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	pending, err = svc.PendingForUser(context.Background(), "alice")
	if err != nil {
		t.Fatalf("PendingForUser after approval: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending count = %d, expected 1 after approval", len(pending))
	}
	if pending[0].StatusRequest != model.StatusApproved {
		t.Fatalf("status_request = %q, expected %q", pending[0].StatusRequest, model.StatusApproved)
	}
	if pending[0].AdoptDate == nil {
		t.Fatal("approved entry must surface the adopt date")
	}

	if _, err := svc.MarkTaken(context.Background(), cat.ID); err != nil {
		t.Fatalf("MarkTaken: %v", err)
	}

	pending, err = svc.PendingForUser(context.Background(), "alice")
	if err != nil {
		t.Fatalf("PendingForUser after take: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending count = %d, expected 0 once claimed", len(pending))
	}

	history, err := svc.HistoryForUser(context.Background(), "alice")
	if err != nil {
		t.Fatalf("HistoryForUser: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history count = %d, expected 1", len(history))
	}
	if history[0].ID != cat.ID {
		t.Fatalf("history cat = %d, expected %d", history[0].ID, cat.ID)
	}
}

func TestPendingQueueOrdering(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "alice", 5000, "teacher")
	seedUser(t, db, "bob", 4000, "engineer")
	catA := seedCat(t, db, "Mochi")
	catB := seedCat(t, db, "Oyen")

	earlier := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return earlier }
	if _, _, err := svc.Submit(context.Background(), catA.ID, "alice", ""); err != nil {
		t.Fatalf("Submit alice: %v", err)
	}

	svc.now = func() time.Time { return earlier.Add(time.Hour) }
	if _, _, err := svc.Submit(context.Background(), catB.ID, "bob", ""); err != nil {
		t.Fatalf("Submit bob: %v", err)
	}

	queue, err := svc.PendingQueue(context.Background())
	if err != nil {
		t.Fatalf("PendingQueue: %v", err)
	}
	if len(queue) != 2 {
		t.Fatalf("queue length = %d, expected 2", len(queue))
	}
	if queue[0].Username != "bob" {
		t.Fatalf("queue head = %s, expected the newest request first", queue[0].Username)
	}
	if queue[0].Cat.ID != catB.ID {
		t.Fatal("queue entry missing cat data")
	}
	if queue[0].User.Username != "bob" {
		t.Fatal("queue entry missing applicant profile")
	}
}

func TestAvailableCatsExcludesAdopted(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "alice", 5000, "teacher")
	catA := seedCat(t, db, "Mochi")
	catB := seedCat(t, db, "Oyen")

	req, _, err := svc.Submit(context.Background(), catA.ID, "alice", "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := svc.Approve(context.Background(), req.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	cats, err := svc.AvailableCats(context.Background())
	if err != nil {
		t.Fatalf("AvailableCats: %v", err)
	}
	if len(cats) != 1 || cats[0].ID != catB.ID {
		t.Fatalf("available = %v, expected only the unadopted cat", cats)
	}
}
