package jsondb

import (
	"testing"
	"time"

	"github.com/go-test/deep"

	"github.com/hieudoan/gocamp/model"
	"github.com/hieudoan/gocamp/store"
)

func newTestDB(t *testing.T) *JsonDB {
	t.Helper()
	db, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("cannot open database: %v", err)
	}
	if err := db.Init(); err != nil {
		t.Fatalf("cannot init database: %v", err)
	}
	return db
}

func testUser(id, username, email string) model.User {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return model.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: "hash-" + id,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func testCampground(id, name, authorID string, createdAt time.Time) model.Campground {
	return model.Campground{
		ID:        id,
		Name:      name,
		Price:     "9.50",
		Author:    model.Author{ID: authorID, Username: "user-" + authorID},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestUserRoundTrip(t *testing.T) {
	db := newTestDB(t)

	user := testUser("u1", "alice", "alice@example.com")
	if err := db.SaveUser(user); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}

	got, err := db.GetUserByID("u1")
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if diff := deep.Equal(got, user); diff != nil {
		t.Fatalf("user mismatch: %v", diff)
	}

	// username and email lookups are case-insensitive
	if _, err := db.GetUserByUsername("ALICE"); err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if _, err := db.GetUserByEmail("Alice@Example.com"); err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}

	if _, err := db.GetUserByID("missing"); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveUserConflicts(t *testing.T) {
	db := newTestDB(t)

	if err := db.SaveUser(testUser("u1", "alice", "alice@example.com")); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}

	err := db.SaveUser(testUser("u2", "Alice", "other@example.com"))
	if err != store.ErrDuplicateUsername {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}

	err = db.SaveUser(testUser("u2", "bob", "ALICE@example.com"))
	if err != store.ErrDuplicateEmail {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	// updating the same record is not a conflict
	updated := testUser("u1", "alice", "alice@example.com")
	updated.FirstName = "Alice"
	if err := db.SaveUser(updated); err != nil {
		t.Fatalf("SaveUser update: %v", err)
	}
}

func TestGetUserByResetToken(t *testing.T) {
	db := newTestDB(t)

	live := testUser("u1", "alice", "alice@example.com")
	live.ResetToken = "live-token"
	live.ResetTokenExpiry = time.Now().UTC().Add(30 * time.Minute)
	if err := db.SaveUser(live); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}

	expired := testUser("u2", "bob", "bob@example.com")
	expired.ResetToken = "expired-token"
	expired.ResetTokenExpiry = time.Now().UTC().Add(-time.Minute)
	if err := db.SaveUser(expired); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}

	got, err := db.GetUserByResetToken("live-token")
	if err != nil {
		t.Fatalf("GetUserByResetToken: %v", err)
	}
	if got.ID != "u1" {
		t.Fatalf("expected u1, got %s", got.ID)
	}

	if _, err := db.GetUserByResetToken("expired-token"); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound for expired token, got %v", err)
	}
	if _, err := db.GetUserByResetToken("unknown"); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown token, got %v", err)
	}
	// an empty token must never match users without a pending reset
	if _, err := db.GetUserByResetToken(""); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound for empty token, got %v", err)
	}
}

func TestSearchCampgrounds(t *testing.T) {
	db := newTestDB(t)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"Lake Paradise", "Mountain View", "Granite Lakeside"} {
		cg := testCampground(name, name, "u1", base.Add(time.Duration(i)*time.Minute))
		if err := db.SaveCampground(cg); err != nil {
			t.Fatalf("SaveCampground: %v", err)
		}
	}

	got, err := db.SearchCampgrounds("LAKE")
	if err != nil {
		t.Fatalf("SearchCampgrounds: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	// results keep creation order
	if got[0].Name != "Lake Paradise" || got[1].Name != "Granite Lakeside" {
		t.Fatalf("unexpected order: %s, %s", got[0].Name, got[1].Name)
	}

	got, err = db.SearchCampgrounds("desert")
	if err != nil {
		t.Fatalf("SearchCampgrounds: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %d", len(got))
	}
}

func TestGetCampgroundsByAuthor(t *testing.T) {
	db := newTestDB(t)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	db.SaveCampground(testCampground("c1", "One", "u1", base))
	db.SaveCampground(testCampground("c2", "Two", "u2", base.Add(time.Minute)))
	db.SaveCampground(testCampground("c3", "Three", "u1", base.Add(2*time.Minute)))

	got, err := db.GetCampgroundsByAuthor("u1")
	if err != nil {
		t.Fatalf("GetCampgroundsByAuthor: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 campgrounds, got %d", len(got))
	}
}

func TestDeleteCampgroundCascades(t *testing.T) {
	db := newTestDB(t)

	cg := testCampground("c1", "Lake Paradise", "u1", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	for _, commentID := range []string{"m1", "m2"} {
		comment := model.Comment{
			ID:           commentID,
			CampgroundID: cg.ID,
			Text:         "nice spot",
			Author:       model.Author{ID: "u2", Username: "bob"},
		}
		if err := db.SaveComment(comment); err != nil {
			t.Fatalf("SaveComment: %v", err)
		}
		cg.CommentIDs = append(cg.CommentIDs, commentID)
	}
	if err := db.SaveCampground(cg); err != nil {
		t.Fatalf("SaveCampground: %v", err)
	}

	if err := db.DeleteCampground("c1"); err != nil {
		t.Fatalf("DeleteCampground: %v", err)
	}

	if _, err := db.GetCampgroundByID("c1"); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound for campground, got %v", err)
	}
	for _, commentID := range []string{"m1", "m2"} {
		if _, err := db.GetCommentByID(commentID); err != store.ErrNotFound {
			t.Fatalf("expected ErrNotFound for comment %s, got %v", commentID, err)
		}
	}

	if err := db.DeleteCampground("c1"); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
