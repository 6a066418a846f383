package handler_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/hieudoan/gocamp/store"
	"github.com/hieudoan/gocamp/util"
)

func TestRequireLoginRedirects(t *testing.T) {
	env := newTestEnv(t)
	cl := env.newClient()

	rec := cl.do(http.MethodGet, "/campgrounds/new", nil)
	assertRedirect(t, rec, "/login?next="+url.QueryEscape("/campgrounds/new"))

	// non-GET requests drop the next target
	rec = cl.do(http.MethodPost, "/campgrounds/abc/comments", url.Values{"text": {"hi"}})
	assertRedirect(t, rec, "/login")
}

func TestCampgroundOwnership(t *testing.T) {
	env := newTestEnv(t)

	owner := env.newClient()
	owner.register("alice", "alice@example.com", "secret123", "")
	cg := owner.createCampground("Lake Paradise")

	// the owner may open the edit page
	rec := owner.do(http.MethodGet, "/campgrounds/"+cg.ID+"/edit", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner edit page: expected 200, got %d", rec.Code)
	}

	// another user is turned away and the record stays untouched
	intruder := env.newClient()
	intruder.register("mallory", "mallory@example.com", "secret123", "")
	rec = intruder.do(http.MethodPut, "/campgrounds/"+cg.ID, url.Values{
		"name":        {"Hacked"},
		"price":       {"0"},
		"description": {"gone"},
		"location":    {cg.Location},
	})
	assertRedirect(t, rec, "/campgrounds/"+cg.ID)

	stored, err := env.db.GetCampgroundByID(cg.ID)
	if err != nil {
		t.Fatalf("GetCampgroundByID: %v", err)
	}
	if stored.Name != "Lake Paradise" {
		t.Fatalf("campground modified by non-owner: %s", stored.Name)
	}

	rec = intruder.do(http.MethodDelete, "/campgrounds/"+cg.ID, nil)
	assertRedirect(t, rec, "/campgrounds/"+cg.ID)
	if _, err := env.db.GetCampgroundByID(cg.ID); err != nil {
		t.Fatalf("campground deleted by non-owner: %v", err)
	}
}

func TestAdminBypassesOwnership(t *testing.T) {
	prev := util.AdminCode
	util.AdminCode = "letmein"
	defer func() { util.AdminCode = prev }()

	env := newTestEnv(t)

	owner := env.newClient()
	owner.register("alice", "alice@example.com", "secret123", "")
	cg := owner.createCampground("Lake Paradise")

	admin := env.newClient()
	admin.register("root", "root@example.com", "secret123", "letmein")

	rec := admin.do(http.MethodDelete, "/campgrounds/"+cg.ID, nil)
	assertRedirect(t, rec, "/campgrounds")
	if _, err := env.db.GetCampgroundByID(cg.ID); err != store.ErrNotFound {
		t.Fatalf("expected campground gone, got %v", err)
	}
}

func TestOwnershipMissingResource(t *testing.T) {
	env := newTestEnv(t)

	cl := env.newClient()
	cl.register("alice", "alice@example.com", "secret123", "")

	rec := cl.do(http.MethodDelete, "/campgrounds/nope", nil)
	assertRedirect(t, rec, "/campgrounds")
}

func TestCommentOwnership(t *testing.T) {
	env := newTestEnv(t)

	owner := env.newClient()
	owner.register("alice", "alice@example.com", "secret123", "")
	cg := owner.createCampground("Lake Paradise")

	commenter := env.newClient()
	commenter.register("bob", "bob@example.com", "secret123", "")
	rec := commenter.do(http.MethodPost, "/campgrounds/"+cg.ID+"/comments", url.Values{
		"text": {"great spot"},
	})
	assertRedirect(t, rec, "/campgrounds/"+cg.ID)

	stored, err := env.db.GetCampgroundByID(cg.ID)
	if err != nil || len(stored.CommentIDs) != 1 {
		t.Fatalf("comment not linked: %v %v", err, stored.CommentIDs)
	}
	commentID := stored.CommentIDs[0]

	// owning the campground does not grant control over the comment
	rec = owner.do(http.MethodDelete, "/campgrounds/"+cg.ID+"/comments/"+commentID, nil)
	assertRedirect(t, rec, "/campgrounds/"+cg.ID)
	if _, err := env.db.GetCommentByID(commentID); err != nil {
		t.Fatalf("comment deleted by campground owner: %v", err)
	}

	rec = commenter.do(http.MethodDelete, "/campgrounds/"+cg.ID+"/comments/"+commentID, nil)
	assertRedirect(t, rec, "/campgrounds/"+cg.ID)
	if _, err := env.db.GetCommentByID(commentID); err != store.ErrNotFound {
		t.Fatalf("expected comment gone, got %v", err)
	}

	stored, err = env.db.GetCampgroundByID(cg.ID)
	if err != nil || len(stored.CommentIDs) != 0 {
		t.Fatalf("comment not unlinked: %v %v", err, stored.CommentIDs)
	}
}

func TestSelfOnly(t *testing.T) {
	env := newTestEnv(t)

	alice := env.newClient()
	alice.register("alice", "alice@example.com", "secret123", "")
	aliceID := mustUserID(t, env, "alice")

	bob := env.newClient()
	bob.register("bob", "bob@example.com", "secret123", "")

	rec := alice.do(http.MethodGet, "/users/"+aliceID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("own profile: expected 200, got %d", rec.Code)
	}

	rec = bob.do(http.MethodGet, "/users/"+aliceID, nil)
	assertRedirect(t, rec, "/campgrounds")

	rec = bob.do(http.MethodPut, "/users/"+aliceID, url.Values{
		"email": {"stolen@example.com"},
	})
	assertRedirect(t, rec, "/campgrounds")

	stored, err := env.db.GetUserByID(aliceID)
	if err != nil || stored.Email != "alice@example.com" {
		t.Fatalf("profile modified by another user: %v %s", err, stored.Email)
	}
}

func mustUserID(t *testing.T, env *testEnv, username string) string {
	t.Helper()
	user, err := env.db.GetUserByUsername(username)
	if err != nil {
		t.Fatalf("GetUserByUsername(%s): %v", username, err)
	}
	return user.ID
}
