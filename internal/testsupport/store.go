package testsupport

import (
	"context"
	"testing"

	"vidscribe/internal/config"
	"vidscribe/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SeedProject creates a project owned by ownerID.
func SeedProject(t testing.TB, st *store.Store, id, ownerID string) *store.Project {
	t.Helper()

	project, err := st.CreateProject(context.Background(), id, ownerID, "project "+id)
	if err != nil {
		t.Fatalf("store.CreateProject: %v", err)
	}
	return project
}

// SeedVideo creates a PENDING video under projectID.
func SeedVideo(t testing.TB, st *store.Store, id, projectID string) *store.Video {
	t.Helper()

	video, err := st.CreateVideo(context.Background(), id, projectID, "video "+id, "")
	if err != nil {
		t.Fatalf("store.CreateVideo: %v", err)
	}
	return video
}
