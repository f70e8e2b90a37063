package testsupport

import (
	"context"
	"testing"

	"pearl/internal/config"
	"pearl/internal/roles"
	"pearl/internal/store"
	"pearl/internal/workflow"
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

// NewTitle creates a title for tests using the provided store.
func NewTitle(t testing.TB, st *store.Store, name string) *workflow.Title {
	t.Helper()

	title, err := st.CreateTitle(context.Background(), &workflow.Title{Name: name, TotalChapters: 10})
	if err != nil {
		t.Fatalf("store.CreateTitle: %v", err)
	}
	return title
}

// NewUser creates an active staff member for tests.
func NewUser(t testing.TB, st *store.Store, name string, role roles.Role) *workflow.User {
	t.Helper()

	user, err := st.CreateUser(context.Background(), &workflow.User{Name: name, Role: role})
	if err != nil {
		t.Fatalf("store.CreateUser: %v", err)
	}
	return user
}

// NewGhost creates a credential-less ghost user for tests.
func NewGhost(t testing.TB, st *store.Store, name string) *workflow.User {
	t.Helper()

	user, err := st.CreateUser(context.Background(), &workflow.User{Name: name, Role: roles.RoleTraductor, IsGhost: true})
	if err != nil {
		t.Fatalf("store.CreateUser (ghost): %v", err)
	}
	return user
}
