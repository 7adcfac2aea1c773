package service

import (
	"context"
	"strings"
	"testing"

	"pensario-server/internal/domain"

	"pgregory.net/rapid"
)

func TestAuthService_Register(t *testing.T) {
	store := newTestStore(t)
	svc := newTestAuthService(t, store.Users())
	ctx := context.Background()

	if _, err := svc.Register(ctx, &domain.RegisterRequest{Username: "alice", Password: "secret1"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name     string
		req      *domain.RegisterRequest
		wantKind Kind
	}{
		{"duplicate username", &domain.RegisterRequest{Username: "alice", Password: "other"}, KindConflict},
		{"empty username", &domain.RegisterRequest{Username: "", Password: "secret1"}, KindInvalidInput},
		{"empty password", &domain.RegisterRequest{Username: "bob", Password: ""}, KindInvalidInput},
		{"password too long", &domain.RegisterRequest{Username: "carol", Password: strings.Repeat("x", 73)}, KindInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.req)
			requireKind(t, err, tt.wantKind)
		})
	}
}

func TestAuthService_RegisterStoresHashOnly(t *testing.T) {
	store := newTestStore(t)
	svc := newTestAuthService(t, store.Users())

	user, err := svc.Register(context.Background(), &domain.RegisterRequest{Username: "alice", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	stored, err := store.Users().FindByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "secret1" {
		t.Errorf("PasswordHash = %q, want a bcrypt hash", stored.PasswordHash)
	}
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	store := newTestStore(t)
	svc := newTestAuthService(t, store.Users())
	ctx := context.Background()

	if _, err := svc.Register(ctx, &domain.RegisterRequest{Username: "alice", Password: "secret1"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, wrongPassword := svc.Login(ctx, &domain.LoginRequest{Username: "alice", Password: "nope"})
	_, unknownUser := svc.Login(ctx, &domain.LoginRequest{Username: "mallory", Password: "secret1"})

	requireKind(t, wrongPassword, KindUnauthorized)
	requireKind(t, unknownUser, KindUnauthorized)
	if wrongPassword.Error() != unknownUser.Error() {
		t.Errorf("login errors differ: %q vs %q", wrongPassword, unknownUser)
	}
}

func TestAuthService_LoginAndVerify(t *testing.T) {
	store := newTestStore(t)
	svc := newTestAuthService(t, store.Users())
	ctx := context.Background()

	user, err := svc.Register(ctx, &domain.RegisterRequest{Username: "alice", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	resp, err := svc.Login(ctx, &domain.LoginRequest{Username: "alice", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.User.ID != user.ID || resp.User.Username != "alice" {
		t.Errorf("Login() user = %+v", resp.User)
	}

	userID, err := svc.Verify(resp.Token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if userID != user.ID {
		t.Errorf("Verify() = %q, want %q", userID, user.ID)
	}
}

func TestAuthService_VerifyRejects(t *testing.T) {
	store := newTestStore(t)
	svc := newTestAuthService(t, store.Users())

	other := newTestAuthService(t, store.Users())
	other.cfg.Secret = "rotated-secret"

	if _, err := svc.Register(context.Background(), &domain.RegisterRequest{Username: "alice", Password: "secret1"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	resp, err := svc.Login(context.Background(), &domain.LoginRequest{Username: "alice", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	tests := []struct {
		name  string
		svc   *AuthService
		token string
	}{
		{"empty", svc, ""},
		{"garbage", svc, "not.a.token"},
		{"tampered", svc, resp.Token + "x"},
		{"rotated secret", other, resp.Token},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.Verify(tt.token)
			requireKind(t, err, KindUnauthorized)
		})
	}
}

func TestAuthService_CredentialRoundTripProperty(t *testing.T) {
	store := newTestStore(t)
	svc := newTestAuthService(t, store.Users())
	ctx := context.Background()
	seen := map[string]bool{}

	rapid.Check(t, func(t *rapid.T) {
		username := rapid.StringMatching(`[a-z][a-z0-9_]{2,20}`).Draw(t, "username")
		password := rapid.StringMatching(`[ -~]{1,40}`).Draw(t, "password")
		if seen[username] {
			t.Skip("username already registered")
		}
		seen[username] = true

		user, err := svc.Register(ctx, &domain.RegisterRequest{Username: username, Password: password})
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}

		resp, err := svc.Login(ctx, &domain.LoginRequest{Username: username, Password: password})
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		got, err := svc.Verify(resp.Token)
		if err != nil || got != user.ID {
			t.Fatalf("Verify() = %q, %v; want %q", got, err, user.ID)
		}

		if _, err := svc.Login(ctx, &domain.LoginRequest{Username: username, Password: password + "!"}); KindOf(err) != KindUnauthorized {
			t.Fatalf("Login() with wrong password error = %v, want unauthorized", err)
		}
	})
}
