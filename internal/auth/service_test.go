package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/blogapi/internal/model"
	"github.com/hitoshi/blogapi/internal/repository"
	"github.com/lib/pq"
)

// --- モック定義 ---

type mockProvider struct {
	exchangeCodeFn func(ctx context.Context, code string) (string, error)
	fetchProfileFn func(ctx context.Context, accessToken string) (*Profile, error)
	exchangeCalls  int
	fetchCalls     int
}

func (m *mockProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	m.exchangeCalls++
	if m.exchangeCodeFn != nil {
		return m.exchangeCodeFn(ctx, code)
	}
	return "provider-access-token", nil
}

func (m *mockProvider) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	m.fetchCalls++
	if m.fetchProfileFn != nil {
		return m.fetchProfileFn(ctx, accessToken)
	}
	return sampleProfile(), nil
}

type mockUserRepo struct {
	findByIDFn          func(ctx context.Context, id string) (*model.User, error)
	findByProviderUIDFn func(ctx context.Context, provider, uid string) (*model.User, error)
	createFn            func(ctx context.Context, user *model.User) error
	createCalls         int
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByProviderUID(ctx context.Context, provider, uid string) (*model.User, error) {
	if m.findByProviderUIDFn != nil {
		return m.findByProviderUIDFn(ctx, provider, uid)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

type mockTokenRepo struct {
	createFn        func(ctx context.Context, token *model.Token) error
	findByValueFn   func(ctx context.Context, value string) (*model.Token, error)
	findByUserIDFn  func(ctx context.Context, userID string) (*model.Token, error)
	existsValueFn   func(ctx context.Context, value, excludeID string) (bool, error)
	deleteByValueFn func(ctx context.Context, value string) error
	createCalls     int
}

func (m *mockTokenRepo) Create(ctx context.Context, token *model.Token) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, token)
	}
	return nil
}

func (m *mockTokenRepo) FindByValue(ctx context.Context, value string) (*model.Token, error) {
	if m.findByValueFn != nil {
		return m.findByValueFn(ctx, value)
	}
	return nil, nil
}

func (m *mockTokenRepo) FindByUserID(ctx context.Context, userID string) (*model.Token, error) {
	if m.findByUserIDFn != nil {
		return m.findByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockTokenRepo) ExistsValue(ctx context.Context, value, excludeID string) (bool, error) {
	if m.existsValueFn != nil {
		return m.existsValueFn(ctx, value, excludeID)
	}
	return false, nil
}

func (m *mockTokenRepo) DeleteByValue(ctx context.Context, value string) error {
	if m.deleteByValueFn != nil {
		return m.deleteByValueFn(ctx, value)
	}
	return nil
}

// --- compile-time interface checks ---
var _ Provider = (*mockProvider)(nil)
var _ repository.UserRepository = (*mockUserRepo)(nil)
var _ repository.TokenRepository = (*mockTokenRepo)(nil)

func sampleProfile() *Profile {
	return &Profile{
		UID:       "1",
		Login:     "jsmith",
		Name:      "John Smith",
		URL:       "https://api.github.com/users/jsmith",
		AvatarURL: "https://github.com/avatars/jsmith.jpg",
		Provider:  "github",
	}
}

func uniqueViolation() error {
	return &pq.Error{Code: "23505"}
}

// --- テスト ---

func TestAuthenticate_EmptyCode_FailsWithoutSideEffects(t *testing.T) {
	provider := &mockProvider{}
	userRepo := &mockUserRepo{}
	tokenRepo := &mockTokenRepo{}
	svc := NewService(provider, userRepo, tokenRepo, ServiceConfig{})

	_, _, err := svc.Authenticate(context.Background(), "")

	if !errors.Is(err, model.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if provider.exchangeCalls != 0 || provider.fetchCalls != 0 {
		t.Error("expected no provider calls for empty code")
	}
	if userRepo.createCalls != 0 || tokenRepo.createCalls != 0 {
		t.Error("expected no persistence writes for empty code")
	}
}

func TestAuthenticate_ExchangeFails_CollapsesToAuthenticationError(t *testing.T) {
	provider := &mockProvider{
		exchangeCodeFn: func(ctx context.Context, code string) (string, error) {
			return "", errors.New("token exchange rejected: bad_verification_code")
		},
	}
	svc := NewService(provider, &mockUserRepo{}, &mockTokenRepo{}, ServiceConfig{})

	_, _, err := svc.Authenticate(context.Background(), "invalid-code")

	if !errors.Is(err, model.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if provider.fetchCalls != 0 {
		t.Error("expected no profile fetch after failed exchange")
	}
}

func TestAuthenticate_ProfileFetchFails_CollapsesToAuthenticationError(t *testing.T) {
	provider := &mockProvider{
		fetchProfileFn: func(ctx context.Context, accessToken string) (*Profile, error) {
			return nil, errors.New("user fetch failed with status 500")
		},
	}
	userRepo := &mockUserRepo{}
	svc := NewService(provider, userRepo, &mockTokenRepo{}, ServiceConfig{})

	_, _, err := svc.Authenticate(context.Background(), "sample-code")

	if !errors.Is(err, model.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if userRepo.createCalls != 0 {
		t.Error("expected no user creation after failed profile fetch")
	}
}

func TestAuthenticate_NewUser_CreatesUserAndToken(t *testing.T) {
	var createdUser *model.User
	var createdToken *model.Token

	userRepo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			createdUser = user
			return nil
		},
	}
	tokenRepo := &mockTokenRepo{
		createFn: func(ctx context.Context, token *model.Token) error {
			createdToken = token
			return nil
		},
	}
	svc := NewService(&mockProvider{}, userRepo, tokenRepo, ServiceConfig{})

	token, user, err := svc.Authenticate(context.Background(), "sample-code")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	if createdUser == nil {
		t.Fatal("expected user to be created")
	}
	if createdUser.UID != "1" || createdUser.Provider != "github" {
		t.Errorf("created user = (%q, %q), want (\"1\", \"github\")", createdUser.UID, createdUser.Provider)
	}
	if createdUser.Login != "jsmith" {
		t.Errorf("login = %q, want %q", createdUser.Login, "jsmith")
	}
	if user == nil || user.ID != createdUser.ID {
		t.Error("expected returned user to match created user")
	}

	if createdToken == nil {
		t.Fatal("expected token to be created")
	}
	if token.Value == "" {
		t.Error("expected non-empty token value")
	}
	if token.UserID != createdUser.ID {
		t.Errorf("token user = %q, want %q", token.UserID, createdUser.ID)
	}
	if token.ExpiresAt != nil {
		t.Error("expected no expiry when TokenMaxAge is 0")
	}
}

func TestAuthenticate_ExistingUser_ReusesUserRecord(t *testing.T) {
	existing := &model.User{ID: "user-1", UID: "1", Provider: "github", Login: "jsmith"}
	userRepo := &mockUserRepo{
		findByProviderUIDFn: func(ctx context.Context, provider, uid string) (*model.User, error) {
			return existing, nil
		},
	}
	tokenRepo := &mockTokenRepo{}
	svc := NewService(&mockProvider{}, userRepo, tokenRepo, ServiceConfig{})

	_, user, err := svc.Authenticate(context.Background(), "sample-code")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	if user != existing {
		t.Error("expected existing user to be reused")
	}
	if userRepo.createCalls != 0 {
		t.Error("expected no user creation for existing identity")
	}
}

func TestAuthenticate_ExistingToken_ReturnedUnchanged(t *testing.T) {
	existing := &model.User{ID: "user-1", UID: "1", Provider: "github"}
	existingToken := &model.Token{ID: "token-1", Value: "existing-value", UserID: "user-1"}

	userRepo := &mockUserRepo{
		findByProviderUIDFn: func(ctx context.Context, provider, uid string) (*model.User, error) {
			return existing, nil
		},
	}
	tokenRepo := &mockTokenRepo{
		findByUserIDFn: func(ctx context.Context, userID string) (*model.Token, error) {
			return existingToken, nil
		},
	}
	svc := NewService(&mockProvider{}, userRepo, tokenRepo, ServiceConfig{})

	token, _, err := svc.Authenticate(context.Background(), "sample-code")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	if token.Value != "existing-value" {
		t.Errorf("token value = %q, want %q", token.Value, "existing-value")
	}
	if tokenRepo.createCalls != 0 {
		t.Error("expected no new token when one already exists")
	}
}

func TestAuthenticate_ConcurrentUserCreate_RefindsAfterConflict(t *testing.T) {
	committed := &model.User{ID: "winner", UID: "1", Provider: "github"}
	finds := 0

	userRepo := &mockUserRepo{
		findByProviderUIDFn: func(ctx context.Context, provider, uid string) (*model.User, error) {
			finds++
			// 初回の検索では未登録、一意制約違反後の再検索で並行リクエストの行が見える
			if finds == 1 {
				return nil, nil
			}
			return committed, nil
		},
		createFn: func(ctx context.Context, user *model.User) error {
			return uniqueViolation()
		},
	}
	svc := NewService(&mockProvider{}, userRepo, &mockTokenRepo{}, ServiceConfig{})

	_, user, err := svc.Authenticate(context.Background(), "sample-code")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if user != committed {
		t.Error("expected user committed by concurrent request to be adopted")
	}
	if finds != 2 {
		t.Errorf("finds = %d, want 2", finds)
	}
}

func TestAuthenticate_ConcurrentUserCreate_RefindMissPropagatesError(t *testing.T) {
	userRepo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			return uniqueViolation()
		},
	}
	svc := NewService(&mockProvider{}, userRepo, &mockTokenRepo{}, ServiceConfig{})

	_, _, err := svc.Authenticate(context.Background(), "sample-code")
	if err == nil {
		t.Fatal("expected error when re-find after conflict misses")
	}
}

func TestIssueToken_CollisionOnPrecheck_RetriesWithFreshValue(t *testing.T) {
	var values []string
	checks := 0

	tokenRepo := &mockTokenRepo{
		existsValueFn: func(ctx context.Context, value, excludeID string) (bool, error) {
			checks++
			// 最初の候補は使用済みと報告し、リトライを強制する
			return checks == 1, nil
		},
		createFn: func(ctx context.Context, token *model.Token) error {
			values = append(values, token.Value)
			return nil
		},
	}
	svc := NewService(&mockProvider{}, &mockUserRepo{}, tokenRepo, ServiceConfig{})

	token, err := svc.issueToken(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issueToken() error = %v", err)
	}
	if checks != 2 {
		t.Errorf("uniqueness checks = %d, want 2", checks)
	}
	if token.Value == "" {
		t.Error("expected non-empty token value")
	}
	if len(values) != 1 {
		t.Errorf("creates = %d, want 1", len(values))
	}
}

func TestIssueToken_CommitConflict_RetriesWithFreshValue(t *testing.T) {
	var values []string

	tokenRepo := &mockTokenRepo{
		createFn: func(ctx context.Context, token *model.Token) error {
			values = append(values, token.Value)
			// 最初の挿入はコミット時衝突。2回目で成功する。
			if len(values) == 1 {
				return uniqueViolation()
			}
			return nil
		},
	}
	svc := NewService(&mockProvider{}, &mockUserRepo{}, tokenRepo, ServiceConfig{})

	token, err := svc.issueToken(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issueToken() error = %v", err)
	}
	if len(values) != 2 {
		t.Fatalf("creates = %d, want 2", len(values))
	}
	if values[0] == values[1] {
		t.Error("expected a fresh candidate value after commit conflict")
	}
	if token.Value != values[1] {
		t.Errorf("token value = %q, want %q", token.Value, values[1])
	}
}

func TestIssueToken_WithMaxAge_SetsExpiry(t *testing.T) {
	tokenRepo := &mockTokenRepo{}
	svc := NewService(&mockProvider{}, &mockUserRepo{}, tokenRepo, ServiceConfig{TokenMaxAge: 3600})

	token, err := svc.issueToken(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issueToken() error = %v", err)
	}
	if token.ExpiresAt == nil {
		t.Fatal("expected expiry to be set")
	}
	if !token.ExpiresAt.After(token.CreatedAt) {
		t.Error("expected expiry after creation time")
	}
}

func TestLogout_DeletesToken(t *testing.T) {
	var deleted string
	tokenRepo := &mockTokenRepo{
		deleteByValueFn: func(ctx context.Context, value string) error {
			deleted = value
			return nil
		},
	}
	svc := NewService(&mockProvider{}, &mockUserRepo{}, tokenRepo, ServiceConfig{})

	if err := svc.Logout(context.Background(), "token-value"); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if deleted != "token-value" {
		t.Errorf("deleted = %q, want %q", deleted, "token-value")
	}
}

func TestLogout_EmptyValue_ReturnsError(t *testing.T) {
	svc := NewService(&mockProvider{}, &mockUserRepo{}, &mockTokenRepo{}, ServiceConfig{})

	if err := svc.Logout(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty token value")
	}
}

func TestGenerateTokenValue_NonEmptyAndDistinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		v, err := generateTokenValue()
		if err != nil {
			t.Fatalf("generateTokenValue() error = %v", err)
		}
		if v == "" {
			t.Fatal("expected non-empty value")
		}
		if len(v) != 64 {
			t.Fatalf("value length = %d, want 64", len(v))
		}
		if seen[v] {
			t.Fatalf("duplicate value generated: %s", v)
		}
		seen[v] = true
	}
}
