// Package auth はOAuth認証フローとBearerトークン発行を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/blogapi/internal/model"
	"github.com/hitoshi/blogapi/internal/repository"
)

// Profile はOAuthプロバイダーから取得した正規化済みユーザー情報を表す。
type Profile struct {
	UID       string // プロバイダー側のユーザーID（文字列に正規化済み）
	Login     string
	Name      string
	URL       string
	AvatarURL string
	Provider  string
}

// Provider はOAuth認証プロバイダーのインターフェース。
// 将来的に複数IdPに対応するための抽象化。
type Provider interface {
	// ExchangeCode は認可コードをプロバイダーのアクセストークンに交換する。
	ExchangeCode(ctx context.Context, code string) (string, error)
	// FetchProfile はアクセストークンでユーザープロフィールを取得する。
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	// TokenMaxAge はトークンの有効期間（秒）。0の場合は無期限。
	TokenMaxAge int
}

// Service は認可コードをBearerトークンに変換する認証フローを提供する。
type Service struct {
	provider  Provider
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	config    ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	provider Provider,
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		provider:  provider,
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		config:    config,
	}
}

// Authenticate は認可コードをBearerトークンに交換する。
//
// コードの交換、プロフィール取得、(provider, uid)によるユーザーの
// find-or-create、トークンの再利用または新規発行を順に行う。
// 認証の失敗はすべてmodel.ErrAuthenticationFailedに集約され、
// どの段階で失敗したかは呼び出し元に伝えない（詳細はログのみに残す）。
func (s *Service) Authenticate(ctx context.Context, code string) (*model.Token, *model.User, error) {
	// 空のコードは外部呼び出しを行わずに即座に失敗させる
	if code == "" {
		return nil, nil, fmt.Errorf("empty authorization code: %w", model.ErrAuthenticationFailed)
	}

	// 1. 認可コードをプロバイダーのアクセストークンに交換
	accessToken, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		slog.Warn("oauth code exchange failed", slog.String("error", err.Error()))
		return nil, nil, fmt.Errorf("code exchange: %w", model.ErrAuthenticationFailed)
	}

	// 2. プロフィールを取得
	profile, err := s.provider.FetchProfile(ctx, accessToken)
	if err != nil {
		slog.Warn("oauth profile fetch failed", slog.String("error", err.Error()))
		return nil, nil, fmt.Errorf("profile fetch: %w", model.ErrAuthenticationFailed)
	}

	// 3. (provider, uid)でユーザーをfind-or-create
	user, err := s.prepareUser(ctx, profile)
	if err != nil {
		return nil, nil, err
	}

	// 4. 既存トークンを再利用、なければ新規発行
	token, err := s.tokenRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find token: %w", err)
	}
	if token == nil {
		token, err = s.issueToken(ctx, user.ID)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("token issued",
			slog.String("user_id", user.ID),
			slog.String("provider", profile.Provider),
		)
	}

	return token, user, nil
}

// Logout は指定値のトークンを破棄する。
func (s *Service) Logout(ctx context.Context, tokenValue string) error {
	if tokenValue == "" {
		return fmt.Errorf("token value is required")
	}

	if err := s.tokenRepo.DeleteByValue(ctx, tokenValue); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	slog.Info("user logged out")
	return nil
}

// prepareUser は(provider, uid)でユーザーを検索し、存在しなければ作成する。
// find-then-createは非アトミックなため、同一IDに対する並行作成が
// 一意制約違反になった場合は一度だけ再検索し、並行リクエストが
// コミットした行を採用する。再検索でも見つからなければエラーを伝播する。
func (s *Service) prepareUser(ctx context.Context, profile *Profile) (*model.User, error) {
	user, err := s.userRepo.FindByProviderUID(ctx, profile.Provider, profile.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	now := time.Now()
	newUser := &model.User{
		ID:        uuid.New().String(),
		UID:       profile.UID,
		Provider:  profile.Provider,
		Login:     profile.Login,
		Name:      profile.Name,
		URL:       profile.URL,
		AvatarURL: profile.AvatarURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		if repository.IsUniqueViolation(err) {
			existing, findErr := s.userRepo.FindByProviderUID(ctx, profile.Provider, profile.UID)
			if findErr != nil {
				return nil, fmt.Errorf("failed to re-find user after conflict: %w", findErr)
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user created",
		slog.String("user_id", newUser.ID),
		slog.String("login", newUser.Login),
		slog.String("provider", newUser.Provider),
	)

	return newUser, nil
}

// issueToken は一意な値を持つ新規トークンを発行する。
//
// 候補値を生成してストアに存在しないことを確認してから挿入するが、
// 並行発行では両者が同じ候補を「未使用」と観測しうるため、
// 最終的な一意性はtokens.tokenの一意インデックスに委ねる。
// 挿入が一意制約違反になった場合は新しい候補で再試行する。
func (s *Service) issueToken(ctx context.Context, userID string) (*model.Token, error) {
	token := &model.Token{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if s.config.TokenMaxAge > 0 {
		expires := token.CreatedAt.Add(time.Duration(s.config.TokenMaxAge) * time.Second)
		token.ExpiresAt = &expires
	}

	for {
		value, err := generateTokenValue()
		if err != nil {
			return nil, fmt.Errorf("failed to generate token value: %w", err)
		}

		// 事前チェックは最適化であり、構築中のレコード自身は除外して判定する
		exists, err := s.tokenRepo.ExistsValue(ctx, value, token.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check token uniqueness: %w", err)
		}
		if exists {
			continue
		}

		token.Value = value
		if err := s.tokenRepo.Create(ctx, token); err != nil {
			if repository.IsUniqueViolation(err) {
				// コミット時の衝突。新しい候補で再試行する。
				continue
			}
			return nil, fmt.Errorf("failed to create token: %w", err)
		}

		return token, nil
	}
}

// generateTokenValue は256ビットの暗号論的乱数をhexエンコードした
// 不透明トークン値を生成する。
func generateTokenValue() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
