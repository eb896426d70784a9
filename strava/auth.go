// Package strava はStrava APIからアクティビティを取得し、日別のJSONファイルへ同期します。
package strava

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// TokenURL はStravaのトークンエンドポイントです。
const TokenURL = "https://www.strava.com/oauth/token"

// RefreshTokenKey は.envファイル中のリフレッシュトークンのキーです。
const RefreshTokenKey = "STRAVA_REFRESH_TOKEN"

// Credentials はトークン更新に必要な認証情報です。
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// NewHTTPClient はアクセストークンを自動更新するHTTPクライアントを生成します。
// Stravaがリフレッシュトークンをローテーションした場合はpersistが呼ばれます。
func NewHTTPClient(ctx context.Context, creds Credentials, tokenURL string, persist func(string) error) *http.Client {
	if tokenURL == "" {
		tokenURL = TokenURL
	}
	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: tokenURL,
			// Stravaはフォームパラメータでクライアント認証を受け付ける
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	src := &rotatingSource{
		src:     conf.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken}),
		last:    creds.RefreshToken,
		persist: persist,
	}
	return oauth2.NewClient(ctx, src)
}

// rotatingSource は新しいリフレッシュトークンを検出して永続化します。
type rotatingSource struct {
	mu      sync.Mutex
	src     oauth2.TokenSource
	last    string
	persist func(string) error
}

func (s *rotatingSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh access token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.RefreshToken != "" && tok.RefreshToken != s.last {
		s.last = tok.RefreshToken
		log.Info().Msg("Strava issued a new refresh token")
		if s.persist != nil {
			// 保存に失敗してもアクセストークン自体は有効
			if err := s.persist(tok.RefreshToken); err != nil {
				log.Error().Err(err).Msg("Failed to persist refresh token")
			}
		}
	}
	return tok, nil
}

// EnvFilePersister はリフレッシュトークンをenvFileに書き戻す関数を返します。
// 他のキーは保持され、プロセスの環境変数も更新されます。
func EnvFilePersister(envFile string) func(string) error {
	return func(token string) error {
		env, err := godotenv.Read(envFile)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to read %s: %w", envFile, err)
			}
			env = map[string]string{}
		}
		env[RefreshTokenKey] = token

		if err := godotenv.Write(env, envFile); err != nil {
			return fmt.Errorf("failed to write %s: %w", envFile, err)
		}
		return os.Setenv(RefreshTokenKey, token)
	}
}
