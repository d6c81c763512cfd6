package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/oauth"
	"github.com/mbolis/forms-app/log"
	"github.com/mbolis/forms-app/repository"
)

// RefreshTTL is how long a refresh token can be redeemed.
const RefreshTTL = 30 * 24 * time.Hour

type credentialsVerifier struct {
	users  *repository.UserRepository
	tokens *repository.TokenRepository
}

func CredentialsVerifier(repos repository.Repositories) oauth.CredentialsVerifier {
	return &credentialsVerifier{repos.Users, repos.Tokens}
}

func (cs *credentialsVerifier) ValidateUser(username string, password string, scope string, r *http.Request) error {
	_, err := cs.users.Authenticate(r.Context(), username, password)
	if err != nil {
		log.Debugf("login.validate_user %s: %v", username, err)
	}
	return err
}

func (cs *credentialsVerifier) StoreTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	return cs.tokens.Store(context.Background(), credential, tokenID, refreshTokenID, time.Now().Add(RefreshTTL))
}

func (cs *credentialsVerifier) ValidateTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	ctx := context.Background()
	if err := cs.tokens.Consume(ctx, credential, tokenID, refreshTokenID); err != nil {
		log.Debugf("refresh.validate_token %s: %v", credential, err)
		return errors.New("could not refresh")
	}

	// a user blocked since the token was issued must not get a new one
	u, err := cs.users.GetByUsername(ctx, credential)
	if err != nil || u.Blocked {
		return errors.New("could not refresh")
	}
	return nil
}

// AddClaims puts the user's roles in the token, comma separated.
func (cs *credentialsVerifier) AddClaims(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	u, err := cs.users.GetByUsername(r.Context(), credential)
	if err != nil {
		return nil, err
	}
	return map[string]string{"roles": strings.Join(u.Roles, ",")}, nil
}

func (*credentialsVerifier) AddProperties(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	return map[string]string{}, nil
}

func (*credentialsVerifier) ValidateClient(clientID string, clientSecret string, scope string, r *http.Request) error {
	return errors.New("not supported")
}

func NewBearerServer(repos repository.Repositories, secret string, ttl time.Duration) *oauth.BearerServer {
	return oauth.NewBearerServer(secret, ttl, CredentialsVerifier(repos), nil)
}
