package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/go-oauth2/oauth2/v4"
	oauth2errors "github.com/go-oauth2/oauth2/v4/errors"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/server"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

// Options configures token issuance
type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
	// ClientID is the first-party public client used by the web frontend and the login endpoint
	ClientID string
}

// OAuthService issues, validates and revokes access tokens for users.
// Only the password grant is enabled.
type OAuthService struct {
	server   *server.Server
	manager  *manage.Manager
	db       *gorm.DB
	users    services.UserService
	secret   []byte
	clientID string
}

func NewOAuthService(db *gorm.DB, users services.UserService, opts Options) *OAuthService {
	manager := manage.NewDefaultManager()
	manager.SetPasswordTokenCfg(&manage.Config{
		AccessTokenExp:    opts.TokenTTL,
		IsGenerateRefresh: false,
	})

	// Use JWT for access tokens
	manager.MapAccessGenerate(NewCustomJWTAccessGenerate([]byte(opts.JWTSecret), jwt.SigningMethodHS512, db))

	// Configure token store
	manager.MustTokenStorage(NewGormTokenStore(db), nil)

	// Configure client store
	manager.MapClientStorage(NewGormClientStore(db))

	o := &OAuthService{
		manager:  manager,
		db:       db,
		users:    users,
		secret:   []byte(opts.JWTSecret),
		clientID: opts.ClientID,
	}

	srv := server.NewDefaultServer(manager)
	srv.SetAllowedGrantType(oauth2.PasswordCredentials)
	srv.SetClientInfoHandler(server.ClientFormHandler)
	srv.SetPasswordAuthorizationHandler(o.authorizePassword)
	srv.SetInternalErrorHandler(func(err error) *oauth2errors.Response {
		log.WithError(err).Error("OAuth2 internal error")
		return nil
	})
	o.server = srv

	return o
}

func (o *OAuthService) GetServer() *server.Server {
	return o.server
}

// EnsureClient registers the first-party public client if it does not exist yet
func (o *OAuthService) EnsureClient(ctx context.Context) error {
	client := models.OAuthClient{
		ID:         o.clientID,
		Name:       "Foodgram web",
		Public:     true,
		GrantTypes: string(oauth2.PasswordCredentials),
	}
	res := o.db.WithContext(ctx).Where(models.OAuthClient{ID: o.clientID}).FirstOrCreate(&client)
	if res.Error != nil {
		return fmt.Errorf("register oauth client: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		log.WithField("client_id", o.clientID).Info("Registered first-party OAuth2 client")
	}
	return nil
}

// authorizePassword resolves the resource owner of a password grant; username is the email
func (o *OAuthService) authorizePassword(ctx context.Context, clientID, username, password string) (string, error) {
	user, err := o.users.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return "", oauth2errors.ErrInvalidGrant
		}
		return "", err
	}
	return strconv.FormatUint(uint64(user.ID), 10), nil
}

// IssueToken creates an access token for an already authenticated user
func (o *OAuthService) IssueToken(ctx context.Context, user *models.User) (oauth2.TokenInfo, error) {
	return o.manager.GenerateAccessToken(ctx, oauth2.PasswordCredentials, &oauth2.TokenGenerateRequest{
		ClientID: o.clientID,
		UserID:   strconv.FormatUint(uint64(user.ID), 10),
	})
}

// RevokeToken deletes the stored token so it no longer validates
func (o *OAuthService) RevokeToken(ctx context.Context, access string) error {
	return o.manager.RemoveAccessToken(ctx, access)
}

// ValidateToken verifies signature and expiry, then checks the token was not revoked
func (o *OAuthService) ValidateToken(ctx context.Context, access string) (*Claims, error) {
	mapClaims, err := parseAndValidateJWT(access, o.secret)
	if err != nil {
		return nil, err
	}
	claims, err := claimsFrom(mapClaims)
	if err != nil {
		return nil, err
	}
	if _, err := o.manager.LoadAccessToken(ctx, access); err != nil {
		return nil, fmt.Errorf("%w: token was revoked or expired", ErrInvalidToken)
	}
	return claims, nil
}
