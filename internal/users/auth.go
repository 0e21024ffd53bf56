package users

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/enzononato/adna-harmony-suite/pkg/logging"
)

// Claims is the JWT payload carried by authenticated requests.
type Claims struct {
	Role  Role   `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Authenticator verifies logins and issues HMAC-signed JWTs.
type Authenticator struct {
	store  *Store
	secret []byte
	ttl    time.Duration
	logger *logging.Logger
}

// NewAuthenticator creates an authenticator.
func NewAuthenticator(store *Store, secret string, ttl time.Duration, logger *logging.Logger) *Authenticator {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Authenticator{store: store, secret: []byte(secret), ttl: ttl, logger: logger}
}

// Login checks the credentials and returns a signed token plus the
// account. Unknown email and wrong password are indistinguishable to the
// caller.
func (a *Authenticator) Login(ctx context.Context, req *LoginRequest) (string, *User, error) {
	u, err := a.store.GetByEmail(ctx, req.Email)
	if errors.Is(err, ErrUserNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := a.issue(u)
	if err != nil {
		return "", nil, err
	}
	a.logger.Info("user logged in", "user_id", u.ID, "role", u.Role)
	return token, u, nil
}

// Verify parses and validates a token string.
func (a *Authenticator) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	if !claims.Role.Valid() {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}

func (a *Authenticator) issue(u *User) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		Role:  u.Role,
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", errors.New("users: sign token failed")
	}
	return signed, nil
}
