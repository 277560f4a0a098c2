package auth

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/booketlist/booketlist/pkg/database"
	"github.com/booketlist/booketlist/pkg/errcodes"
	"github.com/booketlist/booketlist/pkg/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing.
	BcryptCost = 12
	// DefaultTokenExpiry is used when the service is built without one.
	DefaultTokenExpiry = 7 * 24 * time.Hour
)

// Principal kinds carried in tokens.
const (
	KindUser  = "user"
	KindAdmin = "admin"
)

// JWTClaims represents the claims in a JWT token. The subject holds the id of
// the User or Admin row named by Kind.
type JWTClaims struct {
	Kind  string `json:"kind"`
	Admin bool   `json:"admin"`
	jwt.RegisteredClaims
}

// PrincipalID returns the numeric subject of the token.
func (c *JWTClaims) PrincipalID() (int, error) {
	id, err := strconv.Atoi(c.Subject)
	return id, errors.WithStack(err)
}

// Service handles authentication operations for both users and admins.
type Service struct {
	db          *bun.DB
	jwtSecret   []byte
	tokenExpiry time.Duration
}

// NewService creates a new auth service.
func NewService(db *bun.DB, jwtSecret string, tokenExpiry time.Duration) *Service {
	if tokenExpiry <= 0 {
		tokenExpiry = DefaultTokenExpiry
	}
	return &Service{
		db:          db,
		jwtSecret:   []byte(jwtSecret),
		tokenExpiry: tokenExpiry,
	}
}

// RegisterUserOptions contains the fields accepted at sign-up.
type RegisterUserOptions struct {
	Name     string
	LastName string
	Email    string
	Password string
}

// RegisterUser creates an active user. An email already in use is a conflict.
func (s *Service) RegisterUser(ctx context.Context, opts RegisterUserOptions) (*models.User, error) {
	email := NormalizeEmail(opts.Email)

	exists, err := s.db.NewSelect().
		Model((*models.User)(nil)).
		Where("email = ? COLLATE NOCASE", email).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if exists {
		return nil, errcodes.Conflict("Email is already registered")
	}

	hash, err := HashPassword(opts.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		CreatedAt:    now,
		UpdatedAt:    now,
		Name:         opts.Name,
		LastName:     opts.LastName,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	_, err = s.db.NewInsert().Model(user).Returning("*").Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errcodes.Conflict("Email is already registered")
		}
		return nil, errors.WithStack(err)
	}

	return user, nil
}

// AuthenticateUser validates credentials and returns the user if valid. A
// blocked account is rejected the same way as bad credentials, but only after
// the password checks out.
func (s *Service) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Where("u.email = ? COLLATE NOCASE", NormalizeEmail(email)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.Unauthorized("Invalid email or password")
		}
		return nil, errors.WithStack(err)
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, errcodes.Unauthorized("Invalid email or password")
	}
	if !user.IsActive {
		return nil, errcodes.Unauthorized("Account is blocked")
	}

	return user, nil
}

// AuthenticateAdmin validates admin credentials.
func (s *Service) AuthenticateAdmin(ctx context.Context, email, password string) (*models.Admin, error) {
	admin := &models.Admin{}
	err := s.db.NewSelect().
		Model(admin).
		Where("adm.email = ? COLLATE NOCASE", NormalizeEmail(email)).
		Where("adm.is_active = ?", true).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.Unauthorized("Invalid email or password")
		}
		return nil, errors.WithStack(err)
	}

	if !CheckPassword(password, admin.PasswordHash) {
		return nil, errcodes.Unauthorized("Invalid email or password")
	}

	return admin, nil
}

// GenerateToken creates a signed token for the given principal.
func (s *Service) GenerateToken(kind string, id int) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Kind:  kind,
		Admin: kind == KindAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.Itoa(id),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", errors.WithStack(err)
	}

	return signedToken, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// GetActiveUser retrieves an active user by ID.
func (s *Service) GetActiveUser(ctx context.Context, id int) (*models.User, error) {
	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Where("u.id = ?", id).
		Where("u.is_active = ?", true).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return user, nil
}

// GetActiveAdmin retrieves an active admin by ID.
func (s *Service) GetActiveAdmin(ctx context.Context, id int) (*models.Admin, error) {
	admin := &models.Admin{}
	err := s.db.NewSelect().
		Model(admin).
		Where("adm.id = ?", id).
		Where("adm.is_active = ?", true).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return admin, nil
}

// NormalizeEmail trims and lowercases an address before it is stored or
// looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(hashedPassword), nil
}

// CheckPassword compares a password with a hash.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
