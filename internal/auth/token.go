package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Permission represents an access level
type Permission string

const (
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
)

var ErrInvalidToken = errors.New("invalid token")

const Issuer = "adte-buyer-agent"

// Permissions is the AdCP permission model carried in bearer token claims.
type Permissions struct {
	Products  []Permission `json:"products,omitempty"`
	MediaBuys []Permission `json:"media_buys,omitempty"`
	Creatives []Permission `json:"creatives,omitempty"`
	Reports   []Permission `json:"reports,omitempty"`
}

// FullAccess can create and update media buys.
func FullAccess() Permissions {
	return Permissions{
		Products:  []Permission{PermissionRead},
		MediaBuys: []Permission{PermissionRead, PermissionWrite},
		Creatives: []Permission{PermissionRead, PermissionWrite},
		Reports:   []Permission{PermissionRead, PermissionWrite},
	}
}

// ReadOnly can browse but a sales agent will refuse create_media_buy.
func ReadOnly() Permissions {
	return Permissions{
		Products:  []Permission{PermissionRead},
		MediaBuys: []Permission{PermissionRead},
		Creatives: []Permission{PermissionRead},
		Reports:   []Permission{PermissionRead},
	}
}

// CanCreateMediaBuy reports whether the permissions allow create_media_buy.
func (p Permissions) CanCreateMediaBuy() bool {
	for _, perm := range p.MediaBuys {
		if perm == PermissionWrite {
			return true
		}
	}
	return false
}

type Claims struct {
	jwt.RegisteredClaims
	Permissions Permissions `json:"permissions,omitempty"`
}

// TokenRequest describes a token to mint.
type TokenRequest struct {
	Subject     string
	Permissions Permissions
	TTL         time.Duration
	Now         time.Time
}

// MintToken signs an HS256 bearer token in the shape sales agents verify.
func MintToken(secret string, req TokenRequest) (string, *Claims, error) {
	if secret == "" {
		return "", nil, errors.New("signing secret is empty")
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	ttl := req.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    Issuer,
			Subject:   req.Subject,
		},
		Permissions: req.Permissions,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ParseToken verifies a token minted with MintToken.
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
