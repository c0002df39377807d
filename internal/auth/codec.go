package auth

import (
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

// Вид токена кладется в claim "typ", чтобы access-токен нельзя было
// скормить refresh-эндпоинту и наоборот
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// ErrInvalidToken - единый ответ на битый, просроченный или чужой токен.
// Причину отказа наружу не различаем, она остается в логах.
var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	TokenType TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// UserID достает subject как uuid
func (c Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.FromString(c.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}

// Codec подписывает и проверяет HS256-токены общим секретом процесса
type Codec struct {
	secret []byte
}

func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret}
}

// Issue выпускает токен с subject и абсолютным exp = now + ttl.
// jti делает каждый выпуск уникальным, иначе два refresh в одну
// секунду дали бы байт-в-байт одинаковые токены.
func (c *Codec) Issue(subject uuid.UUID, typ TokenType, ttl time.Duration) (string, error) {
	jti, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := Claims{
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti.String(),
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Parse проверяет подпись и срок действия.
// Битая структура, чужая подпись и истекший exp неразличимы для вызывающего.
func (c *Codec) Parse(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
