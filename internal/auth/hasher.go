// Package auth содержит хэширование паролей и кодек токенов сессии.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Параметры Argon2id для серверного хэширования
const (
	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024 // 64 MB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
	saltLen             = 16
)

type Hasher struct{}

func NewHasher() *Hasher { return &Hasher{} }

// Hash возвращает PHC-строку вида
// $argon2id$v=19$m=65536,t=3,p=1$<salt>$<key>.
// Соль вшита в результат, отдельно хранить ничего не нужно.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify сверяет пароль с PHC-строкой. Сравнение ключей только через
// subtle.ConstantTimeCompare. Битый хэш - просто false, не ошибка:
// вызывающий код не должен узнать, что именно лежало в БД.
func (h *Hasher) Verify(password, encoded string) bool {
	salt, key, p, ok := parsePHC(encoded)
	if !ok {
		return false
	}
	got := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(got, key) == 1
}

type phcParams struct {
	memory  uint32
	time    uint32
	threads uint8
}

func parsePHC(encoded string) (salt, key []byte, p phcParams, ok bool) {
	// ожидаем: "", "argon2id", "v=19", "m=...,t=...,p=...", salt, key
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, phcParams{}, false
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, nil, phcParams{}, false
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return nil, nil, phcParams{}, false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, phcParams{}, false
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return nil, nil, phcParams{}, false
	}
	return salt, key, p, true
}
