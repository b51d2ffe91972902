package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// GetSHA256Hash вычисляет хеш SHA-256 для входной строки.
// Используется для создания стабильных, контентно-зависимых ключей.
func GetSHA256Hash(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}

// ShortSHA256 возвращает первые n hex-символов SHA-256 хеша строки.
// При некорректном n возвращается полный дайджест (64 символа).
func ShortSHA256(text string, n int) string {
	full := GetSHA256Hash(text)
	if n <= 0 || n > len(full) {
		return full
	}
	return full[:n]
}
