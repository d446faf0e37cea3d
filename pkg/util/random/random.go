package random

import (
	"crypto/rand"
	"math/big"

	"usermanagement_server/pkg/constants"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GetRandomString returns length alphanumeric characters from crypto/rand.
func GetRandomString(length int) string {
	result := make([]byte, length)
	charsetLen := big.NewInt(int64(len(charset)))
	for i := range result {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			result[i] = 'x'
			continue
		}
		result[i] = charset[n.Int64()]
	}
	return string(result)
}

// GenerateUsername builds a default name such as "user_aB3dE9xQ".
// The result always satisfies the username rules.
func GenerateUsername() string {
	return constants.DEFAULT_USERNAME_PREFIX + GetRandomString(constants.DEFAULT_USERNAME_SUFFIX)
}
