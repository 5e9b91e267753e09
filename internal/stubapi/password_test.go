package stubapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	rq "github.com/stretchr/testify/require"
)

func TestPassword_HashAndVerify(t *testing.T) {
	hash, salt, err := hashPassword("correct horse battery staple")
	rq.NoError(t, err)
	rq.NotEmpty(t, hash)
	rq.NotEmpty(t, salt)

	ok, err := verifyPassword("correct horse battery staple", salt, hash)
	rq.NoError(t, err)
	assert.True(t, ok)

	ok, err = verifyPassword("wrong password", salt, hash)
	rq.NoError(t, err)
	assert.False(t, ok)
}

func TestPassword_SaltsDiffer(t *testing.T) {
	hash1, salt1, err := hashPassword("password123")
	rq.NoError(t, err)
	hash2, salt2, err := hashPassword("password123")
	rq.NoError(t, err)

	assert.NotEqual(t, salt1, salt2)
	assert.NotEqual(t, hash1, hash2)
}
