package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNew(t *testing.T) {
	h, err := New("")
	require.NoError(t, err)
	assert.IsType(t, Plain{}, h)

	h, err = New(ModeBcrypt)
	require.NoError(t, err)
	assert.IsType(t, Bcrypt{}, h)

	_, err = New("md5")
	assert.Error(t, err)
}

func TestPlainIsExactMatch(t *testing.T) {
	var h Plain
	stored, err := h.Hash("S3cret ")
	require.NoError(t, err)
	assert.Equal(t, "S3cret ", stored)

	assert.True(t, h.Matches(stored, "S3cret "))
	assert.False(t, h.Matches(stored, "S3cret"))
	assert.False(t, h.Matches(stored, "s3cret "))
}

func TestBcrypt(t *testing.T) {
	h := Bcrypt{Cost: bcrypt.MinCost}
	stored, err := h.Hash("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", stored)

	assert.True(t, h.Matches(stored, "hunter2"))
	assert.False(t, h.Matches(stored, "hunter3"))
	assert.False(t, h.Matches("not-a-hash", "hunter2"))
}
