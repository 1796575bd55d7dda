package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	Cost = bcrypt.MinCost
}

func TestHashVerifyRoundTrip(t *testing.T) {
	for _, plain := range []string{"a", "secret123", "pässwörd", strings.Repeat("x", 60)} {
		hash, err := Hash(plain)
		require.NoError(t, err)
		assert.NotEqual(t, plain, hash)
		assert.True(t, Verify(hash, plain), "round trip for %q", plain)
		assert.False(t, Verify(hash, plain+"!"), "mismatch for %q", plain)
	}
}

func TestHashAcceptsPasswordsPastBcryptLimit(t *testing.T) {
	cases := map[string]string{
		"ascii 73 bytes":     strings.Repeat("a", 73),
		"ascii 200 bytes":    strings.Repeat("correct horse ", 15),
		"multibyte 80 bytes": strings.Repeat("ü", 40),
	}
	for name, plain := range cases {
		t.Run(name, func(t *testing.T) {
			require.Greater(t, len(plain), 72)

			hash, err := Hash(plain)
			require.NoError(t, err)
			assert.True(t, Verify(hash, plain))
		})
	}
}

func TestLongPasswordsDifferPastByte72(t *testing.T) {
	long := strings.Repeat("a", 72) + "b"
	hash, err := Hash(long)
	require.NoError(t, err)

	assert.False(t, Verify(hash, strings.Repeat("a", 72)))
	assert.False(t, Verify(hash, strings.Repeat("a", 72)+"c"))
	assert.True(t, Verify(hash, long))
}

func TestHashUsesFreshSalt(t *testing.T) {
	first, err := Hash("secret123")
	require.NoError(t, err)
	second, err := Hash("secret123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, Verify(first, "secret123"))
	assert.True(t, Verify(second, "secret123"))
}

func TestVerifyRejectsEmptyOrPlainHash(t *testing.T) {
	assert.False(t, Verify("", "anything"))
	assert.False(t, Verify("secret123", "secret123"))
}

func TestGenerate(t *testing.T) {
	code, err := Generate(8, CodeCharset)
	require.NoError(t, err)
	assert.Len(t, code, 8)
	for _, r := range code {
		assert.True(t, strings.ContainsRune(CodeCharset, r))
	}

	_, err = Generate(0, CodeCharset)
	assert.Error(t, err)
	_, err = Generate(4, "")
	assert.Error(t, err)
}
