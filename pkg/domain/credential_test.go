package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "voteauth/pkg/domain-errors"
)

// TestParseCredential_Invariants validates the parsing invariant:
// credentials must match the printed card shape and carry a known
// revision digit before any external or persistent access happens.
func TestParseCredential_Invariants(t *testing.T) {
	t.Run("splits id and revision", func(t *testing.T) {
		id, rev, err := ParseCredential("A123456780")
		require.NoError(t, err)
		assert.Equal(t, StudentID("A12345678"), id)
		assert.Equal(t, RevisionInitial, rev)
	})

	t.Run("accepts reissued revision", func(t *testing.T) {
		id, rev, err := ParseCredential("B01X123451")
		require.NoError(t, err)
		assert.Equal(t, StudentID("B01X12345"), id)
		assert.Equal(t, RevisionReissued, rev)
	})

	t.Run("accepts alphabetic fourth character", func(t *testing.T) {
		id, _, err := ParseCredential("R05B223330")
		require.NoError(t, err)
		assert.Equal(t, StudentID("R05B22333"), id)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, raw := range []string{
			"",
			"A12345678",    // too short
			"A1234567800",  // too long
			"a123456780",   // lowercase leading letter
			"AA23456780",   // letter where digit expected
			"A12x456780",   // lowercase fourth character
			"A1234567X0",   // letter inside numeric run
			"A123456782",   // revision outside {0,1}
			"A12345678\n0", // embedded newline
		} {
			_, _, err := ParseCredential(raw)
			require.Error(t, err, "raw %q", raw)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeCardInvalid), "raw %q", raw)
		}
	})
}

func TestParseCardToken(t *testing.T) {
	t.Run("accepts lowercase hex", func(t *testing.T) {
		tok, err := ParseCardToken("0a1b2c3d")
		require.NoError(t, err)
		assert.Equal(t, CardToken("0a1b2c3d"), tok)
	})

	t.Run("rejects non-hex and wrong length", func(t *testing.T) {
		for _, raw := range []string{"", "0A1B2C3D", "0a1b2c3", "0a1b2c3d4", "zzzzzzzz"} {
			_, err := ParseCardToken(raw)
			require.Error(t, err, "raw %q", raw)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeCardInvalid), "raw %q", raw)
		}
	})
}

func TestParseProtocolVersion(t *testing.T) {
	t.Run("accepts v1", func(t *testing.T) {
		v, err := ParseProtocolVersion("1")
		require.NoError(t, err)
		assert.Equal(t, ProtocolV1, v)
	})

	t.Run("rejects unknown versions", func(t *testing.T) {
		for _, raw := range []string{"", "0", "2", "v1"} {
			_, err := ParseProtocolVersion(raw)
			require.Error(t, err, "raw %q", raw)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeVersionNotSupported))
		}
	})
}

func TestParseKindCode(t *testing.T) {
	for _, raw := range []string{"31", "3U", "T0", "NU", "NG"} {
		kind, err := ParseKindCode(raw)
		require.NoError(t, err)
		assert.Equal(t, KindCode(raw), kind)
	}

	_, err := ParseKindCode("")
	require.Error(t, err)
	_, err = ParseKindCode("lower")
	require.Error(t, err)
}
