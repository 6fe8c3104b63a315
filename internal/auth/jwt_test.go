package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken("user-123", "alice", secret, time.Hour)
	require.NoError(t, err)

	userID, err := GetUserIDFromToken(tok, secret)
	require.NoError(t, err)
	require.Equal(t, "user-123", userID)
}

func TestGetUserIDFromToken_Errors(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")

	expired, err := GenerateToken("u1", "bob", secret, -time.Second)
	require.NoError(t, err)

	wrongSecret, err := GenerateToken("u2", "carol", []byte("other-secret"), time.Hour)
	require.NoError(t, err)

	noSubject, err := GenerateToken("", "dave", secret, time.Hour)
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u3"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "expired", token: expired, wantErr: ErrTokenExpired},
		{name: "wrong_secret", token: wrongSecret, wantErr: ErrInvalidToken},
		{name: "missing_subject", token: noSubject, wantErr: ErrInvalidToken},
		{name: "none_algorithm", token: noneAlg, wantErr: ErrInvalidToken},
		{name: "garbage", token: "not-a-token", wantErr: ErrInvalidToken},
		{name: "empty", token: "", wantErr: ErrInvalidToken},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := GetUserIDFromToken(tc.token, secret)
			require.Error(t, err)
			require.True(t, errors.Is(err, tc.wantErr), "expected %v, got %v", tc.wantErr, err)
		})
	}
}
