package auth

import (
	"errors"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"github.com/yigit/schoolbook/internal/pkg/apperrors"
)

func newService(ttl time.Duration) *JWTService {
	return NewJWTService(JWTConfig{SecretKey: "test-secret", AccessTokenExp: ttl, TokenIssuer: "schoolbook"})
}

func TestIssueAndValidate(t *testing.T) {
	g := NewWithT(t)
	s := newService(time.Hour)

	token, expiresIn, err := s.IssueToken(" registrar ")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(expiresIn).To(Equal(3600))

	claims, err := s.ValidateToken(token)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(claims.Operator).To(Equal("registrar"))
	g.Expect(claims.Issuer).To(Equal("schoolbook"))
}

func TestValidateRejects(t *testing.T) {
	g := NewWithT(t)
	s := newService(time.Hour)

	expired, _, err := newService(-time.Minute).IssueToken("registrar")
	g.Expect(err).NotTo(HaveOccurred())
	_, err = s.ValidateToken(expired)
	g.Expect(errors.Is(err, apperrors.ErrTokenExpired)).To(BeTrue())

	other, _, err := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, TokenIssuer: "schoolbook"}).IssueToken("registrar")
	g.Expect(err).NotTo(HaveOccurred())
	_, err = s.ValidateToken(other)
	g.Expect(errors.Is(err, apperrors.ErrUnauthorized)).To(BeTrue())

	_, err = s.ValidateToken("")
	g.Expect(errors.Is(err, apperrors.ErrUnauthorized)).To(BeTrue())
}

func TestIssueRequiresSecretAndName(t *testing.T) {
	g := NewWithT(t)

	_, _, err := NewJWTService(JWTConfig{AccessTokenExp: time.Hour}).IssueToken("registrar")
	g.Expect(err).To(MatchError(ErrNoSecret))

	_, _, err = newService(time.Hour).IssueToken("  ")
	g.Expect(errors.Is(err, apperrors.ErrValidationFailed)).To(BeTrue())
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer a.b.c", "a.b.c", false},
		{"a.b.c", "a.b.c", false},
		{`"Bearer a.b.c"`, "a.b.c", false},
		{"", "", true},
		{"Basic abc", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			g := NewWithT(t)
			got, err := ExtractBearerToken(tt.header)
			if tt.wantErr {
				g.Expect(err).To(MatchError(ErrInvalidFormat))
				return
			}
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(got).To(Equal(tt.want))
		})
	}
}
