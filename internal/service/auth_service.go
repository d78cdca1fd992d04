package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/campus-placement-api/internal/dto"
	"github.com/noah-isme/campus-placement-api/internal/models"
	"github.com/noah-isme/campus-placement-api/internal/repository"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
	"github.com/noah-isme/campus-placement-api/pkg/jobs"
	"github.com/noah-isme/campus-placement-api/pkg/mailer"
)

// MailJobType tags queued verification mails.
const MailJobType = "otp_mail"

type otpStore interface {
	Save(ctx context.Context, email string, record models.OTPRecord) error
	Get(ctx context.Context, email string) (*models.OTPRecord, error)
	UpdateAttempts(ctx context.Context, email string, record models.OTPRecord) error
	Delete(ctx context.Context, email string) error
	RevokeSession(ctx context.Context, tokenID string, until time.Time) error
	IsSessionRevoked(ctx context.Context, tokenID string) (bool, error)
}

type mailQueue interface {
	Enqueue(ctx context.Context, job jobs.Job) error
}

type auditRecorder interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// AuthConfig defines configuration for the email code flow and session tokens.
type AuthConfig struct {
	TokenSecret   string
	TokenExpiry   time.Duration
	Issuer        string
	CodeTTL       time.Duration
	CodeLength    int
	MaxAttempts   int
	AllowedDomain string
}

// ClientMeta describes the caller for audit records.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// AuthService issues one-time codes and session tokens.
type AuthService struct {
	otps      otpStore
	profiles  profileLookup
	mail      mailQueue
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance. audit may be nil.
func NewAuthService(otps otpStore, profiles profileLookup, mail mailQueue, audit auditRecorder, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = dto.NewValidator()
	}
	if config.CodeLength <= 0 {
		config.CodeLength = 6
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	if config.CodeTTL <= 0 {
		config.CodeTTL = 10 * time.Minute
	}
	if config.TokenExpiry <= 0 {
		config.TokenExpiry = 24 * time.Hour
	}
	config.AllowedDomain = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(config.AllowedDomain), "@"))
	return &AuthService{otps: otps, profiles: profiles, mail: mail, audit: audit, validator: validate, logger: logger, config: config, now: time.Now}
}

// SendCode stores a hashed code for the email and queues the mail carrying it.
func (s *AuthService) SendCode(ctx context.Context, req dto.SendCodeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !s.domainAllowed(email) {
		return appErrors.Clone(appErrors.ErrEmailDomain, fmt.Sprintf("use your @%s email address", s.config.AllowedDomain))
	}

	code, err := generateCode(s.config.CodeLength)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate code")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash code")
	}
	record := models.OTPRecord{Hash: string(hash), ExpiresAt: s.now().UTC().Add(s.config.CodeTTL)}
	if err := s.otps.Save(ctx, email, record); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store code")
	}

	msg, err := mailer.OTPMessage(email, code, s.config.CodeTTL)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render mail")
	}
	if err := s.mail.Enqueue(ctx, jobs.Job{ID: uuid.NewString(), Type: MailJobType, Payload: msg}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue verification mail")
	}
	return nil
}

// VerifyCode checks the code and returns a session. The code is single use.
func (s *AuthService) VerifyCode(ctx context.Context, req dto.VerifyCodeRequest, meta ClientMeta) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	record, err := s.otps.Get(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return nil, appErrors.Clone(appErrors.ErrOTPExpired, "verification code expired or was never requested")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load code")
	}
	if s.now().After(record.ExpiresAt) {
		s.discardCode(ctx, email)
		return nil, appErrors.ErrOTPExpired
	}
	if record.Attempts >= s.config.MaxAttempts {
		s.discardCode(ctx, email)
		return nil, appErrors.Clone(appErrors.ErrInvalidOTP, "too many attempts, request a new code")
	}
	if bcrypt.CompareHashAndPassword([]byte(record.Hash), []byte(req.Code)) != nil {
		record.Attempts++
		if err := s.otps.UpdateAttempts(ctx, email, *record); err != nil {
			s.logger.Warn("failed to record code attempt", zap.String("email", email), zap.Error(err))
		}
		return nil, appErrors.ErrInvalidOTP
	}
	s.discardCode(ctx, email)

	profileID := ""
	profile, err := s.profiles.FindByEmail(ctx, email)
	switch {
	case err == nil:
		profileID = profile.ID
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	session, err := s.IssueSession(email, profileID)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, email, models.AuditActionLogin, meta)
	return session, nil
}

// IssueSession signs a token for email. A session without a profile id reports Registered false.
func (s *AuthService) IssueSession(email, profileID string) (*models.Session, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.config.TokenExpiry)
	claims := &models.JWTClaims{
		Email:     email,
		ProfileID: profileID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.TokenSecret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}
	return &models.Session{
		AccessToken: signed,
		ExpiresIn:   int64(s.config.TokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
		Email:       email,
		Registered:  profileID != "",
	}, nil
}

// ValidateToken parses a session token and rejects deny-listed sessions.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.Email == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	revoked, err := s.otps.IsSessionRevoked(ctx, claims.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check session")
	}
	if revoked {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session ended")
	}
	return claims, nil
}

// Logout deny-lists the session until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *models.JWTClaims, meta ClientMeta) error {
	if claims == nil || claims.ID == "" {
		return appErrors.ErrUnauthorized
	}
	until := s.now().Add(s.config.TokenExpiry)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := s.otps.RevokeSession(ctx, claims.ID, until); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to end session")
	}
	s.recordAudit(ctx, claims.Email, models.AuditActionLogout, meta)
	return nil
}

// NewMailJobHandler delivers queued verification mails through sender.
func NewMailJobHandler(sender mailer.Sender) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		msg, ok := job.Payload.(mailer.Message)
		if !ok {
			return fmt.Errorf("unexpected mail payload %T", job.Payload)
		}
		return sender.Send(ctx, msg)
	}
}

func (s *AuthService) domainAllowed(email string) bool {
	if s.config.AllowedDomain == "" {
		return true
	}
	return strings.HasSuffix(email, "@"+s.config.AllowedDomain)
}

func (s *AuthService) discardCode(ctx context.Context, email string) {
	if err := s.otps.Delete(ctx, email); err != nil {
		s.logger.Warn("failed to delete code", zap.String("email", email), zap.Error(err))
	}
}

func (s *AuthService) recordAudit(ctx context.Context, email, action string, meta ClientMeta) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Create(ctx, &models.AuditLog{
		ActorEmail: &email,
		Action:     action,
		Resource:   "auth",
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record auth audit log", zap.String("action", action), zap.Error(err))
	}
}

func generateCode(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	ten := big.NewInt(10)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
