// Package auth signs the single local user in with a one-time code and keeps
// the session in the user slot.
//
// Codes are random, stored only as a bcrypt hash and verified against it.
// Delivery goes through a Sender; the CLI uses WriterSender, which prints the
// code to the terminal in place of an SMS gateway.
package auth

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/foodplannery/internal/constants"
	"github.com/julianstephens/foodplannery/internal/logger"
	"github.com/julianstephens/foodplannery/internal/models"
	"github.com/julianstephens/foodplannery/internal/storage"
)

var (
	ErrNotAuthenticated = errors.New("not logged in")
	ErrPhoneRequired    = errors.New("phone number is required")
	ErrNoPendingCode    = errors.New("no verification code has been requested for this phone")
	ErrCodeExpired      = errors.New("verification code has expired")
	ErrInvalidCode      = errors.New("verification code is incorrect")
	ErrTooManyAttempts  = errors.New("too many incorrect codes, request a new one")
)

// Slots is the durable key-value storage the session lives in.
type Slots interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Sender delivers a freshly generated code to the phone number.
type Sender interface {
	Send(phone, code string) error
}

// WriterSender writes the code to W. It stands in for a real SMS gateway.
type WriterSender struct {
	W io.Writer
}

func (s WriterSender) Send(phone, code string) error {
	_, err := fmt.Fprintf(s.W, "Verification code for %s: %s\n", phone, code)
	return err
}

type pendingCode struct {
	Phone     string    `json:"phone"`
	Hash      string    `json:"hash"`
	ExpiresAt time.Time `json:"expiresAt"`
	Attempts  int       `json:"attempts"`
}

type Option func(*Service)

func WithSender(sender Sender) Option {
	return func(s *Service) { s.sender = sender }
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCodeFunc replaces the random code generator.
func WithCodeFunc(fn func() (string, error)) Option {
	return func(s *Service) { s.newCode = fn }
}

func WithIDFunc(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithHashCost sets the bcrypt cost used for pending codes.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

type Service struct {
	mu      sync.Mutex
	slots   Slots
	sender  Sender
	ttl     time.Duration
	cost    int
	now     func() time.Time
	newCode func() (string, error)
	newID   func() string
	user    *models.User
}

// New restores any persisted session from slots.
func New(slots Slots, opts ...Option) *Service {
	s := &Service{
		slots:   slots,
		sender:  WriterSender{W: io.Discard},
		ttl:     constants.DefaultOTPTTL,
		cost:    bcrypt.DefaultCost,
		now:     time.Now,
		newCode: randomCode,
		newID:   func() string { return "user-" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.user = s.loadUser()
	return s
}

func (s *Service) loadUser() *models.User {
	data, err := s.slots.Get(constants.SlotUser)
	if err != nil {
		if !storage.IsNotFound(err) {
			logger.Warn("Failed to read session", "error", err)
		}
		return nil
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil || user.ID == "" {
		logger.Warn("Ignoring unreadable session", "slot", constants.SlotUser, "error", err)
		return nil
	}
	return &user
}

// RequestOTP generates a code for phone, stores its hash and hands it to the Sender.
// A new request replaces any earlier pending code.
func (s *Service) RequestOTP(phone string) error {
	phone = normalizePhone(phone)
	if phone == "" {
		return ErrPhoneRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	code, err := s.newCode()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash code: %w", err)
	}

	pending := pendingCode{
		Phone:     phone,
		Hash:      string(hash),
		ExpiresAt: s.now().Add(s.ttl),
	}
	data, err := json.Marshal(pending)
	if err != nil {
		return err
	}
	if err := s.slots.Set(constants.SlotOTP, data); err != nil {
		return fmt.Errorf("failed to store pending code: %w", err)
	}

	if err := s.sender.Send(phone, code); err != nil {
		return fmt.Errorf("failed to deliver code: %w", err)
	}
	logger.Info("Verification code requested", "expires_at", pending.ExpiresAt.Format(time.RFC3339))
	return nil
}

// Login checks code against the pending challenge for phone and starts a session.
func (s *Service) Login(phone, code string) (models.User, error) {
	phone = normalizePhone(phone)
	if phone == "" {
		return models.User{}, ErrPhoneRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.slots.Get(constants.SlotOTP)
	if err != nil {
		if storage.IsNotFound(err) {
			return models.User{}, ErrNoPendingCode
		}
		return models.User{}, fmt.Errorf("failed to read pending code: %w", err)
	}

	var pending pendingCode
	if err := json.Unmarshal(data, &pending); err != nil {
		_ = s.slots.Delete(constants.SlotOTP)
		return models.User{}, ErrNoPendingCode
	}
	if pending.Phone != phone {
		return models.User{}, ErrNoPendingCode
	}
	if !s.now().Before(pending.ExpiresAt) {
		_ = s.slots.Delete(constants.SlotOTP)
		return models.User{}, ErrCodeExpired
	}
	if err := bcrypt.CompareHashAndPassword([]byte(pending.Hash), []byte(strings.TrimSpace(code))); err != nil {
		return models.User{}, s.recordFailedAttempt(pending)
	}

	user := models.User{
		ID:    s.newID(),
		Phone: phone,
		Preferences: models.Preferences{
			Dietary:   []string{},
			Allergies: []string{},
		},
	}
	if err := s.saveUser(user); err != nil {
		return models.User{}, err
	}
	if err := s.slots.Delete(constants.SlotOTP); err != nil {
		logger.Warn("Failed to clear pending code", "error", err)
	}

	s.user = &user
	logger.Info("Logged in", "user", user.ID)
	return user, nil
}

// recordFailedAttempt must be called with s.mu held. The pending code is
// discarded once MaxOTPAttempts wrong codes have been tried.
func (s *Service) recordFailedAttempt(pending pendingCode) error {
	pending.Attempts++
	if pending.Attempts >= constants.MaxOTPAttempts {
		if err := s.slots.Delete(constants.SlotOTP); err != nil {
			logger.Warn("Failed to clear pending code", "error", err)
		}
		logger.Warn("Verification code discarded after repeated failures", "attempts", pending.Attempts)
		return ErrTooManyAttempts
	}

	data, err := json.Marshal(pending)
	if err != nil {
		return err
	}
	if err := s.slots.Set(constants.SlotOTP, data); err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return ErrInvalidCode
}

func (s *Service) saveUser(user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.slots.Set(constants.SlotUser, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Logout ends the session. Logging out while logged out is not an error.
func (s *Service) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.slots.Delete(constants.SlotUser); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.user = nil
	return nil
}

func (s *Service) CurrentUser() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// RequireUser returns the current user or ErrNotAuthenticated.
func (s *Service) RequireUser() (models.User, error) {
	user, ok := s.CurrentUser()
	if !ok {
		return models.User{}, ErrNotAuthenticated
	}
	return user, nil
}

// CurrentUserID returns the signed-in user's id, or "" when logged out.
func (s *Service) CurrentUserID() string {
	user, _ := s.CurrentUser()
	return user.ID
}

func (s *Service) UpdateProfile(patch models.UserPatch) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return models.User{}, ErrNotAuthenticated
	}

	updated := patch.Apply(*s.user)
	if err := s.saveUser(updated); err != nil {
		return models.User{}, err
	}
	s.user = &updated
	return updated, nil
}

func normalizePhone(phone string) string {
	return strings.Join(strings.Fields(phone), "")
}

func randomCode() (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < constants.OTPLength; i++ {
		limit.Mul(limit, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", constants.OTPLength, n), nil
}
