package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Thanujadevi/EMPOWERHER/internal/logger"
	"github.com/Thanujadevi/EMPOWERHER/internal/model"
	"github.com/Thanujadevi/EMPOWERHER/internal/validate"
)

// SessionStore owns who is logged in and as what. It is created once at
// startup and handed to every consumer.
type SessionStore struct {
	kv     model.KeyValueStore
	auth   model.Authenticator
	otp    *OTP
	tokens model.VerificationTokenManager
	logger *logger.Logger

	// ops serialises mutating operations; mu guards the fields below.
	ops sync.Mutex
	mu  sync.RWMutex

	user          *model.UserIdentity
	isAuthority   bool
	loading       bool
	pendingMobile string
	verifiedPhone string
	phoneProof    string
	message       string
}

func NewSessionStore(
	kv model.KeyValueStore,
	auth model.Authenticator,
	otp *OTP,
	tokens model.VerificationTokenManager,
	logger *logger.Logger,
) *SessionStore {
	return &SessionStore{
		kv:      kv,
		auth:    auth,
		otp:     otp,
		tokens:  tokens,
		logger:  logger,
		loading: true,
	}
}

// State returns a snapshot of the current session.
func (s *SessionStore) State() model.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := model.SessionState{
		IsAuthority:   s.isAuthority,
		Loading:       s.loading,
		PendingOTP:    s.pendingMobile,
		PhoneVerified: s.verifiedPhone,
		Message:       s.message,
	}
	if s.user != nil {
		u := s.user.Merge(model.ProfileUpdate{})
		state.User = &u
	}
	return state
}

// CurrentUser returns a copy of the signed-in identity.
func (s *SessionStore) CurrentUser() (model.UserIdentity, bool) {
	state := s.State()
	if state.User == nil {
		return model.UserIdentity{}, false
	}
	return *state.User, true
}

func (s *SessionStore) begin() {
	s.ops.Lock()
	s.mu.Lock()
	s.loading = true
	s.message = ""
	s.mu.Unlock()
}

func (s *SessionStore) end(err error) {
	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.message = model.Message(err)
	}
	s.mu.Unlock()
	s.ops.Unlock()
}

// Restore loads the persisted session. Missing or unreadable data leaves the
// store logged out; errors are logged and never returned.
func (s *SessionStore) Restore(ctx context.Context) model.SessionState {
	s.begin()

	user, isAuthority := s.readPersisted(ctx)

	s.mu.Lock()
	s.user = user
	s.isAuthority = user != nil && isAuthority
	s.mu.Unlock()

	s.end(nil)

	state := s.State()
	s.logger.Info("Session store: restored",
		"logged_in", state.LoggedIn(),
		"is_authority", state.IsAuthority)
	return state
}

func (s *SessionStore) readPersisted(ctx context.Context) (*model.UserIdentity, bool) {
	raw, ok, err := s.kv.Get(ctx, model.KeyCurrentUser)
	if err != nil {
		s.logger.Error("Session store: failed to read stored user",
			"error", err.Error())
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var user model.UserIdentity
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Error("Session store: failed to parse stored user",
			"error", err.Error())
		return nil, false
	}

	flag, _, err := s.kv.Get(ctx, model.KeyIsAuthority)
	if err != nil {
		s.logger.Error("Session store: failed to read authority flag",
			"error", err.Error())
		flag = ""
	}

	return &user, flag == "true"
}

// Login signs in with credentials. The authority flag follows creds.Role.
func (s *SessionStore) Login(ctx context.Context, creds model.Credentials) (err error) {
	s.begin()
	defer func() { s.end(err) }()

	s.logger.Debug("Session store: logging in", "email", creds.Email, "role", creds.Role)

	identity, err := s.auth.Authenticate(ctx, creds)
	if err != nil {
		s.logger.Info("Session store: authentication failed",
			"email", creds.Email,
			"error", err.Error())
		return userError(model.ErrOperationFailed, "Please check your credentials and try again", err)
	}

	isAuthority := creds.Role == model.RoleAuthority
	if isAuthority {
		identity.Role = model.RoleAuthority
	} else if identity.Role == "" {
		identity.Role = model.RoleStandard
	}

	if err := s.persist(ctx, identity, isAuthority); err != nil {
		s.logger.Error("Session store: failed to persist login",
			"email", creds.Email,
			"error", err.Error())
		return model.NewUserError(model.ErrPersistence, "Login failed. Please try again.", err)
	}

	s.setUser(&identity, isAuthority)
	s.logger.Info("Session store: logged in", "user_id", identity.ID, "is_authority", isAuthority)
	return nil
}

// Register creates a standard account for a verified mobile number.
func (s *SessionStore) Register(ctx context.Context, form model.Registration) error {
	return s.register(ctx, form, model.RoleStandard)
}

// RegisterAuthority creates an authority account for a verified mobile number.
func (s *SessionStore) RegisterAuthority(ctx context.Context, form model.Registration) error {
	return s.register(ctx, form, model.RoleAuthority)
}

func (s *SessionStore) register(ctx context.Context, form model.Registration, role model.Role) (err error) {
	s.begin()
	defer func() { s.end(err) }()

	s.logger.Debug("Session store: registering", "email", form.Email, "role", role)

	if err := s.checkVerified(form.MobileNumber); err != nil {
		s.logger.Info("Session store: registration without verified number",
			"mobile", form.MobileNumber,
			"error", err.Error())
		return model.NewUserError(model.ErrOperationFailed, "Please verify your mobile number first.", err)
	}

	isAuthority := role == model.RoleAuthority
	if isAuthority && (form.Division == "" || form.Designation == "" || form.BadgeNumber == "") {
		return model.NewUserError(model.ErrValidation, "Please fill in all required fields", nil)
	}

	identity := form.Identity(uuid.New(), role)

	if err := s.persist(ctx, identity, isAuthority); err != nil {
		s.logger.Error("Session store: failed to persist registration",
			"email", form.Email,
			"error", err.Error())
		return model.NewUserError(model.ErrPersistence, "Registration failed. Please try again.", err)
	}

	s.mu.Lock()
	s.user = &identity
	s.isAuthority = isAuthority
	s.phoneProof = ""
	s.verifiedPhone = ""
	s.mu.Unlock()

	s.logger.Info("Session store: registered", "user_id", identity.ID, "role", role)
	return nil
}

func (s *SessionStore) checkVerified(mobileNumber string) error {
	s.mu.RLock()
	proof := s.phoneProof
	s.mu.RUnlock()

	if proof == "" || mobileNumber == "" {
		return model.ErrPhoneNotVerified
	}
	verified, err := s.tokens.ParsePhoneToken(proof)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrPhoneNotVerified, err)
	}
	if verified != mobileNumber {
		return model.ErrPhoneNotVerified
	}
	return nil
}

// UpdateUserProfile merges update into the current identity and persists it.
func (s *SessionStore) UpdateUserProfile(ctx context.Context, update model.ProfileUpdate) (err error) {
	s.begin()
	defer func() { s.end(err) }()

	s.mu.RLock()
	current := s.user
	s.mu.RUnlock()

	if current == nil {
		return model.NewUserError(model.ErrOperationFailed, "Please log in to update your profile.", model.ErrNoActiveSession)
	}

	merged := current.Merge(update)
	if err := s.writeUser(ctx, merged); err != nil {
		s.logger.Error("Session store: failed to persist profile",
			"user_id", merged.ID,
			"error", err.Error())
		return model.NewUserError(model.ErrPersistence, "Failed to update profile. Please try again.", err)
	}

	s.mu.Lock()
	s.user = &merged
	s.mu.Unlock()

	s.logger.Debug("Session store: profile updated", "user_id", merged.ID)
	return nil
}

// Logout clears the persisted and in-memory session. Logging out twice
// succeeds.
func (s *SessionStore) Logout(ctx context.Context) (err error) {
	s.begin()
	defer func() { s.end(err) }()

	if err := s.kv.Remove(ctx, model.KeyCurrentUser); err != nil {
		s.logger.Error("Session store: failed to remove stored user", "error", err.Error())
		return model.NewUserError(model.ErrPersistence, "Failed to log out. Please try again.", err)
	}
	if err := s.kv.Remove(ctx, model.KeyIsAuthority); err != nil {
		s.logger.Error("Session store: failed to remove authority flag", "error", err.Error())
		return model.NewUserError(model.ErrPersistence, "Failed to log out. Please try again.", err)
	}

	s.mu.Lock()
	s.user = nil
	s.isAuthority = false
	s.phoneProof = ""
	s.verifiedPhone = ""
	s.pendingMobile = ""
	s.mu.Unlock()

	s.logger.Info("Session store: logged out")
	return nil
}

// SendOTP sends a verification code to mobileNumber.
func (s *SessionStore) SendOTP(ctx context.Context, mobileNumber string) (err error) {
	s.begin()
	defer func() { s.end(err) }()

	if err := validate.MobileNumber(mobileNumber); err != nil {
		return err
	}
	if err := s.otp.Send(ctx, mobileNumber); err != nil {
		s.logger.Error("Session store: failed to send otp",
			"mobile", mobileNumber,
			"error", err.Error())
		return model.NewUserError(model.ErrOperationFailed, "Failed to send OTP. Please try again.", err)
	}

	s.mu.Lock()
	s.pendingMobile = mobileNumber
	s.mu.Unlock()
	return nil
}

// VerifyOTP checks code for mobileNumber. On success the number counts as
// verified for the next registration.
func (s *SessionStore) VerifyOTP(ctx context.Context, mobileNumber, code string) (err error) {
	s.begin()
	defer func() { s.end(err) }()

	if err := validate.MobileNumber(mobileNumber); err != nil {
		return err
	}
	if err := validate.OTPCode(code); err != nil {
		return err
	}

	token, err := s.otp.Verify(ctx, mobileNumber, code)
	if err != nil {
		s.logger.Info("Session store: otp verification failed",
			"mobile", mobileNumber,
			"error", err.Error())
		return model.NewUserError(model.ErrOperationFailed, otpMessage(err), err)
	}

	s.mu.Lock()
	s.phoneProof = token
	s.verifiedPhone = mobileNumber
	s.pendingMobile = ""
	s.mu.Unlock()
	return nil
}

func otpMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrOTPNotRequested):
		return "Please request an OTP first."
	case errors.Is(err, model.ErrOTPExpired):
		return "The OTP has expired. Please request a new one."
	case errors.Is(err, model.ErrOTPAttemptsExceeded):
		return "Too many incorrect attempts. Please request a new OTP."
	case errors.Is(err, model.ErrOTPInvalid):
		return "Invalid OTP. Please try again."
	default:
		return "Failed to verify OTP. Please try again."
	}
}

func (s *SessionStore) setUser(user *model.UserIdentity, isAuthority bool) {
	s.mu.Lock()
	s.user = user
	s.isAuthority = isAuthority
	s.mu.Unlock()
}

func (s *SessionStore) persist(ctx context.Context, user model.UserIdentity, isAuthority bool) error {
	if err := s.writeUser(ctx, user); err != nil {
		return err
	}
	if isAuthority {
		if err := s.kv.Set(ctx, model.KeyIsAuthority, "true"); err != nil {
			return fmt.Errorf("failed to store authority flag: %w", err)
		}
		return nil
	}
	if err := s.kv.Remove(ctx, model.KeyIsAuthority); err != nil {
		return fmt.Errorf("failed to clear authority flag: %w", err)
	}
	return nil
}

func (s *SessionStore) writeUser(ctx context.Context, user model.UserIdentity) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := s.kv.Set(ctx, model.KeyCurrentUser, string(data)); err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}
	return nil
}

// userError keeps an existing UserError and wraps anything else.
func userError(kind error, message string, err error) error {
	var ue *model.UserError
	if errors.As(err, &ue) {
		return err
	}
	return model.NewUserError(kind, message, err)
}
