// Package auth signs users in and out. It validates credentials locally,
// calls the auth endpoints, persists the resulting session as one group,
// and reports every outcome through a notify.Notifier.
package auth

import (
	"context"
	"time"

	"taskflow/internal/api"
	"taskflow/internal/apperr"
	"taskflow/internal/form"
	"taskflow/internal/notify"
	"taskflow/internal/session"
)

// Notification contexts.
const (
	OpLogin          = "login"
	OpRegister       = "register"
	OpForgotPassword = "forgotPassword"
	OpResetPassword  = "resetPassword"
	OpLogout         = "logout"
)

// Client is the subset of the REST client used for authentication.
type Client interface {
	Login(ctx context.Context, creds api.Credentials) (api.LoginResponse, error)
	Register(ctx context.Context, reg api.Registration) (api.MessageResponse, error)
	ForgotPassword(ctx context.Context, email string) (api.MessageResponse, error)
	ResetPassword(ctx context.Context, reset api.PasswordReset) (api.MessageResponse, error)
}

// Service implements the account operations.
type Service struct {
	client   Client
	sessions *session.Manager
	notifier notify.Notifier
}

// New creates a Service.
func New(client Client, sessions *session.Manager, notifier notify.Notifier) *Service {
	return &Service{client: client, sessions: sessions, notifier: notifier}
}

// Current returns the signed-in user, if any.
func (s *Service) Current() (session.User, bool) {
	sess, ok := s.sessions.Current()
	return sess.User, ok
}

// Bootstrap restores the persisted session. An expired session is cleared
// and announced on the invalidation bus.
func (s *Service) Bootstrap() (session.User, bool) {
	sess, ok := s.sessions.Bootstrap()
	return sess.User, ok
}

// Login exchanges credentials for a session and persists it.
func (s *Service) Login(ctx context.Context, email, password string) (session.User, error) {
	if err := s.validate(form.LoginRules(), form.Values{"email": email, "password": password}, OpLogin); err != nil {
		return session.User{}, err
	}

	resp, err := s.client.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		return session.User{}, s.fail(err, OpLogin)
	}

	sess, err := s.sessionFrom(resp)
	if err != nil {
		return session.User{}, s.fail(err, OpLogin)
	}
	if err := s.sessions.Set(sess); err != nil {
		return session.User{}, s.fail(err, OpLogin)
	}

	s.notifier.Success(
		s.notifier.T("toast.loginSuccess", nil),
		s.notifier.T("toast.loginMessage", map[string]string{"username": sess.User.Username}),
	)
	return sess.User, nil
}

// Register creates an account. The user still has to log in afterwards.
func (s *Service) Register(ctx context.Context, username, email, password string) error {
	values := form.Values{"username": username, "email": email, "password": password}
	if err := s.validate(form.RegisterRules(), values, OpRegister); err != nil {
		return err
	}

	resp, err := s.client.Register(ctx, api.Registration{Username: username, Email: email, Password: password})
	if err != nil {
		return s.fail(err, OpRegister)
	}

	message := resp.Message
	if message == "" {
		message = s.notifier.T("toast.registerMessage", nil)
	}
	s.notifier.Success(s.notifier.T("toast.registerSuccess", nil), message)
	return nil
}

// ForgotPassword requests a reset link for email.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	if err := s.validate(form.ForgotPasswordRules(), form.Values{"email": email}, OpForgotPassword); err != nil {
		return err
	}

	if _, err := s.client.ForgotPassword(ctx, email); err != nil {
		return s.fail(err, OpForgotPassword)
	}

	s.notifier.Success(
		s.notifier.T("toast.forgotPasswordSuccess", nil),
		s.notifier.T("toast.forgotPasswordMessage", map[string]string{"email": email}),
	)
	return nil
}

// ResetPassword sets a new password with a reset token.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	values := form.Values{"token": token, "password": password}
	if err := s.validate(form.ResetPasswordRules(), values, OpResetPassword); err != nil {
		return err
	}

	if _, err := s.client.ResetPassword(ctx, api.PasswordReset{Token: token, Password: password}); err != nil {
		return s.fail(err, OpResetPassword)
	}

	s.notifier.Success(
		s.notifier.T("toast.resetPasswordSuccess", nil),
		s.notifier.T("toast.resetPasswordMessage", nil),
	)
	return nil
}

// Logout clears the session group and announces it.
func (s *Service) Logout() error {
	if err := s.sessions.Invalidate(session.ReasonLogout); err != nil {
		return s.fail(err, OpLogout)
	}
	s.notifier.Success(s.notifier.T("toast.logoutSuccess", nil), s.notifier.T("toast.logoutMessage", nil))
	return nil
}

// sessionFrom builds the credential group from a login response. The
// expiry comes from expiresIn when present, otherwise from the token's exp
// claim.
func (s *Service) sessionFrom(resp api.LoginResponse) (session.Session, error) {
	token := resp.BearerToken()
	if token == "" {
		return session.Session{}, apperr.NewGeneric("login response has no access token", apperr.KindUnknown)
	}

	var expires time.Time
	if resp.ExpiresIn > 0 {
		expires = s.sessions.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	} else {
		exp, err := session.ExpiryFromJWT(token)
		if err != nil {
			return session.Session{}, apperr.NewGeneric("cannot determine token expiry: "+err.Error(), apperr.KindUnknown)
		}
		expires = exp
	}

	sess := session.Session{
		AccessToken:  token,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    expires,
		User:         resp.User,
	}
	if !sess.Complete() {
		return session.Session{}, apperr.NewGeneric("login response is missing part of the session", apperr.KindUnknown)
	}
	return sess, nil
}

func (s *Service) validate(rules form.Ruleset, values form.Values, op string) error {
	errs := form.New(s.notifier.T, rules).ValidateForm(values)
	if errs.IsValid() {
		return nil
	}
	return s.fail(errs.First(), op)
}

func (s *Service) fail(err error, op string) error {
	appErr := apperr.From(err)
	s.notifier.Error(appErr, op, nil)
	return appErr
}
