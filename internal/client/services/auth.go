package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/gate"
	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/client/session"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/go-playground/validator/v10"
)

// AuthService signs customers in and out and guards protected actions.
//
// Contract:
//   - Login/Signup: on success the guest cart has already been merged into
//     the account when the session turns Authenticated, so actions waiting
//     in RequireAuth see the merged cart. On failure the session is unchanged.
//   - Logout: forgets the credential; guest storage is untouched.
//   - Demote: drops a credential the backend rejected.
//   - Close: releases actions still waiting for authentication.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.Customer, error)
	Signup(ctx context.Context, req models.SignupRequest) (*models.Customer, error)
	Logout(ctx context.Context) error
	IsAuthenticated() bool
	Token() string
	Restore(ctx context.Context) bool
	RequireAuth(ctx context.Context, action gate.Action) *gate.Pending
	Demote(ctx context.Context)
	Close()
}

type authService struct {
	client   client.Client
	session  *session.Session
	gate     *gate.Gate
	merge    MergeService
	validate *validator.Validate
	log      logging.Logger

	// one login or signup at a time, so a guest cart is merged once
	mu sync.Mutex
}

func NewAuthService(c client.Client, s *session.Session, g *gate.Gate, m MergeService, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Nop()
	}
	return &authService{
		client:   c,
		session:  s,
		gate:     g,
		merge:    m,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log.With("component", "auth"),
	}
}

func (a *authService) Login(ctx context.Context, email, password string) (*models.Customer, error) {
	req := models.LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := a.check(req); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	res, err := a.login(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := a.complete(ctx, res.Token); err != nil {
		return nil, err
	}
	a.log.Info(ctx, "customer logged in", "customer", res.Customer.ID)
	return &res.Customer, nil
}

// Signup creates the account. A backend that does not return a credential
// with the new account is asked for one with the same email and password.
func (a *authService) Signup(ctx context.Context, req models.SignupRequest) (*models.Customer, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := a.check(req); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	res, err := a.client.Signup(ctx, req)
	if err != nil {
		a.log.Warn(ctx, "signup failed", "err", err)
		return nil, fmt.Errorf("signup: %w", err)
	}
	customer := res.Customer

	if res.Token == "" {
		a.log.Info(ctx, "signup returned no credential, logging in")
		login, err := a.login(ctx, models.LoginRequest{Email: req.Email, Password: req.Password})
		if err != nil {
			return nil, errors.Join(ErrSignupLoginFailed, err)
		}
		res = login
		if customer.ID == "" {
			customer = login.Customer
		}
	}

	if err := a.complete(ctx, res.Token); err != nil {
		return nil, err
	}
	a.log.Info(ctx, "customer signed up", "customer", customer.ID)
	return &customer, nil
}

func (a *authService) login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	res, err := a.client.Login(ctx, req)
	if err != nil {
		a.log.Warn(ctx, "login failed", "err", err)
		return nil, fmt.Errorf("login: %w", err)
	}
	if res.Token == "" {
		return nil, common.ErrNoCredential
	}
	return res, nil
}

// complete merges guest state into the account, then authenticates the
// session. Gated actions are released by the session event.
func (a *authService) complete(ctx context.Context, token string) error {
	report := a.merge.Merge(ctx, token)
	if report.Err != nil {
		a.log.Warn(ctx, "guest merge finished with errors", "failed", report.Failed, "err", report.Err)
	}
	if err := a.session.Establish(ctx, token); err != nil {
		return fmt.Errorf("establish session: %w", err)
	}
	return nil
}

func (a *authService) check(req any) error { return checkInput(a.validate, req) }

// checkInput validates req and turns the first failure into an InputError.
func checkInput(v *validator.Validate, req any) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return inputError(verrs[0])
}

// fieldLabels names fields whose Go name does not read well in a message.
var fieldLabels = map[string]string{
	"currentpassword": "current password",
	"newpassword":     "new password",
	"avatarurl":       "avatar URL",
}

func inputError(fe validator.FieldError) *InputError {
	field := strings.ToLower(fe.Field())
	if label, ok := fieldLabels[field]; ok {
		field = label
	}
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("Please enter your %s.", field)
	case "email":
		msg = "Please enter a valid email address."
	case "min":
		msg = fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
	case "url":
		msg = fmt.Sprintf("Please enter a valid %s.", field)
	default:
		msg = fmt.Sprintf("The %s is not valid.", field)
	}
	return &InputError{Field: field, Message: msg}
}

func (a *authService) Logout(ctx context.Context) error {
	return a.session.Logout(ctx)
}

func (a *authService) IsAuthenticated() bool { return a.session.IsAuthenticated() }

func (a *authService) Token() string { return a.session.Token() }

func (a *authService) Restore(ctx context.Context) bool { return a.session.Restore(ctx) }

func (a *authService) RequireAuth(ctx context.Context, action gate.Action) *gate.Pending {
	return a.gate.RequireAuth(ctx, action)
}

func (a *authService) Demote(ctx context.Context) { a.session.Demote(ctx) }

func (a *authService) Close() { a.gate.Close() }
