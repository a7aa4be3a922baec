package services

import (
	"context"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/gate"
	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/go-playground/validator/v10"
)

// ProfileService manages the signed-in customer's account. Every operation
// waits for sign-in when anonymous and reports through onDone. Input is
// checked before anything is queued, so a rejected form returns an error and
// no Pending.
type ProfileService interface {
	Profile(ctx context.Context, onDone func(*models.Customer, error)) *gate.Pending
	UpdateProfile(ctx context.Context, req models.UpdateProfileRequest, onDone func(*models.Customer, error)) (*gate.Pending, error)
	ChangePassword(ctx context.Context, req models.ChangePasswordRequest, onDone func(error)) (*gate.Pending, error)
}

type profileService struct {
	client   client.Client
	auth     AuthService
	validate *validator.Validate
	log      logging.Logger
}

func NewProfileService(c client.Client, auth AuthService, log logging.Logger) ProfileService {
	if log == nil {
		log = logging.Nop()
	}
	return &profileService{
		client:   c,
		auth:     auth,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log.With("component", "profile"),
	}
}

func (s *profileService) Profile(ctx context.Context, onDone func(*models.Customer, error)) *gate.Pending {
	return s.auth.RequireAuth(ctx, func(ctx context.Context) error {
		customer, err := s.client.GetProfile(ctx, s.auth.Token())
		if regate(ctx, s.auth, err) {
			return gate.Reauth(err)
		}
		if onDone != nil {
			onDone(customer, err)
		}
		return err
	})
}

func (s *profileService) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest, onDone func(*models.Customer, error)) (*gate.Pending, error) {
	if req.Empty() {
		return nil, ErrNothingToUpdate
	}
	if err := checkInput(s.validate, req); err != nil {
		return nil, err
	}
	return s.auth.RequireAuth(ctx, func(ctx context.Context) error {
		customer, err := s.client.UpdateProfile(ctx, s.auth.Token(), req)
		if regate(ctx, s.auth, err) {
			return gate.Reauth(err)
		}
		if err == nil {
			s.log.Info(ctx, "profile updated")
		}
		if onDone != nil {
			onDone(customer, err)
		}
		return err
	}), nil
}

func (s *profileService) ChangePassword(ctx context.Context, req models.ChangePasswordRequest, onDone func(error)) (*gate.Pending, error) {
	if err := checkInput(s.validate, req); err != nil {
		return nil, err
	}
	return s.auth.RequireAuth(ctx, func(ctx context.Context) error {
		err := s.client.ChangePassword(ctx, s.auth.Token(), req)
		if regate(ctx, s.auth, err) {
			return gate.Reauth(err)
		}
		if err == nil {
			s.log.Info(ctx, "password changed")
		}
		if onDone != nil {
			onDone(err)
		}
		return err
	}), nil
}
