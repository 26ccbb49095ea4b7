package services

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/cohort-backend/internal/data/repos"
	types "github.com/yungbote/cohort-backend/internal/domain"
	"github.com/yungbote/cohort-backend/internal/platform/apierr"
	"github.com/yungbote/cohort-backend/internal/platform/dbctx"
	"github.com/yungbote/cohort-backend/internal/platform/errs"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
)

type UserService interface {
	Create(dbc dbctx.Context, email, firstName, lastName string) (*types.User, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{
		db:       db,
		log:      baseLog.With("service", "UserService"),
		userRepo: userRepo,
	}
}

func (s *userService) Create(dbc dbctx.Context, email, firstName, lastName string) (*types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return nil, apierr.New(http.StatusBadRequest, "invalid_argument", errs.Invalid("email %q is not valid", email))
	}
	u := &types.User{
		Email:     email,
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
	}
	if _, err := s.userRepo.Create(dbc, []*types.User{u}); err != nil {
		s.log.Warn("create user failed", "error", err)
		return nil, toAPIError("create user", err)
	}
	s.log.Info("user created", "user_id", u.ID)
	return u, nil
}

func (s *userService) Get(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	u, err := s.userRepo.GetByID(dbc, id)
	if err != nil {
		return nil, toAPIError("get user", err)
	}
	if u == nil {
		return nil, apierr.New(http.StatusNotFound, "user_not_found", errs.NotFound("user %s", id))
	}
	return u, nil
}
