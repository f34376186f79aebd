package auth

import (
	"context"
	"errors"

	"github.com/hugh/teamboard/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

type Service struct {
	db  *gorm.DB
	jwt *JWTService
}

func NewService(db *gorm.DB, jwt *JWTService) *Service {
	return &Service{db: db, jwt: jwt}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Bio       string
}

type LoginInput struct {
	Email    string
	Password string
}

type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Bio       *string
	Email     *string
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a user and issues a token. Email uniqueness is
// case-insensitive: Foo@x.com and foo@x.com are the same account.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	var existing models.User
	err := s.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", input.Email).
		First(&existing).Error
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Bio:          input.Bio,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: &user}, nil
}

// Login verifies credentials. Unknown email and wrong password produce the
// same error so callers cannot probe which addresses are registered.
func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", input.Email).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: &user}, nil
}

func (s *Service) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies partial updates; nil fields keep their current value.
func (s *Service) UpdateProfile(ctx context.Context, id uint, input UpdateProfileInput) (*models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.FirstName != nil {
		updates["first_name"] = *input.FirstName
	}
	if input.LastName != nil {
		updates["last_name"] = *input.LastName
	}
	if input.Bio != nil {
		updates["bio"] = *input.Bio
	}
	if input.Email != nil {
		var other models.User
		err := s.db.WithContext(ctx).
			Where("LOWER(email) = LOWER(?) AND id <> ?", *input.Email, id).
			First(&other).Error
		if err == nil {
			return nil, ErrEmailTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		updates["email"] = *input.Email
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, id uint, currentPassword, newPassword string) error {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	if !CheckPassword(currentPassword, user.PasswordHash) {
		return ErrWrongPassword
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
}

// DeleteAccount re-authenticates, then hard-deletes the user and everything
// they own in a single transaction: tasks and memberships of owned teams, the
// owned teams themselves, the user's other memberships, and assignee
// references on remaining tasks (cleared, not deleted).
func (s *Service) DeleteAccount(ctx context.Context, id uint, password string) error {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	if !CheckPassword(password, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ownedTeamIDs []uint
		if err := tx.Model(&models.Team{}).
			Where("created_by = ?", id).
			Pluck("id", &ownedTeamIDs).Error; err != nil {
			return err
		}

		if len(ownedTeamIDs) > 0 {
			if err := tx.Where("team_id IN ?", ownedTeamIDs).Delete(&models.Task{}).Error; err != nil {
				return err
			}
			if err := tx.Where("team_id IN ?", ownedTeamIDs).Delete(&models.Membership{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", ownedTeamIDs).Delete(&models.Team{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.Membership{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Task{}).
			Where("assigned_to = ?", id).
			Update("assigned_to", nil).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}
