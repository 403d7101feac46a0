package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/identity"
	"github.com/invoicing/backend/internal/domain/shared"
)

// UserService manages organization membership. Credentials and token
// issuance live with the external auth provider.
type UserService struct {
	userRepo identity.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Me returns the calling user's own record. The user must belong to the
// caller's organization.
func (s *UserService) Me(ctx context.Context, orgID, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.OrganizationID == nil || *user.OrganizationID != orgID {
		return nil, shared.ErrNotFound
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// List returns all members of the organization
func (s *UserService) List(ctx context.Context, orgID uuid.UUID) ([]UserResponse, error) {
	users, err := s.userRepo.FindAllForOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses, nil
}

// AddMember creates a user record and attaches it to the organization
func (s *UserService) AddMember(ctx context.Context, orgID uuid.UUID, req AddMemberRequest) (*UserResponse, error) {
	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "a user with this email already exists")
	}

	user, err := identity.NewUser(req.Email, req.FullName)
	if err != nil {
		return nil, err
	}

	role := identity.UserRole(req.Role)
	if req.Role == "" {
		role = identity.RoleMember
	}
	if err := user.JoinOrganization(orgID, role); err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// Deactivate disables a member account
func (s *UserService) Deactivate(ctx context.Context, orgID, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.OrganizationID == nil || *user.OrganizationID != orgID {
		return nil, shared.ErrNotFound
	}

	user.Deactivate()
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	resp := ToUserResponse(user)
	return &resp, nil
}
