package profile

import (
	"context"
	"regexp"

	"go.uber.org/zap"

	"github.com/taskboard/backend/domain"
	"github.com/taskboard/backend/repository"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UseCase implements profile reads, updates and account deletion on top
// of the identity provider, with the task store involved only for the
// data purge during deletion.
type UseCase struct {
	provider repository.IdentityProvider
	tasks    repository.TaskRepository
	logger   *zap.Logger
}

func New(provider repository.IdentityProvider, tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		provider: provider,
		tasks:    tasks,
		logger:   logger,
	}
}

// Update describes a profile change request. A nil Email means no email
// change; a nil Metadata means no metadata change.
type Update struct {
	Email    *string
	Metadata map[string]any
}

// Deletion reports the two separable outcomes of account deletion.
type Deletion struct {
	AccountDeleted bool
	Message        string
	Note           string
}

// GetProfile fetches a fresh identity record and reshapes it.
func (uc *UseCase) GetProfile(ctx context.Context, cap repository.Capability) (*domain.Profile, error) {
	identity, err := uc.provider.Resolve(ctx, cap.Token)
	if err != nil {
		return nil, err
	}
	return domain.ProfileFromIdentity(identity), nil
}

// UpdateProfile validates the request, merges metadata against the
// current record and applies the change through the provider. A request
// that would change nothing is rejected before any write.
func (uc *UseCase) UpdateProfile(ctx context.Context, cap repository.Capability, userID string, update Update) (*domain.Profile, error) {
	if update.Email == nil && update.Metadata == nil {
		return nil, domain.NewError(domain.ErrCodeValidation,
			"At least one field (email, metadata) must be provided for update")
	}
	if update.Email != nil && !emailPattern.MatchString(*update.Email) {
		return nil, domain.NewError(domain.ErrCodeValidation, "Invalid email format")
	}

	current, err := uc.provider.Resolve(ctx, cap.Token)
	if err != nil {
		return nil, err
	}

	var patch repository.IdentityPatch
	changed := false

	if update.Email != nil && *update.Email != current.Email {
		patch.Email = *update.Email
		changed = true
	}
	if update.Metadata != nil {
		merged := domain.MergeMetadata(current.Metadata, update.Metadata)
		if !domain.MetadataEqual(merged, current.Metadata) {
			patch.Metadata = merged
			changed = true
		}
	}

	if !changed {
		return nil, domain.NewError(domain.ErrCodeValidation, "No changes detected")
	}

	identity, err := uc.provider.Update(ctx, cap, userID, patch)
	if err != nil {
		return nil, err
	}
	return domain.ProfileFromIdentity(identity), nil
}

// DeleteAccount purges the caller's tasks and then attempts identity
// deletion when the elevated path is configured. Task purge failure is
// logged but not fatal: the provider's cascade on identity deletion is
// the durable guarantee. The two outcomes are reported separately and
// the second never rolls back or re-reports the first.
func (uc *UseCase) DeleteAccount(ctx context.Context, cap repository.Capability, userID string) (*Deletion, error) {
	if _, err := uc.tasks.DeleteAllForUser(ctx, userID); err != nil {
		uc.logger.Error("failed to delete user tasks",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}

	if !cap.Admin() {
		return &Deletion{
			AccountDeleted: false,
			Message:        "User data deleted successfully. Please delete your account from the identity provider dashboard.",
			Note:           "To enable automatic account deletion, configure IDENTITY_SERVICE_ROLE_KEY",
		}, nil
	}

	if err := uc.provider.DeleteUser(ctx, cap, userID); err != nil {
		uc.logger.Error("failed to delete user account",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return &Deletion{
			AccountDeleted: false,
			Message:        "User data deleted successfully. Account deletion failed - please delete from the identity provider dashboard.",
		}, nil
	}

	return &Deletion{
		AccountDeleted: true,
		Message:        "Account and all associated data deleted successfully",
	}, nil
}
