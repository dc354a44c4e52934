package usecases

import (
	"context"
	"fmt"

	"chatbot_platform/internal/entities"
)

// AccountUpdate is the partial update accepted from the API. Nil fields are left unchanged.
type AccountUpdate struct {
	Email    *string
	Password *string
}

type AccountUsecase struct {
	accounts AccountStore
	auth     *AuthUsecase
}

func NewAccountUsecase(accounts AccountStore, auth *AuthUsecase) *AccountUsecase {
	return &AccountUsecase{accounts: accounts, auth: auth}
}

// authorize only lets an account act on itself.
func authorize(callerID, ownerID int64) error {
	if callerID != ownerID {
		return ErrForbidden
	}
	return nil
}

func (uc *AccountUsecase) Get(ctx context.Context, callerID, id int64) (*entities.Account, error) {
	if err := authorize(callerID, id); err != nil {
		return nil, err
	}
	return uc.accounts.Get(ctx, id)
}

func (uc *AccountUsecase) Update(ctx context.Context, callerID, id int64, in AccountUpdate) (*entities.Account, error) {
	if err := authorize(callerID, id); err != nil {
		return nil, err
	}

	var p entities.AccountPatch
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email == "" {
			return nil, fmt.Errorf("%w: email must not be blank", ErrInvalidInput)
		}
		p.Email = &email
	}
	if in.Password != nil {
		hashed, err := uc.auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		p.PasswordHash = &hashed
	}
	return uc.accounts.Update(ctx, id, p)
}

// Delete soft-deletes the account; its tokens stop working immediately.
func (uc *AccountUsecase) Delete(ctx context.Context, callerID, id int64) error {
	if err := authorize(callerID, id); err != nil {
		return err
	}
	return uc.accounts.SoftDelete(ctx, id)
}
