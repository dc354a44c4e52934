package usecases

import (
	"context"
	"fmt"
	"strings"

	"chatbot_platform/internal/entities"
)

type ClientInput struct {
	Name     string
	Email    string
	Password string
}

type ClientUpdate struct {
	Name     *string
	Email    *string
	Password *string
	Disabled *bool
}

type ClientUsecase struct {
	clients ClientStore
	auth    *AuthUsecase
}

func NewClientUsecase(clients ClientStore, auth *AuthUsecase) *ClientUsecase {
	return &ClientUsecase{clients: clients, auth: auth}
}

func (uc *ClientUsecase) Create(ctx context.Context, ownerID int64, in ClientInput) (*entities.Client, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}
	hashed, err := uc.auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	client := &entities.Client{AccountID: ownerID, Name: name, Email: email, PasswordHash: hashed}
	if err := uc.clients.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (uc *ClientUsecase) List(ctx context.Context, ownerID int64) ([]entities.Client, error) {
	return uc.clients.ListByAccount(ctx, ownerID)
}

func (uc *ClientUsecase) Get(ctx context.Context, ownerID, id int64) (*entities.Client, error) {
	client, err := uc.clients.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(ownerID, client.AccountID); err != nil {
		return nil, err
	}
	return client, nil
}

func (uc *ClientUsecase) Update(ctx context.Context, ownerID, id int64, in ClientUpdate) (*entities.Client, error) {
	if _, err := uc.Get(ctx, ownerID, id); err != nil {
		return nil, err
	}

	p := entities.ClientPatch{Disabled: in.Disabled}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be blank", ErrInvalidInput)
		}
		p.Name = &name
	}
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
	return uc.clients.Update(ctx, id, p)
}

func (uc *ClientUsecase) Delete(ctx context.Context, ownerID, id int64) error {
	if _, err := uc.Get(ctx, ownerID, id); err != nil {
		return err
	}
	return uc.clients.SoftDelete(ctx, id)
}
