package school

import (
	"context"
	"strings"

	"github.com/aretw0/courier/pkg/chain"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/result"
)

// RegisterUser handles RegisterUser.
func (s *Service) RegisterUser(ctx context.Context, req RegisterUser) (result.Result[domain.User], error) {
	r := chain.Run(chain.Start(req),
		chain.Step(func(c *chain.Context) result.Result[result.Unit] {
			return s.emailAvailable(ctx, chain.Get[RegisterUser](c).Email)
		}),
		chain.Step(func(c *chain.Context) result.Result[domain.User] {
			req := chain.Get[RegisterUser](c)
			return result.Success(domain.User{
				ID:        s.newID(),
				Name:      strings.TrimSpace(req.Name),
				Email:     normalizeEmail(req.Email),
				CreatedAt: s.now(),
			})
		}),
		chain.Step(func(c *chain.Context) result.Result[result.Unit] {
			u := chain.Get[domain.User](c)
			return stored(s.users.Save(ctx, u.ID, u))
		}),
	)
	return chain.Map(r, func(c *chain.Context) result.Result[domain.User] {
		return result.Success(chain.Get[domain.User](c))
	}), nil
}

func (s *Service) emailAvailable(ctx context.Context, email string) result.Result[result.Unit] {
	users, err := s.users.List(ctx)
	if err != nil {
		return result.Failure[result.Unit](domain.StorageFailure(err))
	}
	email = normalizeEmail(email)
	for _, u := range users {
		if u.Email == email {
			return result.Failure[result.Unit](result.NewError(domain.CodeUserEmailTaken, "email "+email+" is already registered"))
		}
	}
	return result.Success(result.Unit{})
}
