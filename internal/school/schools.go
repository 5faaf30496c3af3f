package school

import (
	"context"
	"strings"

	"github.com/aretw0/courier/pkg/chain"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/result"
)

// renamed is a school before and after a rename.
type renamed struct {
	before domain.School
	after  domain.School
}

// CreateSchool handles CreateSchool.
func (s *Service) CreateSchool(ctx context.Context, req CreateSchool) (result.Result[domain.School], error) {
	r := chain.Run(chain.Start(req),
		chain.Step(func(c *chain.Context) result.Result[domain.User] {
			return s.loadUser(ctx, chain.Get[CreateSchool](c).ActorID)
		}),
		chain.Step(func(c *chain.Context) result.Result[domain.School] {
			req := chain.Get[CreateSchool](c)
			now := s.now()
			return result.Success(domain.School{
				ID:        s.newID(),
				Name:      strings.TrimSpace(req.Name),
				City:      strings.TrimSpace(req.City),
				OwnerID:   chain.Get[domain.User](c).ID,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}),
		chain.Step(func(c *chain.Context) result.Result[result.Unit] {
			school := chain.Get[domain.School](c)
			return stored(s.schools.Save(ctx, school.ID, school))
		}),
	)
	return chain.Map(r, func(c *chain.Context) result.Result[domain.School] {
		school := chain.Get[domain.School](c)
		s.publish(ctx, domain.SchoolCreated{School: school, At: school.CreatedAt})
		return result.Success(school)
	}), nil
}

// RenameSchool handles RenameSchool.
func (s *Service) RenameSchool(ctx context.Context, req RenameSchool) (result.Result[domain.School], error) {
	r := chain.Run(chain.Start(req),
		chain.Step(func(c *chain.Context) result.Result[domain.School] {
			return s.loadSchool(ctx, chain.Get[RenameSchool](c).SchoolID)
		}),
		chain.Step(func(c *chain.Context) result.Result[domain.User] {
			return s.loadUser(ctx, chain.Get[RenameSchool](c).ActorID)
		}),
		chain.Step(ownership),
		chain.Step(func(c *chain.Context) result.Result[renamed] {
			before := chain.Get[domain.School](c)
			after := before
			after.Name = strings.TrimSpace(chain.Get[RenameSchool](c).Name)
			after.UpdatedAt = s.now()
			return result.Success(renamed{before: before, after: after})
		}),
		chain.Step(func(c *chain.Context) result.Result[result.Unit] {
			after := chain.Get[renamed](c).after
			return stored(s.schools.Save(ctx, after.ID, after))
		}),
	)
	return chain.Map(r, func(c *chain.Context) result.Result[domain.School] {
		change := chain.Get[renamed](c)
		s.publish(ctx, domain.SchoolRenamed{
			SchoolID: change.after.ID,
			OldName:  change.before.Name,
			NewName:  change.after.Name,
			At:       change.after.UpdatedAt,
		})
		return result.Success(change.after)
	}), nil
}

// DeleteSchool handles DeleteSchool.
func (s *Service) DeleteSchool(ctx context.Context, req DeleteSchool) (result.Result[bool], error) {
	r := chain.Run(chain.Start(req),
		chain.Step(func(c *chain.Context) result.Result[domain.School] {
			return s.loadSchool(ctx, chain.Get[DeleteSchool](c).SchoolID)
		}),
		chain.Step(func(c *chain.Context) result.Result[domain.User] {
			return s.loadUser(ctx, chain.Get[DeleteSchool](c).ActorID)
		}),
		chain.Step(ownership),
		chain.Step(func(c *chain.Context) result.Result[result.Unit] {
			return stored(s.schools.Delete(ctx, chain.Get[domain.School](c).ID))
		}),
	)
	return chain.Finalize(r, func(c *chain.Context) {
		school := chain.Get[domain.School](c)
		s.publish(ctx, domain.SchoolDeleted{SchoolID: school.ID, OwnerID: school.OwnerID, At: s.now()})
	}), nil
}

// GetSchool handles GetSchool.
func (s *Service) GetSchool(ctx context.Context, req GetSchool) (result.Result[domain.School], error) {
	return s.loadSchool(ctx, req.ID), nil
}

// ListSchools handles ListSchools.
func (s *Service) ListSchools(ctx context.Context, req ListSchools) (result.Result[[]domain.School], error) {
	all, err := s.schools.List(ctx)
	if err != nil {
		return result.Failure[[]domain.School](domain.StorageFailure(err)), nil
	}
	if req.OwnerID == "" {
		return result.Success(all), nil
	}
	owned := make([]domain.School, 0, len(all))
	for _, school := range all {
		if school.OwnedBy(req.OwnerID) {
			owned = append(owned, school)
		}
	}
	return result.Success(owned), nil
}

// GetOverview handles GetOverview. The school and then its owner are
// loaded off the calling goroutine.
func (s *Service) GetOverview(ctx context.Context, req GetOverview) (result.Result[Overview], error) {
	pending := chain.ThenAsync(ctx, chain.Start(req), func(ctx context.Context, c *chain.Context) *result.Future[domain.School] {
		id := chain.Get[GetOverview](c).SchoolID
		return result.Go(func() result.Result[domain.School] {
			return s.loadSchool(ctx, id)
		})
	})
	pending = chain.AwaitThenAsync(ctx, pending, func(ctx context.Context, c *chain.Context) *result.Future[domain.User] {
		ownerID := chain.Get[domain.School](c).OwnerID
		return result.Go(func() result.Result[domain.User] {
			return s.loadUser(ctx, ownerID)
		})
	})
	return chain.MapAsync(ctx, pending, func(c *chain.Context) result.Result[Overview] {
		return result.Success(Overview{
			School: chain.Get[domain.School](c),
			Owner:  chain.Get[domain.User](c),
		})
	}).Await(ctx)
}

func ownership(c *chain.Context) result.Result[result.Unit] {
	school := chain.Get[domain.School](c)
	actor := chain.Get[domain.User](c)
	if !school.OwnedBy(actor.ID) {
		return result.Failure[result.Unit](domain.NotOwner(actor.ID, school.ID))
	}
	return result.Success(result.Unit{})
}
