package memory

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/ports"
)

type StoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func (s *StoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) seedUser(role domain.Role, loc *domain.Point) domain.User {
	u := domain.User{
		ID:        uuid.NewString(),
		FirstName: "First",
		LastName:  "Last",
		Email:     uuid.NewString() + "@EXAMPLE.COM",
		Role:      role,
		CreatedAt: time.Now(),
	}
	if loc != nil {
		u.Address = &domain.Address{Street: "1 rue de la Paix", City: "Paris", ZipCode: "75002", Location: *loc}
	}
	s.Require().NoError(s.store.CreateUser(s.ctx, u))
	return u
}

func (s *StoreSuite) newSponsorship(godfather, godson domain.User) domain.Sponsorship {
	return domain.Sponsorship{
		ID:          uuid.NewString(),
		GodfatherID: godfather.ID,
		GodsonID:    godson.ID,
		EmitterID:   godfather.ID,
		RecipientID: godson.ID,
		CreatedAt:   time.Now(),
	}
}

func (s *StoreSuite) accept(sp domain.Sponsorship) {
	changed, err := s.store.AcceptSponsorship(s.ctx, sp.ID)
	s.Require().NoError(err)
	s.Require().True(changed)
}

func (s *StoreSuite) TestUsers() {
	s.Run("finds created user", func() {
		u := s.seedUser(domain.RoleGodson, &domain.Point{Longitude: 2.35, Latitude: 48.85})
		found, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Equal(u.Email, found.Email)
		s.Equal(u.Address.Location, found.Address.Location)
	})

	s.Run("returns ErrNotFound for unknown id", func() {
		_, err := s.store.FindByID(s.ctx, uuid.NewString())
		s.ErrorIs(err, ports.ErrNotFound)
	})

	s.Run("rejects duplicate email case-insensitively", func() {
		u := s.seedUser(domain.RoleGodson, nil)
		dup := u
		dup.ID = uuid.NewString()
		dup.Email = strings.ToLower(u.Email)
		s.ErrorIs(s.store.CreateUser(s.ctx, dup), ports.ErrDuplicate)
	})

	s.Run("returned users are copies", func() {
		u := s.seedUser(domain.RoleGodson, &domain.Point{Longitude: 1, Latitude: 1})
		found, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		found.Address.Street = "changed"

		again, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Equal("1 rue de la Paix", again.Address.Street)
	})

	s.Run("updates push token", func() {
		u := s.seedUser(domain.RoleGodfather, nil)
		s.Require().NoError(s.store.UpdatePushToken(s.ctx, u.ID, "ExponentPushToken[abc]"))
		found, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Equal("ExponentPushToken[abc]", found.PushToken)

		s.ErrorIs(s.store.UpdatePushToken(s.ctx, uuid.NewString(), "x"), ports.ErrNotFound)
	})
}

func (s *StoreSuite) TestSponsorshipUniqueness() {
	s.Run("rejects duplicate pair", func() {
		gf := s.seedUser(domain.RoleGodfather, nil)
		gs := s.seedUser(domain.RoleGodson, nil)

		s.Require().NoError(s.store.CreateSponsorship(s.ctx, s.newSponsorship(gf, gs)))
		s.ErrorIs(s.store.CreateSponsorship(s.ctx, s.newSponsorship(gf, gs)), ports.ErrDuplicate)
	})

	s.Run("concurrent inserts keep one row", func() {
		gf := s.seedUser(domain.RoleGodfather, nil)
		gs := s.seedUser(domain.RoleGodson, nil)

		const attempts = 16
		var wg sync.WaitGroup
		errs := make(chan error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- s.store.CreateSponsorship(s.ctx, s.newSponsorship(gf, gs))
			}()
		}
		wg.Wait()
		close(errs)

		succeeded := 0
		for err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			s.ErrorIs(err, ports.ErrDuplicate)
		}
		s.Equal(1, succeeded)

		ids, err := s.store.PartnerIDs(s.ctx, gf.ID)
		s.Require().NoError(err)
		s.Len(ids, 1)
	})
}

func (s *StoreSuite) TestAcceptAndDelete() {
	s.Run("accept validates once and is repeatable", func() {
		gf := s.seedUser(domain.RoleGodfather, nil)
		gs := s.seedUser(domain.RoleGodson, nil)
		sp := s.newSponsorship(gf, gs)
		s.Require().NoError(s.store.CreateSponsorship(s.ctx, sp))

		changed, err := s.store.AcceptSponsorship(s.ctx, sp.ID)
		s.Require().NoError(err)
		s.True(changed)

		changed, err = s.store.AcceptSponsorship(s.ctx, sp.ID)
		s.Require().NoError(err)
		s.False(changed, "already validated")

		found, err := s.store.FindSponsorship(s.ctx, sp.ID)
		s.Require().NoError(err)
		s.True(found.Validated)
	})

	s.Run("concurrent accepts flip the row once", func() {
		gf := s.seedUser(domain.RoleGodfather, nil)
		gs := s.seedUser(domain.RoleGodson, nil)
		sp := s.newSponsorship(gf, gs)
		s.Require().NoError(s.store.CreateSponsorship(s.ctx, sp))

		const callers = 10
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			flipped int
		)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				changed, err := s.store.AcceptSponsorship(s.ctx, sp.ID)
				s.NoError(err)
				if changed {
					mu.Lock()
					flipped++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		s.Equal(1, flipped)
	})

	s.Run("second validated godfather is rejected", func() {
		gf1 := s.seedUser(domain.RoleGodfather, nil)
		gf2 := s.seedUser(domain.RoleGodfather, nil)
		gs := s.seedUser(domain.RoleGodson, nil)
		sp1 := s.newSponsorship(gf1, gs)
		sp2 := s.newSponsorship(gf2, gs)
		s.Require().NoError(s.store.CreateSponsorship(s.ctx, sp1))
		s.Require().NoError(s.store.CreateSponsorship(s.ctx, sp2))

		s.accept(sp1)
		_, err := s.store.AcceptSponsorship(s.ctx, sp2.ID)
		s.ErrorIs(err, ports.ErrDuplicate)
	})

	s.Run("delete removes row", func() {
		gf := s.seedUser(domain.RoleGodfather, nil)
		gs := s.seedUser(domain.RoleGodson, nil)
		sp := s.newSponsorship(gf, gs)
		s.Require().NoError(s.store.CreateSponsorship(s.ctx, sp))

		s.Require().NoError(s.store.DeleteSponsorship(s.ctx, sp.ID))
		_, err := s.store.FindSponsorship(s.ctx, sp.ID)
		s.ErrorIs(err, ports.ErrNotFound)
		s.ErrorIs(s.store.DeleteSponsorship(s.ctx, sp.ID), ports.ErrNotFound)
		_, err = s.store.AcceptSponsorship(s.ctx, sp.ID)
		s.ErrorIs(err, ports.ErrNotFound)
	})
}

func (s *StoreSuite) TestListings() {
	paris := &domain.Point{Longitude: 2.3522, Latitude: 48.8566}

	s.Run("pending requests split by direction", func() {
		gf := s.seedUser(domain.RoleGodfather, nil)
		gs := s.seedUser(domain.RoleGodson, nil)
		sp := s.newSponsorship(gf, gs)
		s.Require().NoError(s.store.CreateSponsorship(s.ctx, sp))

		sent, err := s.store.ListPending(s.ctx, gf.ID, domain.DirectionSent)
		s.Require().NoError(err)
		s.Len(sent, 1)

		received, err := s.store.ListPending(s.ctx, gf.ID, domain.DirectionReceived)
		s.Require().NoError(err)
		s.Empty(received)

		received, err = s.store.ListPending(s.ctx, gs.ID, domain.DirectionReceived)
		s.Require().NoError(err)
		s.Len(received, 1)

		s.accept(sp)
		received, err = s.store.ListPending(s.ctx, gs.ID, domain.DirectionReceived)
		s.Require().NoError(err)
		s.Empty(received)
	})

	s.Run("counterparts only include validated rows", func() {
		gf := s.seedUser(domain.RoleGodfather, paris)
		gs1 := s.seedUser(domain.RoleGodson, paris)
		gs2 := s.seedUser(domain.RoleGodson, paris)
		sp1 := s.newSponsorship(gf, gs1)
		sp2 := s.newSponsorship(gf, gs2)
		s.Require().NoError(s.store.CreateSponsorship(s.ctx, sp1))
		s.Require().NoError(s.store.CreateSponsorship(s.ctx, sp2))
		s.accept(sp1)

		children, err := s.store.ListGodchildren(s.ctx, gf.ID)
		s.Require().NoError(err)
		s.Require().Len(children, 1)
		s.Equal(gs1.ID, children[0].UserID)
		s.Equal(sp1.ID, children[0].SponsorshipID)

		fathers, err := s.store.ListGodfathers(s.ctx, gs1.ID)
		s.Require().NoError(err)
		s.Require().Len(fathers, 1)
		s.Equal(gf.ID, fathers[0].UserID)

		fathers, err = s.store.ListGodfathers(s.ctx, gs2.ID)
		s.Require().NoError(err)
		s.Empty(fathers)
	})
}

func (s *StoreSuite) TestNearestCandidates() {
	origin := domain.Point{Longitude: 2.3522, Latitude: 48.8566}

	requester := s.seedUser(domain.RoleGodson, &origin)
	near := s.seedUser(domain.RoleGodfather, &domain.Point{Longitude: 2.36, Latitude: 48.86})
	far := s.seedUser(domain.RoleGodfather, &domain.Point{Longitude: 4.8357, Latitude: 45.7640})
	farTwin := s.seedUser(domain.RoleGodfather, &domain.Point{Longitude: 4.8357, Latitude: 45.7640})
	s.seedUser(domain.RoleGodson, &domain.Point{Longitude: 2.36, Latitude: 48.86})
	s.seedUser(domain.RoleGodfather, nil)

	got, err := s.store.NearestCandidates(s.ctx, origin, requester.ID, requester.Role)
	s.Require().NoError(err)
	s.Require().Len(got, 2)

	s.Equal(near.ID, got[0].ID)
	s.Less(got[0].Distance, got[1].Distance)

	twinIDs := []string{far.ID, farTwin.ID}
	s.Contains(twinIDs, got[1].ID)
	s.Equal(min(far.ID, farTwin.ID), got[1].ID)

	for _, c := range got {
		s.NotEqual(requester.ID, c.ID)
		s.Equal(domain.RoleGodfather, c.Role)
	}

	d, err := s.store.DistanceTo(s.ctx, origin, near.ID)
	s.Require().NoError(err)
	s.Equal(got[0].Distance, d)
}
