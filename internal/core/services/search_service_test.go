package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/services"
	"github.com/AchilleasB/parrainage/matching-service/internal/testutil/mocks"
)

var (
	paris      = domain.Point{Longitude: 2.3522, Latitude: 48.8566}
	versailles = domain.Point{Longitude: 2.1301, Latitude: 48.8049}
	lyon       = domain.Point{Longitude: 4.8357, Latitude: 45.7640}
	marseille  = domain.Point{Longitude: 5.3698, Latitude: 43.2965}
)

type SearchServiceSuite struct {
	suite.Suite
	ctx     context.Context
	repo    *mocks.MockRepository
	service *services.SearchService
}

func TestSearchServiceSuite(t *testing.T) {
	suite.Run(t, new(SearchServiceSuite))
}

func (s *SearchServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = mocks.NewMockRepository()
	s.service = services.NewSearchService(s.repo, s.repo, s.repo, services.WithLogger(quietLogger))
}

func (s *SearchServiceSuite) seed(id string, role domain.Role, at *domain.Point) domain.User {
	u := domain.User{
		ID:           id,
		FirstName:    "User " + id,
		LastName:     "Secret",
		Phone:        "0600000000",
		Email:        id + "@EXAMPLE.COM",
		ActivityArea: "Engineering",
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if at != nil {
		u.Address = &domain.Address{Street: "street of " + id, City: "City", ZipCode: "00000", Location: *at}
	}
	return s.repo.SeedUser(u)
}

func ids(candidates []domain.Candidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.ID)
	}
	return out
}

func (s *SearchServiceSuite) TestOrdersCounterpartsByDistance() {
	me := s.seed("me", domain.RoleGodson, &paris)
	s.seed("gf-marseille", domain.RoleGodfather, &marseille)
	s.seed("gf-versailles", domain.RoleGodfather, &versailles)
	s.seed("gf-lyon", domain.RoleGodfather, &lyon)
	s.seed("other-godson", domain.RoleGodson, &versailles)
	s.seed("gf-nowhere", domain.RoleGodfather, nil)

	got, err := s.service.GetClosestUsers(s.ctx, me.ID, false)
	s.Require().NoError(err)

	s.Equal([]string{"gf-versailles", "gf-lyon", "gf-marseille"}, ids(got))
	for i := 1; i < len(got); i++ {
		s.Less(got[i-1].Distance, got[i].Distance)
	}
	s.InDelta(17500, got[0].Distance, 1500)
}

func (s *SearchServiceSuite) TestGodfatherSeesGodsons() {
	me := s.seed("me", domain.RoleGodfather, &paris)
	s.seed("gs-lyon", domain.RoleGodson, &lyon)
	s.seed("gf-lyon", domain.RoleGodfather, &lyon)

	got, err := s.service.GetClosestUsers(s.ctx, me.ID, false)
	s.Require().NoError(err)
	s.Equal([]string{"gs-lyon"}, ids(got))
	s.Equal(domain.RoleGodson, got[0].Role)
}

func (s *SearchServiceSuite) TestEquidistantCandidatesCollapse() {
	me := s.seed("me", domain.RoleGodson, &paris)
	s.seed("b-twin", domain.RoleGodfather, &lyon)
	s.seed("a-twin", domain.RoleGodfather, &lyon)
	s.seed("c-far", domain.RoleGodfather, &marseille)

	got, err := s.service.GetClosestUsers(s.ctx, me.ID, false)
	s.Require().NoError(err)
	s.Equal([]string{"a-twin", "c-far"}, ids(got))
}

func (s *SearchServiceSuite) TestProfilesHideContactDetails() {
	me := s.seed("me", domain.RoleGodson, &paris)
	s.seed("gf", domain.RoleGodfather, &lyon)

	got, err := s.service.GetClosestUsers(s.ctx, me.ID, false)
	s.Require().NoError(err)
	s.Require().Len(got, 1)

	s.Equal(domain.PublicProfile{
		ID:           "gf",
		FirstName:    "User gf",
		ActivityArea: "Engineering",
		Address:      "street of gf",
		Role:         domain.RoleGodfather,
	}, got[0].PublicProfile)
}

func (s *SearchServiceSuite) TestContactedFlag() {
	me := s.seed("me", domain.RoleGodson, &paris)
	s.seed("gf-pending", domain.RoleGodfather, &versailles)
	s.seed("gf-validated", domain.RoleGodfather, &lyon)
	s.seed("gf-stranger", domain.RoleGodfather, &marseille)

	s.repo.SeedSponsorship(domain.Sponsorship{
		ID: uuid.NewString(), GodfatherID: "gf-pending", GodsonID: me.ID,
		EmitterID: me.ID, RecipientID: "gf-pending", CreatedAt: time.Now(),
	})
	s.repo.SeedSponsorship(domain.Sponsorship{
		ID: uuid.NewString(), GodfatherID: "gf-validated", GodsonID: me.ID,
		EmitterID: "gf-validated", RecipientID: me.ID, Validated: true, CreatedAt: time.Now(),
	})

	got, err := s.service.GetClosestUsers(s.ctx, me.ID, true)
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	contacted := map[string]bool{}
	for _, c := range got {
		contacted[c.ID] = c.Contacted
	}
	s.Equal(map[string]bool{"gf-pending": true, "gf-validated": true, "gf-stranger": false}, contacted)

	got, err = s.service.GetClosestUsers(s.ctx, me.ID, false)
	s.Require().NoError(err)
	for _, c := range got {
		s.False(c.Contacted, c.ID)
	}
}

func (s *SearchServiceSuite) TestNoCandidates() {
	me := s.seed("me", domain.RoleGodson, &paris)

	got, err := s.service.GetClosestUsers(s.ctx, me.ID, true)
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *SearchServiceSuite) TestRequesterWithoutAddress() {
	me := s.seed("me", domain.RoleGodson, nil)
	s.seed("gf", domain.RoleGodfather, &lyon)

	_, err := s.service.GetClosestUsers(s.ctx, me.ID, false)
	requireKind(s.T(), err, domain.KindNotFound)
}

func (s *SearchServiceSuite) TestUnknownRequester() {
	_, err := s.service.GetClosestUsers(s.ctx, "ghost", false)
	requireKind(s.T(), err, domain.KindNotFound)
}

func (s *SearchServiceSuite) TestStoreFailure() {
	me := s.seed("me", domain.RoleGodson, &paris)
	s.repo.NearestCandidatesError = errors.New("statement timeout")

	_, err := s.service.GetClosestUsers(s.ctx, me.ID, false)
	s.Require().Error(err)
	_, ok := domain.KindOf(err)
	s.False(ok)
}

func (s *SearchServiceSuite) TestGetUserProfile() {
	me := s.seed("me", domain.RoleGodson, &paris)
	homeless := s.seed("homeless", domain.RoleGodson, nil)
	gf := s.seed("gf", domain.RoleGodfather, &lyon)
	s.seed("gf-nowhere", domain.RoleGodfather, nil)

	profile, err := s.service.GetUserProfile(s.ctx, me.ID, gf.ID)
	s.Require().NoError(err)
	s.Equal("gf", profile.ID)
	s.Require().NotNil(profile.Distance)
	s.InDelta(392000, *profile.Distance, 5000)

	profile, err = s.service.GetUserProfile(s.ctx, homeless.ID, gf.ID)
	s.Require().NoError(err)
	s.Nil(profile.Distance)

	profile, err = s.service.GetUserProfile(s.ctx, me.ID, "gf-nowhere")
	s.Require().NoError(err)
	s.Nil(profile.Distance)
	s.Empty(profile.Address)

	_, err = s.service.GetUserProfile(s.ctx, me.ID, "ghost")
	requireKind(s.T(), err, domain.KindNotFound)
}

func TestSearchService_PaginationIsStable(t *testing.T) {
	repo := mocks.NewMockRepository()
	service := services.NewSearchService(repo, repo, repo, services.WithLogger(quietLogger))
	me := repo.SeedUser(domain.User{ID: "me", Email: "ME@X.FR", Role: domain.RoleGodfather,
		Address: &domain.Address{Location: paris}})
	for i := 0; i < 5; i++ {
		repo.SeedUser(domain.User{
			ID:      uuid.NewString(),
			Email:   uuid.NewString() + "@X.FR",
			Role:    domain.RoleGodson,
			Address: &domain.Address{Location: domain.Point{Longitude: paris.Longitude + float64(i+1)*0.1, Latitude: paris.Latitude}},
		})
	}

	first, err := service.GetClosestUsers(context.Background(), me.ID, false)
	require.NoError(t, err)
	second, err := service.GetClosestUsers(context.Background(), me.ID, false)
	require.NoError(t, err)
	assert.Equal(t, ids(first), ids(second))
	assert.Len(t, first, 5)
}
