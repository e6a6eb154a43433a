package room

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mkallio/harvestmate/internal/dependencies/mocks"
	"github.com/mkallio/harvestmate/internal/gameconfig"
	"github.com/mkallio/harvestmate/internal/model"
	"github.com/mkallio/harvestmate/internal/services/farm"
	"github.com/mkallio/harvestmate/internal/storage/memory"
	"github.com/mkallio/harvestmate/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite

	random   *mocks.MockRandom
	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	clk := mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.registry = NewRegistry(Deps{
		Clock:   clk,
		Random:  s.random,
		Rules:   stubEngine{},
		Farm:    farm.New(testutil.NopLogger()),
		Records: memory.New(clk),
		Config:  gameconfig.Static{R: testRules()},
		Logger:  testutil.NopLogger(),
	})
}

func (s *RegistrySuite) TestGeneratesCodeWhenIDEmpty() {
	s.random.QueueString("ABC234")

	room, err := s.registry.GetOrCreate("", "")
	s.Require().NoError(err)
	s.Equal(model.RoomID("ABC234"), room.ID())
	s.Equal(1, s.registry.Count())
}

func (s *RegistrySuite) TestRegeneratesOnCodeCollision() {
	s.random.QueueString("SAME66", "SAME66", "OTHER7")

	first, err := s.registry.GetOrCreate("", "")
	s.Require().NoError(err)
	second, err := s.registry.GetOrCreate("", "")
	s.Require().NoError(err)

	s.Equal(model.RoomID("SAME66"), first.ID())
	s.Equal(model.RoomID("OTHER7"), second.ID())
}

func (s *RegistrySuite) TestSameIDReturnsSameRoom() {
	first, err := s.registry.GetOrCreate("GAME01", "")
	s.Require().NoError(err)
	second, err := s.registry.GetOrCreate("GAME01", "")
	s.Require().NoError(err)

	s.Same(first, second)
	s.Equal(1, s.registry.Count())
}

func (s *RegistrySuite) TestGetUnknownRoom() {
	_, err := s.registry.Get("NOPE99")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *RegistrySuite) TestRemove() {
	room, err := s.registry.GetOrCreate("GAME01", "")
	s.Require().NoError(err)

	s.registry.Remove("GAME01")
	s.Equal(0, s.registry.Count())

	_, err = s.registry.Get("GAME01")
	s.ErrorIs(err, model.ErrRoomNotFound)

	// Removing again is harmless, and the room's loop is stopped
	s.registry.Remove("GAME01")
	_, err = room.Join(JoinRequest{Username: "late", Sender: newFakeSender("conn-late")})
	s.Error(err)
}

func (s *RegistrySuite) TestConcurrentCreationOfDistinctRooms() {
	ids := []model.RoomID{"AAAA22", "BBBB33", "CCCC44", "DDDD55"}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id model.RoomID) {
			defer wg.Done()
			_, err := s.registry.GetOrCreate(id, "")
			s.NoError(err)
		}(id)
	}
	wg.Wait()

	s.Equal(len(ids), s.registry.Count())
	for _, id := range ids {
		room, err := s.registry.Get(id)
		s.NoError(err)
		s.Equal(id, room.ID())
	}
}
