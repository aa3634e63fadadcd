package simulator

import (
	"testing"

	"github.com/BearBump/FoodTrack/internal/models"
	simmocks "github.com/BearBump/FoodTrack/internal/services/simulator/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type SimulatorSuite struct {
	suite.Suite
}

func placed() *models.Order {
	return &models.Order{
		ID:          1,
		UserID:      7,
		Status:      models.OrderStatusPlaced,
		Destination: &models.Point{Lat: 28.62, Lng: 77.21},
	}
}

func (s *SimulatorSuite) TestPlacedTick() {
	sim := New(Config{}, NeverArrive{})
	in := placed()

	res := sim.Step(in)

	s.True(res.StatusChanged)
	s.True(res.PositionChanged)
	s.Equal(models.OrderStatusConfirmed, res.Order.Status)
	s.Require().NotNil(res.Order.Position)
	s.Equal(DefaultRoute()[0], *res.Order.Position)
	s.Require().NotNil(res.Order.ETAMinutes)
	s.GreaterOrEqual(*res.Order.ETAMinutes, 1)
	s.LessOrEqual(*res.Order.ETAMinutes, 30)

	// input untouched
	s.Equal(models.OrderStatusPlaced, in.Status)
	s.Nil(in.Position)
}

func (s *SimulatorSuite) TestFourTicksToDelivered() {
	sim := New(Config{}, AlwaysArrive{})
	o := placed()

	want := []models.OrderStatus{
		models.OrderStatusConfirmed,
		models.OrderStatusPreparing,
		models.OrderStatusOutForDelivery,
		models.OrderStatusDelivered,
	}
	for _, st := range want {
		res := sim.Step(o)
		s.True(res.StatusChanged)
		s.Equal(st, res.Order.Status)
		o = res.Order
	}

	s.Equal(models.Point{Lat: 28.62, Lng: 77.21}, *o.Position)
	s.Require().NotNil(o.ETAMinutes)
	s.Equal(0, *o.ETAMinutes)
}

func (s *SimulatorSuite) TestConfirmedKeepsPosition() {
	sim := New(Config{}, NeverArrive{})
	pos := DefaultRoute()[0]
	o := placed()
	o.Status = models.OrderStatusConfirmed
	o.Position = &pos

	res := sim.Step(o)
	s.True(res.StatusChanged)
	s.False(res.PositionChanged)
	s.Equal(models.OrderStatusPreparing, res.Order.Status)
}

func (s *SimulatorSuite) TestTerminalIsNoop() {
	sim := New(Config{}, AlwaysArrive{})
	for _, st := range []models.OrderStatus{models.OrderStatusDelivered, models.OrderStatusCancelled} {
		o := placed()
		o.Status = st
		res := sim.Step(o)
		s.False(res.Changed())
		s.Equal(st, res.Order.Status)
		s.Nil(res.Order.Position)
	}
}

func (s *SimulatorSuite) TestMissingDestinationGetsDefault() {
	sim := New(Config{}, NeverArrive{})
	o := placed()
	o.Destination = nil

	res := sim.Step(o)
	s.Require().NotNil(res.Order.Destination)
	s.Equal(DefaultDestination(), *res.Order.Destination)
}

func (s *SimulatorSuite) TestNoArrivalJittersNearDestination() {
	r := simmocks.NewRand(s.T())
	r.On("Intn", mock.Anything).Return(2000)

	sim := New(Config{}, NeverArrive{}).WithJitterSource(r)
	route := DefaultRoute()
	o := placed()
	o.Status = models.OrderStatusOutForDelivery
	o.Position = &route[2]

	res := sim.Step(o)
	s.False(res.StatusChanged)
	s.True(res.PositionChanged)
	s.Equal(models.OrderStatusOutForDelivery, res.Order.Status)
	s.InDelta(28.62+jitterDeg, res.Order.Position.Lat, 1e-9)
	s.InDelta(77.21+jitterDeg, res.Order.Position.Lng, 1e-9)
	s.Require().NotNil(res.Order.ETAMinutes)
	s.Equal(1, *res.Order.ETAMinutes)
}

func (s *SimulatorSuite) TestFarDestinationStaysNearDropWithoutArrival() {
	sim := New(Config{}, NeverArrive{})
	far := models.Point{Lat: 28.70, Lng: 77.30}
	o := placed()
	o.Destination = &far
	o.Status = models.OrderStatusOutForDelivery
	o.Position = &models.Point{Lat: 28.6998, Lng: 77.3003}

	for i := 0; i < 5; i++ {
		res := sim.Step(o)
		s.Equal(models.OrderStatusOutForDelivery, res.Order.Status)
		s.InDelta(far.Lat, res.Order.Position.Lat, jitterDeg+1e-9)
		s.InDelta(far.Lng, res.Order.Position.Lng, jitterDeg+1e-9)
		s.Require().NotNil(res.Order.ETAMinutes)
		s.Equal(1, *res.Order.ETAMinutes)
		o = res.Order
	}
}

func (s *SimulatorSuite) TestLongRouteWalksWaypoints() {
	route := Route{
		{Lat: 28.640, Lng: 77.220},
		{Lat: 28.635, Lng: 77.218},
		{Lat: 28.630, Lng: 77.216},
		{Lat: 28.625, Lng: 77.214},
		{Lat: 28.621, Lng: 77.211},
	}
	sim := New(Config{Route: route}, AlwaysArrive{})
	o := placed()
	o.Status = models.OrderStatusOutForDelivery
	o.Position = &route[1]

	res := sim.Step(o)
	s.Equal(route[2], *res.Order.Position)
	s.Equal(models.OrderStatusOutForDelivery, res.Order.Status)

	res = sim.Step(res.Order)
	s.Equal(route[3], *res.Order.Position)

	res = sim.Step(res.Order)
	s.Equal(models.OrderStatusDelivered, res.Order.Status)
}

func (s *SimulatorSuite) TestRandomArrivalEventuallyDelivers() {
	sim := New(Config{}, NewRandomArrival(nil, 4))
	o := placed()
	for i := 0; i < 200 && o.Status != models.OrderStatusDelivered; i++ {
		o = sim.Step(o).Order
	}
	s.Equal(models.OrderStatusDelivered, o.Status)
}

func (s *SimulatorSuite) TestSinglePointRoute() {
	sim := New(Config{Route: Route{{Lat: 28.63, Lng: 77.22}}}, AlwaysArrive{})
	o := placed()
	for i := 0; i < 4; i++ {
		o = sim.Step(o).Order
	}
	s.Equal(models.OrderStatusDelivered, o.Status)
}

func TestSimulatorSuite(t *testing.T) {
	suite.Run(t, new(SimulatorSuite))
}
