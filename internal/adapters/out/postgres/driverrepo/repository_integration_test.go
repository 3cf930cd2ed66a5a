package driverrepo_test

import (
	"context"
	"testing"
	"time"

	"fooddispatch/internal/adapters/out/postgres/driverrepo"
	"fooddispatch/internal/adapters/out/postgres/pgtest"
	"fooddispatch/internal/core/domain/model/driver"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
)

var t0 = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

type DriverRepositoryIntegrationTestSuite struct {
	suite.Suite
	pg         *pgtest.Database
	repository *driverrepo.GormDriverRepository
}

func (suite *DriverRepositoryIntegrationTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.pg = pg
}

func (suite *DriverRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.pg.Truncate())
	suite.repository = driverrepo.NewGormDriverRepository(suite.pg.DB)
}

func (suite *DriverRepositoryIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.pg.Stop(context.Background()))
}

func (suite *DriverRepositoryIntegrationTestSuite) TestAdd_RoundTrip() {
	ctx := suite.T().Context()
	d := suite.availableDriver(t0)

	suite.Require().NoError(suite.repository.Add(ctx, d))

	got, err := suite.repository.Get(ctx, d.ID())
	suite.Require().NoError(err)
	suite.True(got.UserID().IsEqual(d.UserID()))
	suite.True(got.IsActive())
	suite.True(got.IsAvailable())
	suite.True(got.AvailableSince().Equal(t0))
	suite.Equal(driver.Scooter, got.VehicleType())
	suite.Equal("B222BB", got.LicensePlate())
	suite.Nil(got.ActiveOrderID())

	byUser, err := suite.repository.GetByUserID(ctx, d.UserID())
	suite.Require().NoError(err)
	suite.True(byUser.ID().IsEqual(d.ID()))
}

func (suite *DriverRepositoryIntegrationTestSuite) TestAdd_SecondProfileForUser_ReturnsValueIsInvalid() {
	ctx := suite.T().Context()
	d := suite.availableDriver(t0)
	suite.Require().NoError(suite.repository.Add(ctx, d))

	twin, err := driver.NewDriver(kernel.NewUUID(), d.UserID(), driver.Car, "C333CC", t0)
	suite.Require().NoError(err)

	suite.Require().ErrorIs(suite.repository.Add(ctx, twin), errs.ErrValueIsInvalid)
}

func (suite *DriverRepositoryIntegrationTestSuite) TestGet_UnknownDriver_ReturnsNotFound() {
	ctx := suite.T().Context()

	_, err := suite.repository.Get(ctx, kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	_, err = suite.repository.GetByUserID(ctx, kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *DriverRepositoryIntegrationTestSuite) TestUpdate_UnknownDriver_ReturnsNotFound() {
	err := suite.repository.Update(suite.T().Context(), suite.availableDriver(t0))

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *DriverRepositoryIntegrationTestSuite) TestUpdate_TwoDriversOneOrder_ReturnsAlreadyAssigned() {
	ctx := suite.T().Context()
	orderID := kernel.NewUUID()

	first := suite.availableDriver(t0)
	second := suite.availableDriver(t0)
	suite.Require().NoError(suite.repository.Add(ctx, first))
	suite.Require().NoError(suite.repository.Add(ctx, second))

	suite.Require().NoError(first.TakeOrder(orderID))
	suite.Require().NoError(suite.repository.Update(ctx, first))
	suite.Require().NoError(second.TakeOrder(orderID))

	suite.Require().ErrorIs(suite.repository.Update(ctx, second), errs.ErrAlreadyAssigned)
}

func (suite *DriverRepositoryIntegrationTestSuite) TestListEligible_FirstAvailableFirst() {
	ctx := suite.T().Context()

	// Given drivers that went available at different times, one busy and
	// one off shift
	late := suite.availableDriver(t0.Add(time.Hour))
	early := suite.availableDriver(t0)
	busy := suite.availableDriver(t0.Add(-time.Hour))
	suite.Require().NoError(busy.TakeOrder(kernel.NewUUID()))
	offShift, err := driver.NewDriver(kernel.NewUUID(), kernel.NewUUID(), driver.Bicycle, "D444DD", t0)
	suite.Require().NoError(err)

	for _, d := range []*driver.Driver{late, early, busy, offShift} {
		suite.Require().NoError(suite.repository.Add(ctx, d))
	}

	// When candidates are listed
	got, err := suite.repository.ListEligible(ctx, nil, 10)

	// Then only eligible drivers come back, earliest first
	suite.Require().NoError(err)
	suite.Require().Len(got, 2)
	suite.True(got[0].ID().IsEqual(early.ID()))
	suite.True(got[1].ID().IsEqual(late.ID()))

	// And excluded drivers are skipped
	got, err = suite.repository.ListEligible(ctx, []kernel.UUID{early.ID()}, 10)
	suite.Require().NoError(err)
	suite.Require().Len(got, 1)
	suite.True(got[0].ID().IsEqual(late.ID()))
}

func (suite *DriverRepositoryIntegrationTestSuite) TestLockIfEligible_SkipsRowLockedElsewhere() {
	ctx := suite.T().Context()
	d := suite.availableDriver(t0)
	suite.Require().NoError(suite.repository.Add(ctx, d))

	// Given another transaction holding the driver's row lock
	holder := suite.pg.DB.WithContext(ctx).Begin()
	suite.Require().NoError(holder.Error)
	_, err := driverrepo.NewGormDriverRepository(holder).GetForUpdate(ctx, d.ID())
	suite.Require().NoError(err)

	// When a second transaction tries the driver
	contender := suite.pg.DB.WithContext(ctx).Begin()
	suite.Require().NoError(contender.Error)
	defer contender.Rollback()
	got, ok, err := driverrepo.NewGormDriverRepository(contender).LockIfEligible(ctx, d.ID())

	// Then it does not wait and does not get the driver
	suite.Require().NoError(err)
	suite.False(ok)
	suite.Nil(got)

	// And once the lock is released the driver can be taken
	suite.Require().NoError(holder.Rollback().Error)
	got, ok, err = driverrepo.NewGormDriverRepository(contender).LockIfEligible(ctx, d.ID())
	suite.Require().NoError(err)
	suite.True(ok)
	suite.True(got.ID().IsEqual(d.ID()))
}

func (suite *DriverRepositoryIntegrationTestSuite) TestLockIfEligible_BusyDriver_NotOk() {
	ctx := suite.T().Context()
	d := suite.availableDriver(t0)
	suite.Require().NoError(d.TakeOrder(kernel.NewUUID()))
	suite.Require().NoError(suite.repository.Add(ctx, d))

	got, ok, err := suite.repository.LockIfEligible(ctx, d.ID())

	suite.Require().NoError(err)
	suite.False(ok)
	suite.Nil(got)
}

func (suite *DriverRepositoryIntegrationTestSuite) availableDriver(since time.Time) *driver.Driver {
	d, err := driver.NewDriver(kernel.NewUUID(), kernel.NewUUID(), driver.Scooter, "B222BB", since)
	suite.Require().NoError(err)
	d.SetAvailability(true, since)
	return d
}

func TestDriverRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(DriverRepositoryIntegrationTestSuite))
}
