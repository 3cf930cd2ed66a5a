package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apihttp "fooddispatch/internal/adapters/in/http"
	"fooddispatch/internal/adapters/out/inmemory"
	"fooddispatch/internal/adapters/out/jwtsession"
	"fooddispatch/internal/core/application/auth"
	"fooddispatch/internal/core/application/usecases/commands"
	"fooddispatch/internal/core/application/usecases/queries"
	"fooddispatch/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

var t0 = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type uows struct{ store *inmemory.Store }

func (f uows) Create() commands.UoW { return f.store.NewUnitOfWork() }

type orderUoWs struct{ store *inmemory.Store }

func (f orderUoWs) Create() commands.OrderUoW { return f.store.NewUnitOfWork() }

type driverUoWs struct{ store *inmemory.Store }

func (f driverUoWs) Create() commands.DriverUoW { return f.store.NewUnitOfWork() }

type ServerTestSuite struct {
	suite.Suite
	e      *echo.Echo
	issuer *jwtsession.Issuer

	restaurantID kernel.UUID
	menuItemID   kernel.UUID

	customer, otherCustomer, restaurant, admin, driver string
	driverUserID                                       kernel.UUID
}

func (suite *ServerTestSuite) SetupTest() {
	clock := fixedClock{now: t0}
	secret := []byte("http-test-secret")

	store := inmemory.NewStore(nil, nil)
	catalog := inmemory.NewCatalog()
	suite.restaurantID = kernel.NewUUID()
	suite.menuItemID = kernel.NewUUID()
	catalog.AddRestaurant(suite.restaurantID, kernel.MustMoney(10_000))
	suite.Require().NoError(catalog.SetPrice(suite.restaurantID, suite.menuItemID, kernel.MustMoney(25_000)))

	assign := commands.NewAssignDriverCommandHandler(uows{store}, clock, 10)
	match := commands.NewMatchPendingCommandHandler(orderUoWs{store}, assign, 2, nil)
	handlers := apihttp.Handlers{
		CreateOrder:      commands.NewCreateOrderCommandHandler(orderUoWs{store}, catalog, clock),
		AcceptOrder:      commands.NewAcceptOrderCommandHandler(orderUoWs{store}, clock),
		MarkReady:        commands.NewMarkReadyCommandHandler(orderUoWs{store}, assign, clock, nil),
		CancelOrder:      commands.NewCancelOrderCommandHandler(uows{store}, clock),
		ConfirmDelivered: commands.NewConfirmDeliveredCommandHandler(uows{store}, clock),
		ReassignDriver:   commands.NewReassignDriverCommandHandler(uows{store}, assign, clock, nil),
		AssignDriver:     assign,
		RegisterDriver:   commands.NewRegisterDriverCommandHandler(driverUoWs{store}, clock),
		SetAvailability:  commands.NewSetDriverAvailabilityCommandHandler(driverUoWs{store}, match, clock, 10, nil),
		SetActivation:    commands.NewSetDriverActivationCommandHandler(driverUoWs{store}, match, 10, nil),
		ListOrders:       queries.NewListOrdersQueryHandler(store),
		GetOrder:         queries.NewGetOrderQueryHandler(store),
		ListDrivers:      queries.NewListDriversQueryHandler(store),
	}

	resolver, err := jwtsession.NewResolver(secret, "fooddispatch", clock)
	suite.Require().NoError(err)
	guard, err := auth.NewGuard(resolver, clock)
	suite.Require().NoError(err)
	spec, err := apihttp.LoadSpec(suite.T().Context())
	suite.Require().NoError(err)
	server, err := apihttp.NewServer(handlers, guard, spec, nil)
	suite.Require().NoError(err)
	suite.e = server.NewEcho()

	suite.issuer, err = jwtsession.NewIssuer(secret, "fooddispatch", clock)
	suite.Require().NoError(err)
	suite.customer = suite.token(kernel.NewUUID(), "customer", nil)
	suite.otherCustomer = suite.token(kernel.NewUUID(), "customer", nil)
	suite.restaurant = suite.token(kernel.NewUUID(), "restaurant", &suite.restaurantID)
	suite.admin = suite.token(kernel.NewUUID(), "admin", nil)
	suite.driverUserID = kernel.NewUUID()
	suite.driver = suite.token(suite.driverUserID, "driver", nil)
}

func (suite *ServerTestSuite) token(userID kernel.UUID, role string, restaurantID *kernel.UUID) string {
	token, err := suite.issuer.Issue(userID, role, restaurantID, time.Hour)
	suite.Require().NoError(err)
	return token
}

func (suite *ServerTestSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var payload bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	suite.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](suite *ServerTestSuite, rec *httptest.ResponseRecorder) T {
	var out T
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (suite *ServerTestSuite) placeOrder() apihttp.OrderResponse {
	rec := suite.do(http.MethodPost, "/api/v1/orders", suite.customer, map[string]any{
		"restaurant_id": suite.restaurantID.String(),
		"items":         []map[string]any{{"menu_item_id": suite.menuItemID.String(), "quantity": 2}},
	})
	suite.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	return decode[apihttp.OrderResponse](suite, rec)
}

func (suite *ServerTestSuite) TestHealthAndContract() {
	rec := suite.do(http.MethodGet, "/health", "", nil)
	suite.Equal(http.StatusOK, rec.Code)

	rec = suite.do(http.MethodGet, "/api/v1/openapi.json", "", nil)
	suite.Require().Equal(http.StatusOK, rec.Code)
	doc := decode[map[string]any](suite, rec)
	suite.Equal("3.0.3", doc["openapi"])
}

func (suite *ServerTestSuite) TestMissingOrInvalidToken_Is401() {
	rec := suite.do(http.MethodGet, "/api/v1/orders", "", nil)
	suite.Equal(http.StatusUnauthorized, rec.Code)
	suite.Equal(http.StatusUnauthorized, decode[apihttp.ErrorResponse](suite, rec).Code)

	rec = suite.do(http.MethodGet, "/api/v1/orders", "garbage", nil)
	suite.Equal(http.StatusUnauthorized, rec.Code)
}

func (suite *ServerTestSuite) TestWrongRole_Is403() {
	rec := suite.do(http.MethodPost, "/api/v1/orders", suite.driver, map[string]any{
		"restaurant_id": suite.restaurantID.String(),
		"items":         []map[string]any{{"menu_item_id": suite.menuItemID.String(), "quantity": 1}},
	})
	suite.Equal(http.StatusForbidden, rec.Code)

	rec = suite.do(http.MethodGet, "/api/v1/drivers", suite.customer, nil)
	suite.Equal(http.StatusForbidden, rec.Code)
}

func (suite *ServerTestSuite) TestInvalidRequests_Are400() {
	rec := suite.do(http.MethodPost, "/api/v1/orders", suite.customer, map[string]any{
		"restaurant_id": suite.restaurantID.String(),
		"items":         []map[string]any{},
	})
	suite.Equal(http.StatusBadRequest, rec.Code, "empty items violate the contract")

	rec = suite.do(http.MethodPost, "/api/v1/orders", suite.customer, map[string]any{
		"restaurant_id": suite.restaurantID.String(),
		"items":         []map[string]any{{"menu_item_id": suite.menuItemID.String(), "quantity": 0}},
	})
	suite.Equal(http.StatusBadRequest, rec.Code, "quantity below minimum")

	rec = suite.do(http.MethodGet, "/api/v1/orders/not-a-uuid", suite.customer, nil)
	suite.Equal(http.StatusBadRequest, rec.Code)

	rec = suite.do(http.MethodGet, "/api/v1/orders?status=lost", suite.customer, nil)
	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *ServerTestSuite) TestCreateOrder_PricesFromCatalog() {
	order := suite.placeOrder()

	suite.Equal("placed", order.Status)
	suite.Equal(int64(10_000), order.DeliveryFee)
	suite.Equal(int64(60_000), order.TotalAmount)
	suite.Nil(order.DriverID)
	suite.Require().Len(order.History, 1)
	suite.Empty(order.History[0].From)
}

func (suite *ServerTestSuite) TestOrderOfAnotherCustomer_Is404() {
	order := suite.placeOrder()

	rec := suite.do(http.MethodGet, "/api/v1/orders/"+order.ID, suite.otherCustomer, nil)
	suite.Equal(http.StatusNotFound, rec.Code)

	rec = suite.do(http.MethodGet, "/api/v1/orders", suite.otherCustomer, nil)
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.Empty(decode[apihttp.OrderListResponse](suite, rec).Items)
}

func (suite *ServerTestSuite) TestReadyWithoutDrivers_Is202() {
	order := suite.placeOrder()
	suite.Require().Equal(http.StatusOK, suite.do(http.MethodPost, "/api/v1/orders/"+order.ID+"/accept", suite.restaurant, nil).Code)

	rec := suite.do(http.MethodPost, "/api/v1/orders/"+order.ID+"/ready", suite.restaurant, nil)

	suite.Require().Equal(http.StatusAccepted, rec.Code, rec.Body.String())
	resp := decode[apihttp.DispatchResponse](suite, rec)
	suite.Equal("no_driver_available", resp.Dispatch.Outcome)
	suite.Require().NotNil(resp.Order)
	suite.Equal("ready_for_pickup", resp.Order.Status)
}

func (suite *ServerTestSuite) TestDeliveryFlow() {
	// Given a registered driver on shift
	rec := suite.do(http.MethodPost, "/api/v1/drivers", suite.admin, map[string]any{
		"user_id":       suite.driverUserID.String(),
		"vehicle_type":  "scooter",
		"license_plate": "A123BC",
	})
	suite.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	registered := decode[apihttp.DriverResponse](suite, rec)

	rec = suite.do(http.MethodPut, "/api/v1/drivers/me/availability", suite.driver, map[string]any{"available": true})
	suite.Require().Equal(http.StatusNoContent, rec.Code, rec.Body.String())

	// When the order is accepted and marked ready
	order := suite.placeOrder()
	suite.Require().Equal(http.StatusOK, suite.do(http.MethodPost, "/api/v1/orders/"+order.ID+"/accept", suite.restaurant, nil).Code)
	rec = suite.do(http.MethodPost, "/api/v1/orders/"+order.ID+"/ready", suite.restaurant, nil)

	// Then it is dispatched to that driver
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	dispatched := decode[apihttp.DispatchResponse](suite, rec)
	suite.Equal("assigned", dispatched.Dispatch.Outcome)
	suite.Require().NotNil(dispatched.Dispatch.DriverID)
	suite.Equal(registered.ID, *dispatched.Dispatch.DriverID)

	// And the driver delivers it exactly once
	rec = suite.do(http.MethodPost, "/api/v1/orders/"+order.ID+"/deliver", suite.driver, nil)
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	delivered := decode[apihttp.OrderResponse](suite, rec)
	suite.Equal("delivered", delivered.Status)
	suite.Equal(int64(60_000), delivered.TotalAmount)
	suite.Len(delivered.History, 5)

	rec = suite.do(http.MethodPost, "/api/v1/orders/"+order.ID+"/deliver", suite.driver, nil)
	suite.Equal(http.StatusConflict, rec.Code)

	rec = suite.do(http.MethodPost, "/api/v1/orders/"+order.ID+"/cancel", suite.customer, nil)
	suite.Equal(http.StatusConflict, rec.Code)

	rec = suite.do(http.MethodGet, "/api/v1/drivers", suite.admin, nil)
	suite.Require().Equal(http.StatusOK, rec.Code)
	drivers := decode[apihttp.DriverListResponse](suite, rec)
	suite.Require().Len(drivers.Items, 1)
	suite.Nil(drivers.Items[0].ActiveOrderID)
}

func (suite *ServerTestSuite) TestCustomerCancel() {
	order := suite.placeOrder()

	rec := suite.do(http.MethodPost, "/api/v1/orders/"+order.ID+"/cancel", suite.customer, nil)

	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	suite.Equal("cancelled", decode[apihttp.OrderResponse](suite, rec).Status)
}

func (suite *ServerTestSuite) TestDispatchByAdmin_UnknownOrderIs404() {
	rec := suite.do(http.MethodPost, "/api/v1/orders/"+kernel.NewUUID().String()+"/dispatch", suite.admin, nil)

	suite.Equal(http.StatusNotFound, rec.Code)
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}
