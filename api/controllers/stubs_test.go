package controllers

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/vaporhaus/storefront-backend/internal/cart"
	"github.com/vaporhaus/storefront-backend/internal/catalog"
	"github.com/vaporhaus/storefront-backend/internal/checkout"
	"github.com/vaporhaus/storefront-backend/internal/identity"
	"github.com/vaporhaus/storefront-backend/internal/importer"
	"github.com/vaporhaus/storefront-backend/internal/media"
	"github.com/vaporhaus/storefront-backend/internal/orders"
	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	"github.com/vaporhaus/storefront-backend/pkg/outbox"
	"github.com/vaporhaus/storefront-backend/pkg/pagination"
)

var errNotStubbed = errors.New("not stubbed")

type stubCatalog struct {
	params  catalog.ListParams
	product *catalog.ProductDTO
	err     error
}

func (s *stubCatalog) List(ctx context.Context, params catalog.ListParams) (pagination.Page[catalog.ProductDTO], error) {
	s.params = params
	return pagination.Page[catalog.ProductDTO]{Items: []catalog.ProductDTO{}}, s.err
}

func (s *stubCatalog) Get(ctx context.Context, id uuid.UUID) (*catalog.ProductDTO, error) {
	return s.product, s.err
}

func (s *stubCatalog) Lookup(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return nil, errNotStubbed
}

func (s *stubCatalog) Brands(ctx context.Context, category string) ([]string, error) {
	return []string{"VapeX"}, s.err
}

func (s *stubCatalog) Create(ctx context.Context, input catalog.ProductInput) (*catalog.ProductDTO, error) {
	return s.product, s.err
}

func (s *stubCatalog) Update(ctx context.Context, id uuid.UUID, input catalog.ProductInput) (*catalog.ProductDTO, error) {
	return s.product, s.err
}

func (s *stubCatalog) Delete(ctx context.Context, id uuid.UUID) error {
	return s.err
}

type stubCart struct {
	added    cart.AddItemInput
	quantity int
	cartID   string
	err      error
}

func (s *stubCart) view() (*cart.View, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &cart.View{ID: s.cartID, Items: []cart.LineItem{}}, nil
}

func (s *stubCart) Create(ctx context.Context) (*cart.View, error) {
	s.cartID = "new-cart"
	return s.view()
}

func (s *stubCart) Get(ctx context.Context, cartID string) (*cart.View, error) {
	s.cartID = cartID
	return s.view()
}

func (s *stubCart) AddItem(ctx context.Context, cartID string, input cart.AddItemInput) (*cart.View, error) {
	s.cartID = cartID
	s.added = input
	return s.view()
}

func (s *stubCart) UpdateItem(ctx context.Context, cartID, lineID string, quantity int) (*cart.View, error) {
	s.cartID = cartID
	s.quantity = quantity
	return s.view()
}

func (s *stubCart) RemoveItem(ctx context.Context, cartID, lineID string) (*cart.View, error) {
	s.cartID = cartID
	return s.view()
}

func (s *stubCart) Clear(ctx context.Context, cartID string) (*cart.View, error) {
	s.cartID = cartID
	return s.view()
}

type stubCheckout struct {
	called bool
	input  checkout.Input
	err    error
}

func (s *stubCheckout) Submit(ctx context.Context, input checkout.Input) (*orders.OrderDTO, error) {
	s.called = true
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return &orders.OrderDTO{ID: uuid.New(), Total: 4597}, nil
}

type stubImporter struct {
	format importer.Format
	opts   importer.RunOptions
	body   string
}

func (s *stubImporter) Import(ctx context.Context, r io.Reader, format importer.Format, opts importer.RunOptions) (*importer.Result, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.body = string(raw)
	s.format = format
	s.opts = opts
	return &importer.Result{Total: 1, Imported: 1, Progress: 100, DryRun: opts.DryRun, Errors: []importer.RowError{}}, nil
}

func (s *stubImporter) Template() ([]byte, error) {
	return []byte("PK-template"), nil
}

type stubOrders struct {
	status string
	actor  *outbox.ActorRef
	params orders.ListParams
}

func (s *stubOrders) List(ctx context.Context, params orders.ListParams) (pagination.OffsetPage[orders.OrderDTO], error) {
	s.params = params
	return pagination.NewOffsetPage[orders.OrderDTO](nil, 0, params.Page, params.Limit), nil
}

func (s *stubOrders) Get(ctx context.Context, id uuid.UUID) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{ID: id}, nil
}

func (s *stubOrders) UpdateStatus(ctx context.Context, id uuid.UUID, status string, actor *outbox.ActorRef) (*orders.OrderDTO, error) {
	s.status = status
	s.actor = actor
	return &orders.OrderDTO{ID: id}, nil
}

func (s *stubOrders) Create(ctx context.Context, input orders.CreateInput) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{ID: uuid.New()}, nil
}

type stubIdentity struct {
	user *identity.UserDTO
}

func (s *stubIdentity) Register(ctx context.Context, req identity.RegisterRequest) (*identity.Session, error) {
	return nil, errNotStubbed
}

func (s *stubIdentity) Login(ctx context.Context, req identity.LoginRequest) (*identity.Session, error) {
	return nil, errNotStubbed
}

func (s *stubIdentity) Refresh(ctx context.Context, accessToken, refreshToken string) (*identity.Session, error) {
	return nil, errNotStubbed
}

func (s *stubIdentity) Logout(ctx context.Context, accessID string) error {
	return nil
}

func (s *stubIdentity) Me(ctx context.Context, userID uuid.UUID) (*identity.UserDTO, error) {
	return s.user, nil
}

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(ctx context.Context) error {
	return s.err
}

type stubMedia struct {
	discarded string
	err       error
}

func (s *stubMedia) PresignUpload(ctx context.Context, input media.PresignInput) (*media.PresignOutput, error) {
	return nil, errNotStubbed
}

func (s *stubMedia) Discard(ctx context.Context, objectKey string) error {
	s.discarded = objectKey
	return s.err
}
