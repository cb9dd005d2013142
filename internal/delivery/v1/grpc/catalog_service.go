package grpc

import (
	"context"
	"time"

	"github.com/DRSN-tech/shop-orders/internal/domain"
	"github.com/DRSN-tech/shop-orders/internal/usecase"
	"github.com/DRSN-tech/shop-orders/pkg/e"
	"github.com/DRSN-tech/shop-orders/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const CatalogServiceName = "shop.v1.CatalogService"

const (
	getProductMethod = "/" + CatalogServiceName + "/GetProduct"
	getOrderMethod   = "/" + CatalogServiceName + "/GetOrder"
)

// CatalogServiceServer: внутренний read-only API для соседних сервисов.
// Сообщения построены на well-known типах, поэтому отдельный .proto не генерируется.
type CatalogServiceServer interface {
	GetProduct(ctx context.Context, id *wrapperspb.Int64Value) (*structpb.Struct, error)
	GetOrder(ctx context.Context, id *wrapperspb.Int64Value) (*structpb.Struct, error)
}

var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetProduct", Handler: getProductHandler},
		{MethodName: "GetOrder", Handler: getOrderHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shop/v1/catalog.proto",
}

func getProductHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServiceServer).GetProduct(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getProductMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServiceServer).GetProduct(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func getOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServiceServer).GetOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getOrderMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServiceServer).GetOrder(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

// CatalogServiceClient: клиент к CatalogService поверх произвольного соединения.
type CatalogServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCatalogServiceClient(cc grpc.ClientConnInterface) *CatalogServiceClient {
	return &CatalogServiceClient{cc: cc}
}

func (c *CatalogServiceClient) GetProduct(ctx context.Context, id int64, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getProductMethod, wrapperspb.Int64(id), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogServiceClient) GetOrder(ctx context.Context, id int64, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getOrderMethod, wrapperspb.Int64(id), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

type CatalogService struct {
	prUC   usecase.ProductUC
	orUC   usecase.OrderUC
	logger logger.Logger
}

func NewCatalogService(prUC usecase.ProductUC, orUC usecase.OrderUC, logger logger.Logger) *CatalogService {
	return &CatalogService{prUC: prUC, orUC: orUC, logger: logger}
}

func (g *CatalogService) GetProduct(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	const op = "grpc.GetProduct"

	if req.GetValue() <= 0 {
		return nil, GRPCErrorResponse(e.ErrInvalidID)
	}

	product, err := g.prUC.FindByID(ctx, req.GetValue())
	if err != nil {
		g.logError(op, err)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	res, err := structpb.NewStruct(productFields(product))
	if err != nil {
		g.logError(op, err)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	return res, nil
}

func (g *CatalogService) GetOrder(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	const op = "grpc.GetOrder"

	if req.GetValue() <= 0 {
		return nil, GRPCErrorResponse(e.ErrInvalidID)
	}

	order, err := g.orUC.GetByID(ctx, req.GetValue())
	if err != nil {
		g.logError(op, err)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	res, err := structpb.NewStruct(orderFields(order))
	if err != nil {
		g.logError(op, err)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	return res, nil
}

// Ненайденные сущности: обычный ответ, в лог ошибок они не идут.
func (g *CatalogService) logError(op string, err error) {
	if _, ok := e.AsNotFound(err); ok {
		return
	}
	g.logger.Errorf(e.Wrap(op, err), "%s", op)
}

// Деньги передаются строками с двумя знаками, чтобы не терять точность в double.
func productFields(p *domain.Product) map[string]any {
	return map[string]any{
		"id":            p.ID,
		"name":          p.Name,
		"description":   p.Description,
		"price":         p.Price.StringFixed(2),
		"imageUrl":      p.ImageURL,
		"category":      p.Category,
		"stockQuantity": p.StockQuantity,
		"sku":           p.SKU,
		"slug":          p.Slug,
	}
}

func orderFields(o *domain.Order) map[string]any {
	items := make([]any, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, map[string]any{
			"productId":   item.ProductID,
			"productName": item.ProductName,
			"unitPrice":   item.UnitPrice.StringFixed(2),
			"quantity":    item.Quantity,
			"subtotal":    item.Subtotal.StringFixed(2),
		})
	}

	fields := map[string]any{
		"id":            o.ID,
		"customerEmail": o.CustomerEmail,
		"customerName":  o.CustomerName,
		"status":        string(o.Status),
		"totalAmount":   o.TotalAmount.StringFixed(2),
		"items":         items,
		"createdAt":     o.CreatedAt.UTC().Format(time.RFC3339),
	}
	if o.ShippingAddress != nil {
		fields["shippingAddress"] = *o.ShippingAddress
	}

	return fields
}
