package handler

import (
	"context"

	"google.golang.org/grpc"

	"github.com/rl1809/stockmap/internal/core/domain"
)

const InventoryServiceName = "stockmap.v1.InventoryService"

type StreetRequest struct {
	Name string `json:"name"`
}

type LotRequest struct {
	Street string `json:"street"`
	Lot    string `json:"lot"`
}

type NewLotRequest struct {
	Street string `json:"street"`
	Name   string `json:"name"`
}

type ProductRequest struct {
	Street   string `json:"street"`
	Lot      string `json:"lot"`
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

type SearchRequest struct {
	Product string `json:"product"`
}

type InventoryRequest struct{}

type Reply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type SearchReply struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Street   string `json:"street,omitempty"`
	Lot      string `json:"lot,omitempty"`
	Quantity int    `json:"quantity"`
}

type InventoryReply struct {
	Streets []domain.Street `json:"streets"`
}

type InventoryServer interface {
	AddStreet(ctx context.Context, req *StreetRequest) (*Reply, error)
	AddLot(ctx context.Context, req *NewLotRequest) (*Reply, error)
	AssignProduct(ctx context.Context, req *ProductRequest) (*Reply, error)
	EditProduct(ctx context.Context, req *ProductRequest) (*Reply, error)
	DeleteProduct(ctx context.Context, req *LotRequest) (*Reply, error)
	MarkSold(ctx context.Context, req *LotRequest) (*Reply, error)
	MarkDepreciated(ctx context.Context, req *LotRequest) (*Reply, error)
	FindProduct(ctx context.Context, req *SearchRequest) (*SearchReply, error)
	GetInventory(ctx context.Context, req *InventoryRequest) (*InventoryReply, error)
}

func unaryMethod[Req, Resp any](name string, call func(InventoryServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(InventoryServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + InventoryServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(InventoryServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var InventoryServiceDesc = grpc.ServiceDesc{
	ServiceName: InventoryServiceName,
	HandlerType: (*InventoryServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("AddStreet", InventoryServer.AddStreet),
		unaryMethod("AddLot", InventoryServer.AddLot),
		unaryMethod("AssignProduct", InventoryServer.AssignProduct),
		unaryMethod("EditProduct", InventoryServer.EditProduct),
		unaryMethod("DeleteProduct", InventoryServer.DeleteProduct),
		unaryMethod("MarkSold", InventoryServer.MarkSold),
		unaryMethod("MarkDepreciated", InventoryServer.MarkDepreciated),
		unaryMethod("FindProduct", InventoryServer.FindProduct),
		unaryMethod("GetInventory", InventoryServer.GetInventory),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "stockmap/v1/inventory",
}

func RegisterInventoryServer(s grpc.ServiceRegistrar, srv InventoryServer) {
	s.RegisterService(&InventoryServiceDesc, srv)
}

// InventoryClient calls the inventory service with the JSON codec.
type InventoryClient struct {
	cc grpc.ClientConnInterface
}

func NewInventoryClient(cc grpc.ClientConnInterface) *InventoryClient {
	return &InventoryClient{cc: cc}
}

func (c *InventoryClient) invoke(ctx context.Context, method string, in, out interface{}, opts ...grpc.CallOption) error {
	opts = append(opts, grpc.CallContentSubtype(CodecName))
	return c.cc.Invoke(ctx, "/"+InventoryServiceName+"/"+method, in, out, opts...)
}

func (c *InventoryClient) AddStreet(ctx context.Context, in *StreetRequest, opts ...grpc.CallOption) (*Reply, error) {
	out := new(Reply)
	return out, c.invoke(ctx, "AddStreet", in, out, opts...)
}

func (c *InventoryClient) AddLot(ctx context.Context, in *NewLotRequest, opts ...grpc.CallOption) (*Reply, error) {
	out := new(Reply)
	return out, c.invoke(ctx, "AddLot", in, out, opts...)
}

func (c *InventoryClient) AssignProduct(ctx context.Context, in *ProductRequest, opts ...grpc.CallOption) (*Reply, error) {
	out := new(Reply)
	return out, c.invoke(ctx, "AssignProduct", in, out, opts...)
}

func (c *InventoryClient) EditProduct(ctx context.Context, in *ProductRequest, opts ...grpc.CallOption) (*Reply, error) {
	out := new(Reply)
	return out, c.invoke(ctx, "EditProduct", in, out, opts...)
}

func (c *InventoryClient) DeleteProduct(ctx context.Context, in *LotRequest, opts ...grpc.CallOption) (*Reply, error) {
	out := new(Reply)
	return out, c.invoke(ctx, "DeleteProduct", in, out, opts...)
}

func (c *InventoryClient) MarkSold(ctx context.Context, in *LotRequest, opts ...grpc.CallOption) (*Reply, error) {
	out := new(Reply)
	return out, c.invoke(ctx, "MarkSold", in, out, opts...)
}

func (c *InventoryClient) MarkDepreciated(ctx context.Context, in *LotRequest, opts ...grpc.CallOption) (*Reply, error) {
	out := new(Reply)
	return out, c.invoke(ctx, "MarkDepreciated", in, out, opts...)
}

func (c *InventoryClient) FindProduct(ctx context.Context, in *SearchRequest, opts ...grpc.CallOption) (*SearchReply, error) {
	out := new(SearchReply)
	return out, c.invoke(ctx, "FindProduct", in, out, opts...)
}

func (c *InventoryClient) GetInventory(ctx context.Context, in *InventoryRequest, opts ...grpc.CallOption) (*InventoryReply, error) {
	out := new(InventoryReply)
	return out, c.invoke(ctx, "GetInventory", in, out, opts...)
}
