package handler

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/rl1809/stockmap/internal/core/domain"
	"github.com/rl1809/stockmap/internal/core/service"
)

// SessionMetadataKey carries the session id on gRPC calls.
const SessionMetadataKey = "x-session-id"

type GRPCHandler struct {
	inventory *service.InventoryService
	log       logrus.FieldLogger
}

func NewGRPCHandler(inventory *service.InventoryService, log logrus.FieldLogger) *GRPCHandler {
	return &GRPCHandler{inventory: inventory, log: log}
}

func (h *GRPCHandler) AddStreet(ctx context.Context, req *StreetRequest) (*Reply, error) {
	sessionID, err := sessionFromMetadata(ctx)
	if err != nil {
		return nil, err
	}
	return h.reply(h.inventory.AddStreet(ctx, sessionID, req.Name), "street added"), nil
}

func (h *GRPCHandler) AddLot(ctx context.Context, req *NewLotRequest) (*Reply, error) {
	sessionID, err := sessionFromMetadata(ctx)
	if err != nil {
		return nil, err
	}
	return h.reply(h.inventory.AddLot(ctx, sessionID, req.Street, req.Name), "lot added"), nil
}

func (h *GRPCHandler) AssignProduct(ctx context.Context, req *ProductRequest) (*Reply, error) {
	sessionID, err := sessionFromMetadata(ctx)
	if err != nil {
		return nil, err
	}
	err = h.inventory.AssignProduct(ctx, sessionID, req.Street, req.Lot, req.Product, req.Quantity)
	return h.reply(err, "product assigned"), nil
}

func (h *GRPCHandler) EditProduct(ctx context.Context, req *ProductRequest) (*Reply, error) {
	sessionID, err := sessionFromMetadata(ctx)
	if err != nil {
		return nil, err
	}
	err = h.inventory.EditProduct(ctx, sessionID, req.Street, req.Lot, req.Product, req.Quantity)
	return h.reply(err, "product updated"), nil
}

func (h *GRPCHandler) DeleteProduct(ctx context.Context, req *LotRequest) (*Reply, error) {
	sessionID, err := sessionFromMetadata(ctx)
	if err != nil {
		return nil, err
	}
	return h.reply(h.inventory.DeleteProduct(ctx, sessionID, req.Street, req.Lot), "product removed"), nil
}

func (h *GRPCHandler) MarkSold(ctx context.Context, req *LotRequest) (*Reply, error) {
	sessionID, err := sessionFromMetadata(ctx)
	if err != nil {
		return nil, err
	}
	return h.reply(h.inventory.MarkSold(ctx, sessionID, req.Street, req.Lot), "marked sold"), nil
}

func (h *GRPCHandler) MarkDepreciated(ctx context.Context, req *LotRequest) (*Reply, error) {
	sessionID, err := sessionFromMetadata(ctx)
	if err != nil {
		return nil, err
	}
	return h.reply(h.inventory.MarkDepreciated(ctx, sessionID, req.Street, req.Lot), "marked depreciated"), nil
}

func (h *GRPCHandler) FindProduct(ctx context.Context, req *SearchRequest) (*SearchReply, error) {
	sessionID, err := sessionFromMetadata(ctx)
	if err != nil {
		return nil, err
	}

	loc, err := h.inventory.FindByProduct(ctx, sessionID, req.Product)
	if err != nil {
		r := h.reply(err, "")
		return &SearchReply{Success: false, Message: r.Message}, nil
	}
	return &SearchReply{
		Success:  true,
		Street:   loc.Street,
		Lot:      loc.Lot,
		Quantity: loc.Quantity,
	}, nil
}

func (h *GRPCHandler) GetInventory(ctx context.Context, req *InventoryRequest) (*InventoryReply, error) {
	sessionID, err := sessionFromMetadata(ctx)
	if err != nil {
		return nil, err
	}

	inv, err := h.inventory.Inventory(ctx, sessionID)
	if err != nil {
		h.log.WithError(err).Error("grpc get inventory failed")
		return nil, status.Error(codes.Internal, "internal error")
	}
	streets := inv.Streets
	if streets == nil {
		streets = []domain.Street{}
	}
	return &InventoryReply{Streets: streets}, nil
}

// reply turns a service result into the success/message envelope. Caller
// mistakes keep their message, anything else is reported as internal.
func (h *GRPCHandler) reply(err error, okMessage string) *Reply {
	if err == nil {
		return &Reply{Success: true, Message: okMessage}
	}
	if domain.IsValidation(err) || domain.IsNotFound(err) || domain.IsConflict(err) {
		return &Reply{Success: false, Message: err.Error()}
	}
	h.log.WithError(err).Error("grpc request failed")
	return &Reply{Success: false, Message: "internal error"}
}

func sessionFromMetadata(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.InvalidArgument, service.ErrSessionRequired.Error())
	}
	values := md.Get(SessionMetadataKey)
	if len(values) == 0 || values[0] == "" {
		return "", status.Error(codes.InvalidArgument, service.ErrSessionRequired.Error())
	}
	if len(values[0]) > service.MaxSessionIDLength {
		return "", status.Error(codes.InvalidArgument, service.ErrSessionTooLong.Error())
	}
	return values[0], nil
}

// UnaryLoggingInterceptor logs every unary call with its duration and code.
func UnaryLoggingInterceptor(log logrus.FieldLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		entry := log.WithFields(logrus.Fields{
			"method": info.FullMethod,
			"code":   status.Code(err).String(),
			"dur_ms": time.Since(start).Milliseconds(),
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			entry.WithError(err).Warn("grpc request")
		} else {
			entry.Info("grpc request")
		}
		return resp, err
	}
}
