package notif

import (
	"context"
	"encoding/json"

	"foodorder/api/v1/tracker"
	"foodorder/internal/common"
	"foodorder/pkg/zlog"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// GRPCHandler serves the DeliveryTracker service the dispatcher calls back
// into.
type GRPCHandler struct {
	service Lifecycle
}

func NewGRPCHandler(service Lifecycle) *GRPCHandler {
	return &GRPCHandler{service: service}
}

func (h *GRPCHandler) RecordOutcome(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := stringField(req, "notificationId")
	channel := common.Channel(stringField(req, "channel"))

	// Validation lives in the service so an untracked channel stays a no-op
	// even without an id.
	err := h.service.RecordDeliveryOutcome(ctx, id, channel,
		common.DeliveryState(stringField(req, "status")),
		stringField(req, "error"))
	if err != nil {
		return nil, toStatus(err)
	}

	return structpb.NewStruct(map[string]interface{}{
		"notificationId": id,
		"channel":        channel.String(),
		"recorded":       channel.IsTracked(),
	})
}

func (h *GRPCHandler) MarkAsRead(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := stringField(req, "notificationId")
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "notificationId is required")
	}

	n, err := h.service.MarkAsRead(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}

	out, err := notificationToStruct(n)
	if err != nil {
		zlog.Error("failed to encode notification", zap.String("notification_id", id), zap.Error(err))
		return nil, status.Error(codes.Internal, "failed to encode notification")
	}
	return out, nil
}

func (h *GRPCHandler) CountUnread(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	recipientID := stringField(req, "recipientId")
	if recipientID == "" {
		return nil, status.Error(codes.InvalidArgument, "recipientId is required")
	}

	count, err := h.service.CountUnreadForUser(ctx, recipientID)
	if err != nil {
		return nil, toStatus(err)
	}

	return structpb.NewStruct(map[string]interface{}{
		"recipientId": recipientID,
		"count":       count,
	})
}

func stringField(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	return s.GetFields()[key].GetStringValue()
}

// notificationToStruct goes through the JSON form so the gRPC and HTTP
// boundaries expose the same field names.
func notificationToStruct(n *common.Notification) (*structpb.Struct, error) {
	raw, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func toStatus(err error) error {
	switch {
	case common.IsValidation(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case common.IsNotFound(err):
		return status.Error(codes.NotFound, err.Error())
	default:
		zlog.Error("notification request failed", zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	}
}

var _ tracker.DeliveryTrackerServer = (*GRPCHandler)(nil)
