// Package tracker declares the DeliveryTracker gRPC service the dispatcher
// calls back into. Messages are google.protobuf.Struct so the contract has
// no generated code of its own.
package tracker

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "foodorder.notifications.v1.DeliveryTracker"

const (
	RecordOutcomeFullMethodName = "/" + ServiceName + "/RecordOutcome"
	MarkAsReadFullMethodName    = "/" + ServiceName + "/MarkAsRead"
	CountUnreadFullMethodName   = "/" + ServiceName + "/CountUnread"
)

// DeliveryTrackerServer is implemented by the notification gRPC handler.
//
//	RecordOutcome  {notificationId, channel, status, error?} -> {recorded}
//	MarkAsRead     {notificationId}                          -> notification
//	CountUnread    {recipientId}                             -> {recipientId, count}
type DeliveryTrackerServer interface {
	RecordOutcome(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MarkAsRead(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CountUnread(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterDeliveryTrackerServer(s grpc.ServiceRegistrar, srv DeliveryTrackerServer) {
	s.RegisterService(&DeliveryTracker_ServiceDesc, srv)
}

func unaryHandler(
	fullMethod string,
	call func(DeliveryTrackerServer, context.Context, *structpb.Struct) (*structpb.Struct, error),
) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DeliveryTrackerServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(DeliveryTrackerServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var DeliveryTracker_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DeliveryTrackerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RecordOutcome",
			Handler:    unaryHandler(RecordOutcomeFullMethodName, DeliveryTrackerServer.RecordOutcome),
		},
		{
			MethodName: "MarkAsRead",
			Handler:    unaryHandler(MarkAsReadFullMethodName, DeliveryTrackerServer.MarkAsRead),
		},
		{
			MethodName: "CountUnread",
			Handler:    unaryHandler(CountUnreadFullMethodName, DeliveryTrackerServer.CountUnread),
		},
	},
	Streams: []grpc.StreamDesc{},
}

type DeliveryTrackerClient struct {
	cc grpc.ClientConnInterface
}

func NewDeliveryTrackerClient(cc grpc.ClientConnInterface) *DeliveryTrackerClient {
	return &DeliveryTrackerClient{cc: cc}
}

func (c *DeliveryTrackerClient) RecordOutcome(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RecordOutcomeFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DeliveryTrackerClient) MarkAsRead(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MarkAsReadFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DeliveryTrackerClient) CountUnread(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CountUnreadFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
