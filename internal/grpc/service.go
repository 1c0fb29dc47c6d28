package igrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the internal social API.
const ServiceName = "social.internal.v1.SocialInternal"

const (
	areFriendsMethod   = "/" + ServiceName + "/AreFriends"
	getPostSlotsMethod = "/" + ServiceName + "/GetPostSlots"
)

// SocialInternalServer is served to other backend services. Messages are
// google.protobuf.Struct values with snake_case keys.
type SocialInternalServer interface {
	AreFriends(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetPostSlots(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

func RegisterSocialInternalServer(s grpc.ServiceRegistrar, srv SocialInternalServer) {
	s.RegisterService(&socialInternalServiceDesc, srv)
}

func unaryHandler(method string, call func(SocialInternalServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SocialInternalServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(SocialInternalServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var socialInternalServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SocialInternalServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "AreFriends",
			Handler:    unaryHandler(areFriendsMethod, SocialInternalServer.AreFriends),
		},
		{
			MethodName: "GetPostSlots",
			Handler:    unaryHandler(getPostSlotsMethod, SocialInternalServer.GetPostSlots),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "social/internal/v1/social_internal.proto",
}

// Client calls the internal social API.
type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) AreFriends(ctx context.Context, userID, friendID int64) (bool, error) {
	req, err := structpb.NewStruct(map[string]interface{}{"user_id": userID, "friend_id": friendID})
	if err != nil {
		return false, err
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, areFriendsMethod, req, resp); err != nil {
		return false, err
	}
	return resp.GetFields()["are_friends"].GetBoolValue(), nil
}

// PostSlots mirrors the GetPostSlots response.
type PostSlots struct {
	PostID              int64
	CurrentParticipants int
	MaxParticipants     int
	RemainingSlots      int
}

func (c *Client) GetPostSlots(ctx context.Context, postID int64) (*PostSlots, error) {
	req, err := structpb.NewStruct(map[string]interface{}{"post_id": postID})
	if err != nil {
		return nil, err
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, getPostSlotsMethod, req, resp); err != nil {
		return nil, err
	}
	f := resp.GetFields()
	return &PostSlots{
		PostID:              int64(f["post_id"].GetNumberValue()),
		CurrentParticipants: int(f["current_participants"].GetNumberValue()),
		MaxParticipants:     int(f["max_participants"].GetNumberValue()),
		RemainingSlots:      int(f["remaining_slots"].GetNumberValue()),
	}, nil
}
