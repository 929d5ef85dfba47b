package fanrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

const profileServiceName = "fanverse.profile.v1.ProfileService"

type ProfileServiceClient interface {
	CreateProfile(ctx context.Context, in *CreateProfileRequest, opts ...grpc.CallOption) (*Profile, error)
	GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*Profile, error)
	UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*Profile, error)
	SetVerified(ctx context.Context, in *SetVerifiedRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type profileServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewProfileServiceClient(cc grpc.ClientConnInterface) ProfileServiceClient {
	return &profileServiceClient{cc: cc}
}

func (c *profileServiceClient) CreateProfile(ctx context.Context, in *CreateProfileRequest, opts ...grpc.CallOption) (*Profile, error) {
	out := new(Profile)
	if err := c.cc.Invoke(ctx, "/"+profileServiceName+"/CreateProfile", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *profileServiceClient) GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*Profile, error) {
	out := new(Profile)
	if err := c.cc.Invoke(ctx, "/"+profileServiceName+"/GetProfile", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *profileServiceClient) UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*Profile, error) {
	out := new(Profile)
	if err := c.cc.Invoke(ctx, "/"+profileServiceName+"/UpdateProfile", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *profileServiceClient) SetVerified(ctx context.Context, in *SetVerifiedRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, "/"+profileServiceName+"/SetVerified", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

type ProfileServiceServer interface {
	CreateProfile(context.Context, *CreateProfileRequest) (*Profile, error)
	GetProfile(context.Context, *GetProfileRequest) (*Profile, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*Profile, error)
	SetVerified(context.Context, *SetVerifiedRequest) (*emptypb.Empty, error)
}

type UnimplementedProfileServiceServer struct{}

func (UnimplementedProfileServiceServer) CreateProfile(context.Context, *CreateProfileRequest) (*Profile, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateProfile not implemented")
}
func (UnimplementedProfileServiceServer) GetProfile(context.Context, *GetProfileRequest) (*Profile, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProfile not implemented")
}
func (UnimplementedProfileServiceServer) UpdateProfile(context.Context, *UpdateProfileRequest) (*Profile, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateProfile not implemented")
}
func (UnimplementedProfileServiceServer) SetVerified(context.Context, *SetVerifiedRequest) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SetVerified not implemented")
}

func RegisterProfileServiceServer(s grpc.ServiceRegistrar, srv ProfileServiceServer) {
	s.RegisterService(&profileServiceDesc, srv)
}

var profileServiceDesc = grpc.ServiceDesc{
	ServiceName: profileServiceName,
	HandlerType: (*ProfileServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateProfile",
			Handler: unaryHandler(profileServiceName, "CreateProfile", func(srv any, ctx context.Context, in *CreateProfileRequest) (*Profile, error) {
				return srv.(ProfileServiceServer).CreateProfile(ctx, in)
			}),
		},
		{
			MethodName: "GetProfile",
			Handler: unaryHandler(profileServiceName, "GetProfile", func(srv any, ctx context.Context, in *GetProfileRequest) (*Profile, error) {
				return srv.(ProfileServiceServer).GetProfile(ctx, in)
			}),
		},
		{
			MethodName: "UpdateProfile",
			Handler: unaryHandler(profileServiceName, "UpdateProfile", func(srv any, ctx context.Context, in *UpdateProfileRequest) (*Profile, error) {
				return srv.(ProfileServiceServer).UpdateProfile(ctx, in)
			}),
		},
		{
			MethodName: "SetVerified",
			Handler: unaryHandler(profileServiceName, "SetVerified", func(srv any, ctx context.Context, in *SetVerifiedRequest) (*emptypb.Empty, error) {
				return srv.(ProfileServiceServer).SetVerified(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fanverse/profile/v1/profile.proto",
}
