package fanrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

const authServiceName = "fanverse.auth.v1.AuthService"

type AuthServiceClient interface {
	SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*SignUpResponse, error)
	SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*SignInResponse, error)
	Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*SignInResponse, error)
	SignOut(ctx context.Context, in *SignOutRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
	Validate(ctx context.Context, in *ValidateRequest, opts ...grpc.CallOption) (*ValidateResponse, error)
	ConfirmEmail(ctx context.Context, in *ConfirmEmailRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
	ResendConfirmation(ctx context.Context, in *ResendConfirmationRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type authServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthServiceClient(cc grpc.ClientConnInterface) AuthServiceClient {
	return &authServiceClient{cc: cc}
}

func (c *authServiceClient) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*SignUpResponse, error) {
	out := new(SignUpResponse)
	if err := c.cc.Invoke(ctx, "/"+authServiceName+"/SignUp", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *authServiceClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*SignInResponse, error) {
	out := new(SignInResponse)
	if err := c.cc.Invoke(ctx, "/"+authServiceName+"/SignIn", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *authServiceClient) Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*SignInResponse, error) {
	out := new(SignInResponse)
	if err := c.cc.Invoke(ctx, "/"+authServiceName+"/Refresh", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *authServiceClient) SignOut(ctx context.Context, in *SignOutRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, "/"+authServiceName+"/SignOut", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *authServiceClient) Validate(ctx context.Context, in *ValidateRequest, opts ...grpc.CallOption) (*ValidateResponse, error) {
	out := new(ValidateResponse)
	if err := c.cc.Invoke(ctx, "/"+authServiceName+"/Validate", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *authServiceClient) ConfirmEmail(ctx context.Context, in *ConfirmEmailRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, "/"+authServiceName+"/ConfirmEmail", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *authServiceClient) ResendConfirmation(ctx context.Context, in *ResendConfirmationRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, "/"+authServiceName+"/ResendConfirmation", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

type AuthServiceServer interface {
	SignUp(context.Context, *SignUpRequest) (*SignUpResponse, error)
	SignIn(context.Context, *SignInRequest) (*SignInResponse, error)
	Refresh(context.Context, *RefreshRequest) (*SignInResponse, error)
	SignOut(context.Context, *SignOutRequest) (*emptypb.Empty, error)
	Validate(context.Context, *ValidateRequest) (*ValidateResponse, error)
	ConfirmEmail(context.Context, *ConfirmEmailRequest) (*emptypb.Empty, error)
	ResendConfirmation(context.Context, *ResendConfirmationRequest) (*emptypb.Empty, error)
}

// UnimplementedAuthServiceServer can be embedded to stay forward compatible.
type UnimplementedAuthServiceServer struct{}

func (UnimplementedAuthServiceServer) SignUp(context.Context, *SignUpRequest) (*SignUpResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SignUp not implemented")
}
func (UnimplementedAuthServiceServer) SignIn(context.Context, *SignInRequest) (*SignInResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SignIn not implemented")
}
func (UnimplementedAuthServiceServer) Refresh(context.Context, *RefreshRequest) (*SignInResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Refresh not implemented")
}
func (UnimplementedAuthServiceServer) SignOut(context.Context, *SignOutRequest) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SignOut not implemented")
}
func (UnimplementedAuthServiceServer) Validate(context.Context, *ValidateRequest) (*ValidateResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Validate not implemented")
}
func (UnimplementedAuthServiceServer) ConfirmEmail(context.Context, *ConfirmEmailRequest) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method ConfirmEmail not implemented")
}
func (UnimplementedAuthServiceServer) ResendConfirmation(context.Context, *ResendConfirmationRequest) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method ResendConfirmation not implemented")
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&authServiceDesc, srv)
}

// unaryHandler adapts a typed server method to grpc.MethodHandler.
func unaryHandler[Req any, Resp any](service, method string, call func(srv any, ctx context.Context, req *Req) (Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv, ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + service + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv, ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var authServiceDesc = grpc.ServiceDesc{
	ServiceName: authServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SignUp",
			Handler: unaryHandler(authServiceName, "SignUp", func(srv any, ctx context.Context, in *SignUpRequest) (*SignUpResponse, error) {
				return srv.(AuthServiceServer).SignUp(ctx, in)
			}),
		},
		{
			MethodName: "SignIn",
			Handler: unaryHandler(authServiceName, "SignIn", func(srv any, ctx context.Context, in *SignInRequest) (*SignInResponse, error) {
				return srv.(AuthServiceServer).SignIn(ctx, in)
			}),
		},
		{
			MethodName: "Refresh",
			Handler: unaryHandler(authServiceName, "Refresh", func(srv any, ctx context.Context, in *RefreshRequest) (*SignInResponse, error) {
				return srv.(AuthServiceServer).Refresh(ctx, in)
			}),
		},
		{
			MethodName: "SignOut",
			Handler: unaryHandler(authServiceName, "SignOut", func(srv any, ctx context.Context, in *SignOutRequest) (*emptypb.Empty, error) {
				return srv.(AuthServiceServer).SignOut(ctx, in)
			}),
		},
		{
			MethodName: "Validate",
			Handler: unaryHandler(authServiceName, "Validate", func(srv any, ctx context.Context, in *ValidateRequest) (*ValidateResponse, error) {
				return srv.(AuthServiceServer).Validate(ctx, in)
			}),
		},
		{
			MethodName: "ConfirmEmail",
			Handler: unaryHandler(authServiceName, "ConfirmEmail", func(srv any, ctx context.Context, in *ConfirmEmailRequest) (*emptypb.Empty, error) {
				return srv.(AuthServiceServer).ConfirmEmail(ctx, in)
			}),
		},
		{
			MethodName: "ResendConfirmation",
			Handler: unaryHandler(authServiceName, "ResendConfirmation", func(srv any, ctx context.Context, in *ResendConfirmationRequest) (*emptypb.Empty, error) {
				return srv.(AuthServiceServer).ResendConfirmation(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fanverse/auth/v1/auth.proto",
}
