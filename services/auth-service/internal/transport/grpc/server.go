package grpc_server

import (
	"context"
	"errors"

	"fanverse/pkg/fanrpc"
	"fanverse/services/auth-service/internal/application/usecase"
	"fanverse/services/auth-service/internal/domain"
	"fanverse/services/auth-service/internal/infrastructure/security"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

type AuthServer struct {
	fanrpc.UnimplementedAuthServiceServer
	useCase *usecase.AuthUseCase
}

func NewAuthServer(uc *usecase.AuthUseCase) *AuthServer {
	return &AuthServer{useCase: uc}
}

func (s *AuthServer) SignUp(ctx context.Context, req *fanrpc.SignUpRequest) (*fanrpc.SignUpResponse, error) {
	res, err := s.useCase.SignUp(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}

	out := &fanrpc.SignUpResponse{
		UserID:               res.User.ID.String(),
		EmailConfirmed:       res.User.EmailConfirmed(),
		ConfirmationRequired: res.Tokens == nil,
	}
	if res.Tokens != nil {
		session := toSession(*res.Tokens)
		out.Session = &session
	}
	return out, nil
}

func (s *AuthServer) SignIn(ctx context.Context, req *fanrpc.SignInRequest) (*fanrpc.SignInResponse, error) {
	res, err := s.useCase.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return toSignInResponse(res), nil
}

func (s *AuthServer) Refresh(ctx context.Context, req *fanrpc.RefreshRequest) (*fanrpc.SignInResponse, error) {
	res, err := s.useCase.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(err)
	}
	return toSignInResponse(res), nil
}

func (s *AuthServer) SignOut(ctx context.Context, req *fanrpc.SignOutRequest) (*emptypb.Empty, error) {
	if err := s.useCase.SignOut(ctx, req.RefreshToken); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *AuthServer) Validate(ctx context.Context, req *fanrpc.ValidateRequest) (*fanrpc.ValidateResponse, error) {
	userID, err := s.useCase.ValidateAccess(req.AccessToken)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}
	return &fanrpc.ValidateResponse{UserID: userID}, nil
}

func (s *AuthServer) ConfirmEmail(ctx context.Context, req *fanrpc.ConfirmEmailRequest) (*emptypb.Empty, error) {
	err := s.useCase.ConfirmEmail(ctx, req.Token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *AuthServer) ResendConfirmation(ctx context.Context, req *fanrpc.ResendConfirmationRequest) (*emptypb.Empty, error) {
	if err := s.useCase.ResendConfirmation(ctx, req.Email); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func toSession(t security.TokenPair) fanrpc.Session {
	return fanrpc.Session{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    t.AccessExpiresAt.Unix(),
	}
}

func toSignInResponse(res *usecase.SignInResult) *fanrpc.SignInResponse {
	return &fanrpc.SignInResponse{
		UserID:         res.User.ID.String(),
		Email:          res.User.Email,
		EmailConfirmed: res.User.EmailConfirmed(),
		Session:        toSession(res.Tokens),
	}
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, "invalid credentials")
	case errors.Is(err, domain.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return status.Error(codes.AlreadyExists, "email already registered")
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrAlreadyConfirmed),
		errors.Is(err, domain.ErrUserNotFound):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrResendTooSoon):
		return status.Error(codes.ResourceExhausted, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
