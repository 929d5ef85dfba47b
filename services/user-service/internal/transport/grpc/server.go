package grpc_server

import (
	"context"
	"errors"

	"fanverse/pkg/fanrpc"
	"fanverse/services/user-service/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

type ProfileStore interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) error
}

type UserServer struct {
	fanrpc.UnimplementedProfileServiceServer
	repo ProfileStore
	log  *zap.Logger
}

func NewUserServer(repo ProfileStore, log *zap.Logger) *UserServer {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserServer{repo: repo, log: log}
}

func (s *UserServer) CreateProfile(ctx context.Context, req *fanrpc.CreateProfileRequest) (*fanrpc.Profile, error) {
	uid, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid user ID: %v", err)
	}

	profile := domain.NewProfile(uid, req.Email, req.Username, req.Verified)
	if err := profile.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, s.toStatus("create profile", err)
	}

	return toProto(profile), nil
}

func (s *UserServer) GetProfile(ctx context.Context, req *fanrpc.GetProfileRequest) (*fanrpc.Profile, error) {
	uid, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid user id")
	}

	p, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		return nil, s.toStatus("get profile", err)
	}
	return toProto(p), nil
}

func (s *UserServer) UpdateProfile(ctx context.Context, req *fanrpc.UpdateProfileRequest) (*fanrpc.Profile, error) {
	uid, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid user id")
	}

	p, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		return nil, s.toStatus("get profile", err)
	}

	if err := p.Apply(toDomainPatch(req.Patch)); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, s.toStatus("update profile", err)
	}
	return toProto(p), nil
}

func (s *UserServer) SetVerified(ctx context.Context, req *fanrpc.SetVerifiedRequest) (*emptypb.Empty, error) {
	uid, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid user id")
	}
	if err := s.repo.SetVerified(ctx, uid, req.Verified); err != nil {
		return nil, s.toStatus("set verified", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *UserServer) toStatus(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		return status.Error(codes.NotFound, "profile not found")
	case errors.Is(err, domain.ErrProfileExists):
		return status.Error(codes.AlreadyExists, "profile already exists")
	case errors.Is(err, domain.ErrInvalidProfile):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		s.log.Error("profile store failure", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "failed to %s", op)
	}
}

func toProto(p *domain.Profile) *fanrpc.Profile {
	return &fanrpc.Profile{
		UserID:         p.ID.String(),
		Username:       p.Username,
		Email:          p.Email,
		AvatarURL:      p.AvatarURL,
		FavoritePlayer: p.FavoritePlayer,
		FanLevel:       p.FanLevel,
		XP:             p.XP,
		IsVerified:     p.IsVerified,
		CreatedAt:      p.CreatedAt,
		Preferences: fanrpc.Preferences{
			Notifications: p.Preferences.Notifications,
			Theme:         string(p.Preferences.Theme),
			Language:      p.Preferences.Language,
		},
	}
}

func toDomainPatch(in fanrpc.ProfilePatch) domain.ProfilePatch {
	patch := domain.ProfilePatch{
		Username:       in.Username,
		AvatarURL:      in.AvatarURL,
		FavoritePlayer: in.FavoritePlayer,
		FanLevel:       in.FanLevel,
		XP:             in.XP,
	}
	if in.Preferences != nil {
		patch.Notifications = in.Preferences.Notifications
		patch.Theme = in.Preferences.Theme
		patch.Language = in.Preferences.Language
	}
	return patch
}
