package client

import (
	"fanverse/pkg/fanrpc"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type AuthClient struct {
	Client fanrpc.AuthServiceClient
	conn   *grpc.ClientConn
}

func NewAuthClient(url string) (*AuthClient, error) {
	cc, err := grpc.NewClient(url,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		fanrpc.CallOption(),
	)
	if err != nil {
		return nil, err
	}

	return &AuthClient{
		Client: fanrpc.NewAuthServiceClient(cc),
		conn:   cc,
	}, nil
}

func (c *AuthClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
