package client

import (
	"fanverse/pkg/fanrpc"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type ProfileClient struct {
	Client fanrpc.ProfileServiceClient
	conn   *grpc.ClientConn
}

func NewProfileClient(url string) (*ProfileClient, error) {
	cc, err := grpc.NewClient(url,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		fanrpc.CallOption(),
	)
	if err != nil {
		return nil, err
	}
	return &ProfileClient{
		Client: fanrpc.NewProfileServiceClient(cc),
		conn:   cc,
	}, nil
}

func (c *ProfileClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
