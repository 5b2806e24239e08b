package core

import "google.golang.org/grpc"

// BuildServerOptions chains the built interceptors into server options.
// chain is passed in so that this package does not depend on the
// interceptors package.
func BuildServerOptions(unary []grpc.UnaryServerInterceptor, chain func([]grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor) []grpc.ServerOption {
	var opts []grpc.ServerOption
	if u := chain(unary); u != nil {
		opts = append(opts, grpc.UnaryInterceptor(u))
	}
	return opts
}
