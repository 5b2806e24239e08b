// Package rawrmenu serves the restaurant menu API over gRPC with a
// read-through response cache in front of the relational store.
//
// A [Server] is assembled from functional [Option] values. Its interceptors
// always run in the same order, whatever order the options are given in:
// recovery, request id, logging, tracing, policy (group and rate limit),
// validation and finally the response cache.
//
//	srv, err := rawrmenu.NewServer(
//		rawrmenu.WithRecovery(),
//		rawrmenu.WithLogger(logger),
//		rawrmenu.WithResponseCache(cache.Config{Store: cache.NewMemoryStore()}),
//	)
//	srv.RegisterMenu(menu.NewService(st))
package rawrmenu
