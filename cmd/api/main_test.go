package main

import (
	"net"
	"testing"
)

func TestListenReleasesHTTPWhenGRPCBindFails(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	defer busy.Close()

	free, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("pick port: %v", err)
	}
	httpAddr := free.Addr().String()
	_ = free.Close()

	if _, _, err := listen(httpAddr, busy.Addr().String()); err == nil {
		t.Fatal("expected grpc bind failure")
	}

	again, err := net.Listen("tcp", httpAddr)
	if err != nil {
		t.Fatalf("http port still bound after failed listen: %v", err)
	}
	_ = again.Close()
}

func TestListenWithoutGRPC(t *testing.T) {
	httpLis, grpcLis, err := listen("127.0.0.1:0", "")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer httpLis.Close()
	if grpcLis != nil {
		t.Fatal("grpc listener opened without an address")
	}
}
