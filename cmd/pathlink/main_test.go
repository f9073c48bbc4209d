package main

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestServeUntilDoneReportsWatchFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	watchErr := errors.New("no such directory")
	serve := func() error {
		<-ctx.Done()
		return nil
	}
	watch := func(context.Context) error { return watchErr }

	err := serveUntilDone(ctx, serve, watch)
	if !errors.Is(err, watchErr) {
		t.Fatalf("Expected watch error, got %v", err)
	}
	if ctx.Err() != nil {
		t.Error("Expected to return before the context expired")
	}
}

func TestServeUntilDoneReportsServerFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	serveErr := errors.New("address in use")
	err := serveUntilDone(ctx, func() error { return serveErr }, nil)
	if !errors.Is(err, serveErr) {
		t.Fatalf("Expected server error, got %v", err)
	}
}

func TestServeUntilDoneStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	block := make(chan struct{})
	defer close(block)

	serve := func() error {
		<-block
		return nil
	}
	watch := func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- serveUntilDone(ctx, serve, watch) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil after cancel, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for shutdown")
	}
}
