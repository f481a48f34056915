package service

import (
	"context"

	"github.com/abakhtin/library-api/pkg/kafka"
)

//go:generate go run github.com/golang/mock/mockgen -source=events.go -destination=mocks/events.go -package=mocks

type EventPublisher interface {
	Publish(ctx context.Context, event kafka.EventLoan) error
}
