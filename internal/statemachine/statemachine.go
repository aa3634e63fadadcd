// Package statemachine holds the order status transition rules.
//
//	Placed ──> Confirmed ──> Preparing ──> OutForDelivery ──> Delivered
//	   │           │             │               │
//	   └───────────┴─────────────┴───────────────┴──────────> Cancelled
//
// Delivered and Cancelled are terminal.
package statemachine

import (
	"fmt"

	"github.com/BearBump/FoodTrack/internal/models"
	"github.com/pkg/errors"
)

var sequence = []models.OrderStatus{
	models.OrderStatusPlaced,
	models.OrderStatusConfirmed,
	models.OrderStatusPreparing,
	models.OrderStatusOutForDelivery,
	models.OrderStatusDelivered,
}

func IsKnown(s models.OrderStatus) bool {
	if s == models.OrderStatusCancelled {
		return true
	}
	for _, v := range sequence {
		if v == s {
			return true
		}
	}
	return false
}

func IsTerminal(s models.OrderStatus) bool {
	return s == models.OrderStatusDelivered || s == models.OrderStatusCancelled
}

// ParseStatus accepts the canonical status names only.
func ParseStatus(raw string) (models.OrderStatus, error) {
	s := models.OrderStatus(raw)
	if !IsKnown(s) {
		return "", errors.Wrapf(models.ErrValidation, "unknown status %q", raw)
	}
	return s, nil
}

// Advance returns the next status of the linear delivery flow.
func Advance(current models.OrderStatus) (models.OrderStatus, error) {
	if IsTerminal(current) {
		return current, errors.Wrapf(models.ErrInvalidTransition, "%s is terminal", current)
	}
	for i, v := range sequence {
		if v == current {
			return sequence[i+1], nil
		}
	}
	return current, errors.Wrap(models.ErrInvalidTransition, fmt.Sprintf("unknown status %q", current))
}

// Transition validates a manual status change. Any known target is
// accepted as long as the order has not reached a terminal status.
func Transition(current, target models.OrderStatus) (models.OrderStatus, error) {
	if !IsKnown(target) {
		return current, errors.Wrapf(models.ErrValidation, "unknown status %q", target)
	}
	if IsTerminal(current) {
		return current, errors.Wrapf(models.ErrInvalidTransition, "%s -> %s: order already %s", current, target, current)
	}
	return target, nil
}
