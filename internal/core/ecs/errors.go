package ecs

import (
	"errors"

	"github.com/l1jgo/ecskit/internal/core/handle"
)

var (
	ErrInvalidHandle = handle.ErrInvalidHandle
	ErrPoolExhausted = handle.ErrPoolExhausted

	// ErrViewOverflow is returned when a view would span more tables than
	// the registry's view bound allows.
	ErrViewOverflow = errors.New("ecs: view spans too many tables")
	// ErrTooManyComponents is returned when a registry runs out of type IDs.
	ErrTooManyComponents = errors.New("ecs: too many component types")
	// ErrUnregisteredComponent is returned by the type-erased API for values
	// whose type was never registered.
	ErrUnregisteredComponent = errors.New("ecs: component type not registered")
	// ErrComponentType is returned when a value does not match a column's
	// element type.
	ErrComponentType = errors.New("ecs: component type mismatch")
)
