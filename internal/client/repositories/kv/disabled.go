package kv

import (
	"context"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
)

// Disabled stands in when the local database cannot be opened. Every call
// fails with common.ErrStorageUnavailable so callers degrade the same way
// they do for any other storage error.
type Disabled struct{}

func (Disabled) Get(context.Context, string) ([]byte, error) {
	return nil, common.ErrStorageUnavailable
}

func (Disabled) Set(context.Context, string, []byte) error {
	return common.ErrStorageUnavailable
}

func (Disabled) Delete(context.Context, string) error {
	return common.ErrStorageUnavailable
}

func (Disabled) List(context.Context) (map[string][]byte, error) {
	return nil, common.ErrStorageUnavailable
}

func (Disabled) Clear(context.Context) error {
	return common.ErrStorageUnavailable
}

func (Disabled) Update(context.Context, string, func([]byte) ([]byte, error)) error {
	return common.ErrStorageUnavailable
}
