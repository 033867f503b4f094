package state

import (
	"context"
	"errors"
)

// OpObserver receives the outcome of every storage operation.
type OpObserver interface {
	ObserveStateOp(backend, op string, err error)
}

type observedStorage struct {
	Storage
	observer OpObserver
}

// Observe wraps s so every Read/Write/Delete is reported to observer.
// A Read miss is reported as success.
func Observe(s Storage, observer OpObserver) Storage {
	if observer == nil {
		return s
	}
	return &observedStorage{Storage: s, observer: observer}
}

func (o *observedStorage) Read(ctx context.Context, key string) ([]byte, error) {
	doc, err := o.Storage.Read(ctx, key)
	if errors.Is(err, ErrNotFound) {
		o.observer.ObserveStateOp(o.Backend(), "read", nil)
	} else {
		o.observer.ObserveStateOp(o.Backend(), "read", err)
	}
	return doc, err
}

func (o *observedStorage) Write(ctx context.Context, key string, document []byte) error {
	err := o.Storage.Write(ctx, key, document)
	o.observer.ObserveStateOp(o.Backend(), "write", err)
	return err
}

func (o *observedStorage) Delete(ctx context.Context, key string) error {
	err := o.Storage.Delete(ctx, key)
	o.observer.ObserveStateOp(o.Backend(), "delete", err)
	return err
}
