package store_test

import (
	"testing"

	"github.com/warp/pay-structure/engine"
	"github.com/warp/pay-structure/store"
	"github.com/warp/pay-structure/store/storetest"
	"go.uber.org/zap"
)

func TestMemory(t *testing.T) {
	storetest.Run(t, func(t *testing.T) engine.Store {
		return store.NewMemory(zap.NewNop())
	})
}
