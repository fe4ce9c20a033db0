package catalog

import (
	"testing"

	"github.com/cuihairu/tabletop/internal/ports"
	"github.com/cuihairu/tabletop/internal/repo/storetest"
)

func TestMemoryStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) ports.BoardGameStore { return NewStore() })
}
