package ledger

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces opaque transaction identifiers. Ids must be unique
// within a ledger and are never parsed or ordered.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random UUIDs. It is the default.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// SequenceGenerator issues prefix-1, prefix-2, ... and is handy where output
// must be reproducible.
type SequenceGenerator struct {
	Prefix string
	n      atomic.Int64
}

func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{Prefix: prefix}
}

func (g *SequenceGenerator) NewID() string {
	return g.Prefix + "-" + strconv.FormatInt(g.n.Add(1), 10)
}
