package snowflake

import (
	"sync/atomic"

	"github.com/bwmarrin/snowflake"
)

var node atomic.Pointer[snowflake.Node]

// Init creates the process-wide ID node. Node IDs must be in [0, 1023].
func Init(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}
	node.Store(n)
	return nil
}

// NextID returns the next unique ID. Init must have been called first.
func NextID() int64 {
	return node.Load().Generate().Int64()
}

// NextIDString returns the next unique ID in its base-10 string form,
// which is how feed and article IDs are persisted.
func NextIDString() string {
	return node.Load().Generate().String()
}
