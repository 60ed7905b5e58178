// Package common contains definitions of fundamental types and functions used
// across multiple file system implementations.
package common

import "math"

// LogicalBlock is a block index within a single file, starting at 0.
type LogicalBlock uint

// PhysicalBlock is an absolute sector number within a disk image.
type PhysicalBlock uint

const InvalidLogicalBlock = LogicalBlock(math.MaxUint)
const InvalidPhysicalBlock = PhysicalBlock(math.MaxUint)
