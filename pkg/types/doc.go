// Package types defines the shared Go types used by the dataset loader, the
// filter pipeline and every transport (REST, WebSocket, CLI).
//
// Records are the canonical in-memory form of one launch row, independent of
// the column names used by the source file. Derived relations carry JSON tags
// so transports can hand them to the chart layer unchanged.
package types
