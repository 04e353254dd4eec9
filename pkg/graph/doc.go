// Package graph converts node/link JSON documents to and from simulation
// state.
//
// The package sits at the boundary between caller data and the force engine:
//
//   - [Graph]: the caller's document; nodes and links are opaque [Record]
//     values, and unknown fields survive a read/write round trip
//   - [Build]: resolves identities and produces []force.Node and []force.Link
//   - [InitializePositions]: random-disk or preserve-with-spiral placement
//   - [CopyBack]: writes converged x and y onto the original records
//
// # Document Format
//
//	{
//	  "nodes": [{"id": "a"}, {"id": "b", "x": 3, "y": 4}, {"id": "c", "fx": 0, "fy": 0}],
//	  "links": [{"source": "a", "target": "b"}, {"source": "b", "target": "c"}]
//	}
//
// A node's identity is its "id" field (string or number) or, when the field is
// absent, its index in the nodes array. Link "source" and "target" refer to
// identities. Recognized numeric node fields are x, y, vx, vy, fx, fy and
// strength; null is treated as absent.
//
// # Errors
//
// Decoding and [Build] fail with MALFORMED_INPUT or UNRESOLVED_LINK_ENDPOINT
// from pkg/errors. Neither modifies the Graph.
package graph
