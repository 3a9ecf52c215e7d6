// Package ir provides the value types shared by every rally package.
//
// This package contains type definitions and their canonical encoding only.
// All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Match state is value-semantic: copies never share backing arrays
//   - NO float types anywhere - scores and counters are ints
//   - All JSON tags use snake_case
//   - Canonical JSON (RFC 8785) is the only encoding used for hashing
package ir
