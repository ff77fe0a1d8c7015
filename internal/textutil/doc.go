// Package textutil provides the small text helpers shared by the parser,
// resolver, and planner: file name sanitizing and token-based title
// similarity used to pick the closest search result.
package textutil
