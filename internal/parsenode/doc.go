// Package parsenode maps printed token ranges back to the sub-values that
// produced them.
//
// A Tree is an arena: nodes live in one slice and refer to each other by
// NodeID. Each node covers a half-open token range [Lo, Hi). A child's
// range lies inside its parent's range and sibling ranges are ordered and
// disjoint. Leaves usually stand for single tokens.
//
// Trees are built by a Builder while a pretty printer emits tokens and are
// read-only afterwards. Range queries used by selection escalation skip
// pass-through nodes (nodes whose range equals their parent's) so that every
// escalation step changes the selected range.
package parsenode
