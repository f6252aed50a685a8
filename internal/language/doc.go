// Package language normalizes language identifiers and owns the rules for
// which languages a video run processes and in what order.
package language
