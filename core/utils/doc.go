// Package utils provides common utility functions for the reconciler.
// It holds the scalar conversion helpers used when loaders hand arbitrary
// decoded values to the matching engine.
package utils
