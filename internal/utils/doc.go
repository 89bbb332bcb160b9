// Package utils holds small internal helpers shared across packages.
package utils
