// Package validator provides the default structural implementation of the
// jsonschema.Validator capability: a tree walk of a decoded JSON value
// against a property tree, producing one human-readable message per
// violation.
package validator
