// Package domain holds the User and Task entities together with their
// normalization and validation rules. It has no knowledge of storage or HTTP.
package domain
