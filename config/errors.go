package config

import "errors"

var (
	// ErrKeyNotFound is returned by typed getters and Bind for unset keys.
	ErrKeyNotFound = errors.New("config: key not found")
)
