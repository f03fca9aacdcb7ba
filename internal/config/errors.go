package config

import "errors"

// ErrInvalidConfig marks a configuration that loaded but fails Validate.
var ErrInvalidConfig = errors.New("config: invalid")

// ErrLoadConfig marks a YAML file or environment value that could not be read or decoded.
var ErrLoadConfig = errors.New("config: load failed")
