package tagtree

import (
	"errors"
)

var ErrTagNotFound = errors.New("tag not found")
var ErrTagTypeMismatch = errors.New("tag has unexpected type")
var ErrInvalidJSON = errors.New("tag json is not valid")
var ErrUnsupportedJSON = errors.New("tag json contains an unsupported value kind")
var ErrNilTag = errors.New("nil tag supplied")
