package program

import "errors"

var (
	ErrNoFiles          = errors.New("no program files found")
	ErrDuplicateName    = errors.New("duplicate block name")
	ErrUnknownLayerType = errors.New("unknown layer type")
	ErrUnknownReference = errors.New("reference to undefined node")
	ErrUnknownChannel   = errors.New("reference to channel the node does not produce")
	ErrMissingParam     = errors.New("missing required layer parameter")
	ErrBadDefault       = errors.New("input default is not a numeric array")
)
