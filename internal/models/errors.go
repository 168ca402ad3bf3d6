package models

import "errors"

var (
	ErrInvalidSymbol = errors.New("invalid symbol")
	ErrInvalidPrice  = errors.New("invalid price")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidBar    = errors.New("invalid bar (high < low)")
	ErrInvalidVolume = errors.New("invalid volume")
	ErrInvalidResult = errors.New("invalid factor result")
)
