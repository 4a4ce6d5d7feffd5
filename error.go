package lob

import "errors"

var (
	ErrDuplicateOrderID = errors.New("order id already exists")
	ErrUnknownOrderID   = errors.New("order id not found or already terminal")
	ErrInvalidQuantity  = errors.New("quantity must be a positive number of lots")
	ErrInvalidPrice     = errors.New("price must be a positive number of ticks")
	ErrBookCorrupted    = errors.New("order book invariant violated, engine halted")
	ErrInvalidParam     = errors.New("the param is invalid")
	ErrTimeout          = errors.New("timeout")
	ErrShutdown         = errors.New("order book is shutting down")
)
