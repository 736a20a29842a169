package service

import "errors"

var (
	// ErrShipmentNotFound is returned for an unknown shipment id.
	ErrShipmentNotFound = errors.New("shipment not found")
	// ErrInvalidInput is returned when a request lacks what the operation needs.
	ErrInvalidInput = errors.New("invalid input")
)
