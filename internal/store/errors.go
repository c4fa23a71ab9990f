package store

import "errors"

var (
	ErrNotFound            = errors.New("record not found")
	ErrAlreadyPurchased    = errors.New("planned expense already purchased")
	ErrAlreadyProcessed    = errors.New("recurring cost already processed for period")
	ErrDuplicateSubscriber = errors.New("email already subscribed")
	ErrUnknownNode         = errors.New("flow connection references unknown node")
)
