package db

import(
	"errors"
	"fmt"
)

var(
	ErrNotFound = errors.New("not found")
	ErrBadStatus = errors.New("flight is not in a state that allows this")
)

func notFound(what string, id interface{}) error {
	return fmt.Errorf("%w: %s %v", ErrNotFound, what, id)
}
