package utils

import "errors"

// PermError is an error that retry loops must not retry.
type PermError string

func (e PermError) Error() string {
	return string(e)
}

func (e PermError) IsPermanent() bool {
	return true
}

func IsPermError(err error) bool {
	var perm PermError
	return errors.As(err, &perm)
}
