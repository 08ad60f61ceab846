package services

import "errors"

var ErrNoPendingVerification = errors.New("no registration awaiting verification")
