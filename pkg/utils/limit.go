package utils

import (
	"errors"
	"io"
)

// ReadAllLimit reads r to the end, failing once more than max bytes arrive.
// Logo uploads go through this so a multipart part that lies about its size
// cannot buffer an unbounded body.
func ReadAllLimit(r io.Reader, max int64) ([]byte, error) {
	lr := io.LimitReader(r, max+1)
	b, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > max {
		return nil, errors.New("file too large")
	}
	return b, nil
}
