package handlers

import "errors"

var (
	errInvalidLogoType = errors.New("only jpg/jpeg/png/webp allowed")
	errLogoTooLarge    = errors.New("file too large (max 5MB)")
)
