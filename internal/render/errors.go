package render

import "errors"

var (
	ErrNotMounted  = errors.New("card is not mounted")
	ErrInvalidSize = errors.New("invalid raster size")
)
