package restapi

import "github.com/pkg/errors"

var ErrMissingImage = errors.New("missing image")
var ErrMissingTag = errors.New("missing tag")
