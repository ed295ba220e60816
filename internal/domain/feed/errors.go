package feed

import "errors"

// ErrUnknownBucket is returned by ParseBucket for anything but Upcoming or Previous.
var ErrUnknownBucket = errors.New("unknown bucket")
