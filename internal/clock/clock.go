// Package clock provides the second-resolution timestamps all expiry math
// runs on. Services take a Now func so tests can pin time.
package clock

import "time"

type Now func() int64

func Unix() int64 {
	return time.Now().Unix()
}
