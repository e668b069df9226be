package metric

import (
	"context"
	"joincal/src-server/utils"
	"time"
)

// storage reads through the bare backend so probe samples stay out of the
// read latency gauge.
func storage(as *utils.AppState) (time.Duration, error) {
	start := time.Now()
	if _, _, err := as.Backend.GetItem(context.Background(), as.Events.Key()); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}
