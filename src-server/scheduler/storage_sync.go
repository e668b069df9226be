package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"joincal/src-server/model"
	"joincal/src-server/utils"
	"log/slog"
	"reflect"
	"time"

	"github.com/robfig/cron/v3"
)

// StorageSync reloads the event store whenever the storage slot was changed
// behind its back (a hand-edited file, another instance sharing the sqlite
// database). Blocks until graceful shutdown.
func StorageSync(as *utils.AppState, interval time.Duration) {
	gracefulShutdownCh := as.CreateGracefulShutdownChan()

	c := cron.New()
	c.Schedule(cron.Every(interval), cron.FuncJob(func() {
		reloaded, err := SyncOnce(context.Background(), as)
		if err != nil {
			slog.Error("StorageSync: can't check storage", "error", err)
			return
		}
		if reloaded {
			slog.Info("StorageSync: events changed in storage, reloaded", "events", len(as.Events.Events()))
		}
	}))
	c.Start()

	<-*gracefulShutdownCh
	<-c.Stop().Done()
}

// SyncOnce compares the slot with the in-memory list and adopts the stored
// list on a difference. An absent slot, or one the store wouldn't load, is
// left alone so in-memory events are never replaced by the seed list.
func SyncOnce(ctx context.Context, as *utils.AppState) (bool, error) {
	raw, ok, err := as.Storage.GetItem(ctx, as.Events.Key())
	if err != nil {
		return false, fmt.Errorf("SyncOnce: %w", err)
	}
	if !ok {
		return false, nil
	}

	var stored []model.CalendarEvent
	if err := json.Unmarshal([]byte(raw), &stored); err != nil || len(stored) == 0 {
		slog.Debug("SyncOnce: stored events unusable, skipping", "key", as.Events.Key())
		return false, nil
	}
	if reflect.DeepEqual(stored, as.Events.Events()) {
		return false, nil
	}

	// adopt the list just read; a second read could see another edit or fail
	as.Events.Replace(stored)
	return true, nil
}
